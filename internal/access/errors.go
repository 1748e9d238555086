package access

import "errors"

var (
	// ErrAuthentication covers bad credentials and unknown or inactive
	// users. External callers must not be able to tell these apart; the
	// audit log keeps the detail.
	ErrAuthentication = errors.New("access: authentication failed")

	// ErrAuthorization means the acting user lacks the required permission.
	ErrAuthorization = errors.New("access: permission denied")

	ErrNotFound     = errors.New("access: user not found")
	ErrConflict     = errors.New("access: username already exists")
	ErrInvalidInput = errors.New("access: invalid input")
)
