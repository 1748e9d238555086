package access

import "time"

// User is the server-side identity record. The permission set is always
// exactly the catalog set for the role; a role change replaces both
// atomically. At most one session token is outstanding per user.
type User struct {
	ID          string
	Username    string
	Email       string
	Role        Role
	Permissions map[Permission]struct{}

	CreatedAt time.Time
	LastLogin *time.Time
	IsActive  bool

	PasswordHash   string
	SessionToken   string
	SessionExpires *time.Time
}

// HasPermission reports whether the user holds the permission.
func (u *User) HasPermission(p Permission) bool {
	_, ok := u.Permissions[p]
	return ok
}

// Info is the read-only projection exposed to callers. It never carries the
// password hash or the raw session token.
type Info struct {
	ID        string     `json:"user_id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func (u *User) info() Info {
	info := Info{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		info.LastLogin = &t
	}
	return info
}

// clone returns a deep copy safe to hand outside the manager's lock.
func (u *User) clone() *User {
	cp := *u
	cp.Permissions = make(map[Permission]struct{}, len(u.Permissions))
	for p := range u.Permissions {
		cp.Permissions[p] = struct{}{}
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		cp.LastLogin = &t
	}
	if u.SessionExpires != nil {
		t := *u.SessionExpires
		cp.SessionExpires = &t
	}
	return &cp
}
