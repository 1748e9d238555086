// Package access implements the role-based access control core: credential
// storage, the role/permission catalog, session lifecycle, and the
// append-only audit trail behind it all.
package access

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"sentra.org/internal/audit"
	"sentra.org/internal/ids"
	"sentra.org/internal/obs"
	"sentra.org/internal/session"
)

const defaultAuditQueryLimit = 100

// Audit action names recorded by the manager.
const (
	actionLoginFailed     = "LOGIN_FAILED"
	actionLoginSuccess    = "LOGIN_SUCCESS"
	actionLogout          = "LOGOUT"
	actionUserCreated     = "USER_CREATED"
	actionRoleUpdated     = "ROLE_UPDATED"
	actionUserDeactivated = "USER_DEACTIVATED"
)

// insecureBootstrapPasswords are well-known defaults that previous
// deployments shipped with. They are refused unless insecure bootstrap is
// explicitly enabled for development.
var insecureBootstrapPasswords = map[string]struct{}{
	"admin":    {},
	"admin123": {},
	"changeme": {},
	"password": {},
}

// BootstrapAdmin describes the built-in super-admin seeded at startup when no
// user table exists yet.
type BootstrapAdmin struct {
	Username string
	Email    string
	Password string
}

// Manager owns the in-memory user table and orchestrates authentication,
// authorization and the audit trail. Construct one per process and pass it
// to handlers; there is no package-level instance.
type Manager struct {
	sessions *session.Issuer
	log      *audit.Log
	now      func() time.Time

	mu         sync.RWMutex
	users      map[string]*User
	byUsername map[string]string // lower-cased username -> user id
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerConfig)

type managerConfig struct {
	bootstrap         *BootstrapAdmin
	insecureBootstrap bool
	now               func() time.Time
}

// WithBootstrapAdmin seeds a super-admin account on construction. Without
// this option the manager starts with an empty user table and user creation
// is only possible through a pre-provisioned actor.
func WithBootstrapAdmin(b BootstrapAdmin) ManagerOption {
	return func(c *managerConfig) {
		c.bootstrap = &b
	}
}

// WithInsecureBootstrap permits well-known default bootstrap passwords.
// Development only; production deployments must provide a rotated secret.
func WithInsecureBootstrap() ManagerOption {
	return func(c *managerConfig) {
		c.insecureBootstrap = true
	}
}

// WithManagerClock overrides the time source (useful for tests).
func WithManagerClock(fn func() time.Time) ManagerOption {
	return func(c *managerConfig) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewManager constructs the access control manager.
func NewManager(sessions *session.Issuer, log *audit.Log, opts ...ManagerOption) (*Manager, error) {
	if sessions == nil {
		return nil, errors.New("access: session issuer is required")
	}
	if log == nil {
		return nil, errors.New("access: audit log is required")
	}
	cfg := managerConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Manager{
		sessions:   sessions,
		log:        log,
		now:        cfg.now,
		users:      make(map[string]*User),
		byUsername: make(map[string]string),
	}
	if cfg.bootstrap != nil {
		if err := m.seedBootstrapAdmin(*cfg.bootstrap, cfg.insecureBootstrap); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Manager) seedBootstrapAdmin(b BootstrapAdmin, allowInsecure bool) error {
	username := strings.TrimSpace(b.Username)
	if username == "" {
		username = "admin"
	}
	email := strings.TrimSpace(strings.ToLower(b.Email))
	if email == "" {
		email = "admin@sentra.local"
	}
	if strings.TrimSpace(b.Password) == "" {
		return errors.New("access: bootstrap admin password is required")
	}
	if _, known := insecureBootstrapPasswords[b.Password]; known && !allowInsecure {
		return errors.New("access: bootstrap admin password is a well-known default; rotate it or enable insecure bootstrap for development")
	}
	hash, err := HashPassword(b.Password)
	if err != nil {
		return err
	}
	user := &User{
		ID:           ids.New(),
		Username:     username,
		Email:        email,
		Role:         RoleSuperAdmin,
		Permissions:  PermissionsFor(RoleSuperAdmin),
		CreatedAt:    m.now().UTC(),
		IsActive:     true,
		PasswordHash: hash,
	}
	m.users[user.ID] = user
	m.byUsername[strings.ToLower(username)] = user.ID
	return nil
}

// Authenticate verifies credentials and issues a session token. The error is
// always ErrAuthentication regardless of whether the username was unknown or
// the password wrong; the audit log records which.
func (m *Manager) Authenticate(ctx context.Context, username, password, clientIP string) (string, error) {
	username = strings.TrimSpace(username)

	m.mu.RLock()
	var (
		userID string
		hash   string
		found  bool
	)
	if id, ok := m.byUsername[strings.ToLower(username)]; ok {
		if u := m.users[id]; u != nil && u.IsActive && u.PasswordHash != "" {
			userID, hash, found = u.ID, u.PasswordHash, true
		}
	}
	m.mu.RUnlock()

	if !found {
		obs.ObserveAuthAttempt("user_not_found")
		m.log.Append(audit.Entry{
			UserID:    username,
			Action:    actionLoginFailed,
			Resource:  "authentication",
			Details:   map[string]any{"reason": "user_not_found"},
			IPAddress: clientIP,
			Success:   false,
		})
		return "", ErrAuthentication
	}

	// Key derivation is CPU-bound; it must not run under the table lock.
	if !VerifyPassword(password, hash) {
		obs.ObserveAuthAttempt("invalid_password")
		m.log.Append(audit.Entry{
			UserID:    userID,
			Action:    actionLoginFailed,
			Resource:  "authentication",
			Details:   map[string]any{"reason": "invalid_password"},
			IPAddress: clientIP,
			Success:   false,
		})
		return "", ErrAuthentication
	}

	token, expiresAt, err := m.sessions.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}

	m.mu.Lock()
	user := m.users[userID]
	if user == nil || !user.IsActive {
		m.mu.Unlock()
		return "", ErrAuthentication
	}
	if user.SessionToken == "" {
		obs.SessionOpened()
	}
	now := m.now().UTC()
	user.SessionToken = token
	user.SessionExpires = &expiresAt
	user.LastLogin = &now
	m.mu.Unlock()

	obs.ObserveAuthAttempt("success")
	m.log.Append(audit.Entry{
		UserID:    userID,
		Action:    actionLoginSuccess,
		Resource:  "authentication",
		Details:   map[string]any{"username": username},
		IPAddress: clientIP,
		Success:   true,
	})
	return token, nil
}

// ValidateSession resolves a bearer token to its user. A token is accepted
// only when the signature and expiry check out, the user is still active, and
// the token equals the one currently recorded on the user; re-login or logout
// therefore revokes every earlier token. The returned user is a snapshot safe
// to use without further locking. No audit entry is written here.
func (m *Manager) ValidateSession(ctx context.Context, token string) (*User, error) {
	userID, err := m.sessions.Verify(token)
	if err != nil {
		return nil, session.ErrInvalidToken
	}

	m.mu.RLock()
	user := m.users[userID]
	var snapshot *User
	expired := false
	if user != nil && user.IsActive && user.SessionToken == token {
		if user.SessionExpires != nil && m.now().After(*user.SessionExpires) {
			expired = true
		} else {
			snapshot = user.clone()
		}
	}
	m.mu.RUnlock()

	if expired {
		m.clearSession(userID, token)
		return nil, session.ErrInvalidToken
	}
	if snapshot == nil {
		return nil, session.ErrInvalidToken
	}
	return snapshot, nil
}

// clearSession drops the recorded session if it still matches token.
func (m *Manager) clearSession(userID, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := m.users[userID]
	if user == nil || user.SessionToken != token {
		return
	}
	user.SessionToken = ""
	user.SessionExpires = nil
	obs.SessionClosed()
}

// Logout ends the session identified by token. Presenting an already invalid
// token is a no-op, not an error.
func (m *Manager) Logout(ctx context.Context, token, clientIP string) {
	user, err := m.ValidateSession(ctx, token)
	if err != nil {
		return
	}
	m.clearSession(user.ID, token)
	m.log.Append(audit.Entry{
		UserID:    user.ID,
		Action:    actionLogout,
		Resource:  "authentication",
		Details:   map[string]any{"username": user.Username},
		IPAddress: clientIP,
		Success:   true,
	})
}

// CheckPermission is a pure membership test with no side effects; it is safe
// on every request path.
func (m *Manager) CheckPermission(user *User, perm Permission) bool {
	if user == nil {
		return false
	}
	return user.HasPermission(perm)
}

// CreateUser provisions a new account with the catalog permission set for
// role. The acting user must hold manage_users. Usernames are unique
// case-insensitively.
func (m *Manager) CreateUser(ctx context.Context, username, email, password string, role Role, actingUserID string) (string, error) {
	if err := m.requirePermission(actingUserID, PermManageUsers); err != nil {
		return "", err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if password == "" {
		return "", fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if _, ok := ParseRole(string(role)); !ok {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	key := strings.ToLower(username)
	m.mu.RLock()
	_, taken := m.byUsername[key]
	m.mu.RUnlock()
	if taken {
		return "", ErrConflict
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	user := &User{
		ID:           ids.New(),
		Username:     username,
		Email:        email,
		Role:         role,
		Permissions:  PermissionsFor(role),
		CreatedAt:    m.now().UTC(),
		IsActive:     true,
		PasswordHash: hash,
	}

	m.mu.Lock()
	// Re-check under the write lock; a concurrent create may have won.
	if _, taken := m.byUsername[key]; taken {
		m.mu.Unlock()
		return "", ErrConflict
	}
	m.users[user.ID] = user
	m.byUsername[key] = user.ID
	m.mu.Unlock()

	m.log.Append(audit.Entry{
		UserID:   actingUserID,
		Action:   actionUserCreated,
		Resource: "user_management",
		Details: map[string]any{
			"new_user_id": user.ID,
			"username":    username,
			"role":        string(role),
		},
		Success: true,
	})
	return user.ID, nil
}

// UpdateUserRole changes a user's role, atomically replacing the derived
// permission set. Any live session survives a role change.
func (m *Manager) UpdateUserRole(ctx context.Context, userID string, newRole Role, actingUserID string) error {
	if err := m.requirePermission(actingUserID, PermManageRoles); err != nil {
		return err
	}
	if _, ok := ParseRole(string(newRole)); !ok {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, newRole)
	}

	m.mu.Lock()
	user := m.users[userID]
	if user == nil {
		m.mu.Unlock()
		return ErrNotFound
	}
	oldRole := user.Role
	user.Role = newRole
	user.Permissions = PermissionsFor(newRole)
	m.mu.Unlock()

	m.log.Append(audit.Entry{
		UserID:   actingUserID,
		Action:   actionRoleUpdated,
		Resource: "user_management",
		Details: map[string]any{
			"target_user_id": userID,
			"old_role":       string(oldRole),
			"new_role":       string(newRole),
		},
		Success: true,
	})
	return nil
}

// DeactivateUser soft-deletes an account and revokes any live session
// immediately. The record itself is retained; the core never hard-deletes.
func (m *Manager) DeactivateUser(ctx context.Context, userID, actingUserID string) error {
	if err := m.requirePermission(actingUserID, PermManageUsers); err != nil {
		return err
	}

	m.mu.Lock()
	user := m.users[userID]
	if user == nil {
		m.mu.Unlock()
		return ErrNotFound
	}
	user.IsActive = false
	if user.SessionToken != "" {
		user.SessionToken = ""
		user.SessionExpires = nil
		obs.SessionClosed()
	}
	username := user.Username
	m.mu.Unlock()

	m.log.Append(audit.Entry{
		UserID:   actingUserID,
		Action:   actionUserDeactivated,
		Resource: "user_management",
		Details: map[string]any{
			"target_user_id": userID,
			"username":       username,
		},
		Success: true,
	})
	return nil
}

// AuditLogs returns up to limit of the most recent audit entries within the
// inclusive time bounds. Requires view_audit_logs on the requester.
func (m *Manager) AuditLogs(ctx context.Context, requestingUserID string, start, end *time.Time, limit int) ([]audit.Entry, error) {
	if err := m.requirePermission(requestingUserID, PermViewAuditLogs); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultAuditQueryLimit
	}
	return m.log.Query(start, end, limit), nil
}

// UserInfo returns the read-only projection for a user id.
func (m *Manager) UserInfo(ctx context.Context, userID string) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user := m.users[userID]
	if user == nil {
		return Info{}, ErrNotFound
	}
	return user.info(), nil
}

// ListUsers returns projections for every account, active or not. Requires
// manage_users on the requester.
func (m *Manager) ListUsers(ctx context.Context, requestingUserID string) ([]Info, error) {
	if err := m.requirePermission(requestingUserID, PermManageUsers); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]Info, 0, len(m.users))
	for _, u := range m.users {
		infos = append(infos, u.info())
	}
	// ULIDs sort by creation time.
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

func (m *Manager) requirePermission(actingUserID string, perm Permission) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	actor := m.users[actingUserID]
	if actor == nil || !actor.IsActive || !actor.HasPermission(perm) {
		return fmt.Errorf("%w: %s required", ErrAuthorization, perm)
	}
	return nil
}
