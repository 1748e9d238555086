package access

import "strings"

// Role is a named tier granting a fixed, catalog-defined permission set.
type Role string

const (
	RoleEndUser    Role = "end_user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Permission is an atomic capability tag checked before an action executes.
type Permission string

const (
	// End-user permissions.
	PermExecuteTask     Permission = "execute_task"
	PermViewTaskHistory Permission = "view_task_history"
	PermViewBasicStatus Permission = "view_basic_status"

	// Administrator permissions.
	PermConfigureTools     Permission = "configure_tools"
	PermViewToolMetrics    Permission = "view_tool_metrics"
	PermManageToolRegistry Permission = "manage_tool_registry"
	PermViewSystemLogs     Permission = "view_system_logs"
	PermViewAdminDashboard Permission = "view_admin_dashboard"
	PermModifyAISettings   Permission = "modify_ai_settings"

	// Super-administrator permissions.
	PermManageUsers          Permission = "manage_users"
	PermManageRoles          Permission = "manage_roles"
	PermViewAuditLogs        Permission = "view_audit_logs"
	PermSystemAdministration Permission = "system_administration"
)

// The catalog is the single source of truth for role permission sets. The
// tiers are strictly nested: admin extends end_user, super_admin extends
// admin. Additions to a lower tier must be added to every tier above it.
var rolePermissions = map[Role][]Permission{
	RoleEndUser: {
		PermExecuteTask,
		PermViewTaskHistory,
		PermViewBasicStatus,
	},
	RoleAdmin: {
		PermExecuteTask,
		PermViewTaskHistory,
		PermViewBasicStatus,
		PermConfigureTools,
		PermViewToolMetrics,
		PermManageToolRegistry,
		PermViewSystemLogs,
		PermViewAdminDashboard,
		PermModifyAISettings,
	},
	RoleSuperAdmin: {
		PermExecuteTask,
		PermViewTaskHistory,
		PermViewBasicStatus,
		PermConfigureTools,
		PermViewToolMetrics,
		PermManageToolRegistry,
		PermViewSystemLogs,
		PermViewAdminDashboard,
		PermModifyAISettings,
		PermManageUsers,
		PermManageRoles,
		PermViewAuditLogs,
		PermSystemAdministration,
	},
}

// ParseRole normalizes a role name. Unknown names return false.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleEndUser:
		return RoleEndUser, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleSuperAdmin:
		return RoleSuperAdmin, true
	default:
		return "", false
	}
}

// PermissionsFor returns the catalog permission set for a role as a fresh
// map. Callers own the copy; the catalog itself is never mutated.
func PermissionsFor(role Role) map[Permission]struct{} {
	list := rolePermissions[role]
	set := make(map[Permission]struct{}, len(list))
	for _, p := range list {
		set[p] = struct{}{}
	}
	return set
}

// Roles lists all known roles.
func Roles() []Role {
	return []Role{RoleEndUser, RoleAdmin, RoleSuperAdmin}
}
