// Package authz implements the role/permission model: a static role to
// permission matrix, per-request guards, and the protected-route middleware.
package authz

import "time"

// Role is one of the three fixed roles. The permission sets are strictly
// nested: admin covers moderator covers user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Roles lists every valid role, most privileged first.
func Roles() []Role {
	return []Role{RoleAdmin, RoleModerator, RoleUser}
}

// Valid reports whether the role is a member of the enum.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleModerator:
		return 2
	case RoleUser:
		return 1
	}
	return 0
}

// AtLeast reports whether the role meets the minimum under the superset
// ordering, so admin satisfies a moderator requirement.
func (r Role) AtLeast(minimum Role) bool {
	return r.rank() >= minimum.rank()
}

// Status is the account status of a principal. A suspended principal holds
// no permissions regardless of role.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusPending   Status = "pending"
)

// Valid reports whether the status is a member of the enum.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusPending:
		return true
	}
	return false
}

// Permission is an atomic named capability checked against a role's set.
type Permission string

const (
	PermViewUsers       Permission = "view_users"
	PermCreateUsers     Permission = "create_users"
	PermEditUsers       Permission = "edit_users"
	PermDeleteUsers     Permission = "delete_users"
	PermManageUserRoles Permission = "manage_user_roles"
	PermViewRoles       Permission = "view_roles"
	PermEditRoles       Permission = "edit_roles"
	PermViewAuditLogs   Permission = "view_audit_logs"
	PermViewSettings    Permission = "view_settings"
	PermEditSettings    Permission = "edit_settings"
	PermViewDashboard   Permission = "view_dashboard"
	PermViewAnalytics   Permission = "view_analytics"
	PermViewContent     Permission = "view_content"
	PermCreateContent   Permission = "create_content"
	PermEditContent     Permission = "edit_content"
	PermDeleteContent   Permission = "delete_content"
)

var allPermissions = []Permission{
	PermViewUsers,
	PermCreateUsers,
	PermEditUsers,
	PermDeleteUsers,
	PermManageUserRoles,
	PermViewRoles,
	PermEditRoles,
	PermViewAuditLogs,
	PermViewSettings,
	PermEditSettings,
	PermViewDashboard,
	PermViewAnalytics,
	PermViewContent,
	PermCreateContent,
	PermEditContent,
	PermDeleteContent,
}

// rolePermissions is the static, process-wide role to permission table.
// Order within a set follows allPermissions.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: allPermissions,
	RoleModerator: {
		PermViewUsers,
		PermCreateUsers,
		PermEditUsers,
		PermViewDashboard,
		PermViewAnalytics,
		PermViewContent,
		PermCreateContent,
		PermEditContent,
		PermDeleteContent,
	},
	RoleUser: {
		PermViewDashboard,
	},
}

// AllPermissions returns the full permission enumeration.
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// PermissionsFor returns the permission set granted to a role. Total over the
// enum: every valid role has an entry, and unknown roles get an empty set.
func PermissionsFor(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// Principal describes the authenticated actor: identity joined with its role,
// status, and profile rows.
type Principal struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	Status      Status     `json:"status"`
	FullName    string     `json:"fullName,omitempty"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Can reports whether the principal holds the permission. Suspended
// principals hold none.
func (p *Principal) Can(perm Permission) bool {
	if p == nil || p.Status == StatusSuspended {
		return false
	}
	for _, granted := range rolePermissions[p.Role] {
		if granted == perm {
			return true
		}
	}
	return false
}
