// Package roles exposes the read-only role catalogue. Role membership
// changes go through the users module so they land in one audit trail.
package roles

import "github.com/atlasops/atlas-admin/internal/authz"

// RoleInfo describes one role with its permission set and member count.
type RoleInfo struct {
	Name        authz.Role         `json:"name"`
	Description string             `json:"description"`
	Permissions []authz.Permission `json:"permissions"`
	UserCount   int64              `json:"userCount"`
}

var roleDescriptions = map[authz.Role]string{
	authz.RoleAdmin:     "Full access to every administrative capability.",
	authz.RoleModerator: "User and content management without destructive or system powers.",
	authz.RoleUser:      "Dashboard access only.",
}
