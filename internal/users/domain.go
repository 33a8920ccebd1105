// Package users implements user management: listing, creation, profile and
// status updates, role changes, and deletion, all audited.
package users

import (
	"time"

	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/shared"
)

// User is the management view of an account: identity joined with role,
// status, and profile.
type User struct {
	ID          int64        `json:"id"`
	Email       string       `json:"email"`
	Role        authz.Role   `json:"role"`
	Status      authz.Status `json:"status"`
	FullName    string       `json:"fullName,omitempty"`
	AvatarURL   string       `json:"avatarUrl,omitempty"`
	LastLoginAt *time.Time   `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// ListFilters narrows a user listing. All provided filters are ANDed.
type ListFilters struct {
	Role   authz.Role
	Status authz.Status
	Search string
}

// ListResult is one page of users with pagination metadata.
type ListResult struct {
	Users      []User            `json:"users"`
	Pagination shared.Pagination `json:"pagination"`
}

// CreateInput carries the fields for a new account.
type CreateInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
	FullName string `json:"fullName" validate:"max=200"`
}

// UpdateInput carries mutable profile and status fields. Nil pointers leave
// the current value untouched.
type UpdateInput struct {
	FullName  *string `json:"fullName,omitempty" validate:"omitempty,max=200"`
	AvatarURL *string `json:"avatarUrl,omitempty" validate:"omitempty,url,max=500"`
	Status    *string `json:"status,omitempty"`
}
