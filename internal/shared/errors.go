package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrAuthenticationRequired indicates the request carries no valid session.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

// AuthorizationError reports a permission or role check failure. It carries
// the denied permission and the caller's role for diagnostics.
type AuthorizationError struct {
	Permission string
	Role       string
}

func (e *AuthorizationError) Error() string {
	if e.Permission == "" {
		return fmt.Sprintf("authorization denied for role %q", e.Role)
	}
	return fmt.Sprintf("authorization denied: missing %q (role %q)", e.Permission, e.Role)
}

// ValidationError carries per-field validation failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// NewValidationError builds a single-field ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// ConflictError reports a mutation blocked by a business rule, such as an
// admin removing their own admin role.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}
