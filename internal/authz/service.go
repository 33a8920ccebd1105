package authz

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/atlasops/atlas-admin/internal/shared"
)

// Guard answers authorization questions for the current request. Every call
// re-resolves the principal from the store; there is no caching, so checks
// are never stale at the cost of a lookup per call.
type Guard struct {
	repo Repository
}

// NewGuard constructs a Guard backed by the given repository.
func NewGuard(repo Repository) *Guard {
	return &Guard{repo: repo}
}

// CurrentPrincipal resolves the authenticated actor from the request session.
// An unauthenticated request or a user with missing role/status rows yields
// (nil, nil): absence is not an error.
func (g *Guard) CurrentPrincipal(ctx context.Context) (*Principal, error) {
	userID, ok := sessionUserID(ctx)
	if !ok {
		return nil, nil
	}
	principal, err := g.repo.PrincipalByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return principal, nil
}

// HasPermission reports whether the current principal holds the permission.
// Absent and suspended principals always get false.
func (g *Guard) HasPermission(ctx context.Context, perm Permission) (bool, error) {
	principal, err := g.CurrentPrincipal(ctx)
	if err != nil {
		return false, err
	}
	return principal.Can(perm), nil
}

// HasAny reports whether the current principal holds at least one of the
// permissions.
func (g *Guard) HasAny(ctx context.Context, perms ...Permission) (bool, error) {
	principal, err := g.CurrentPrincipal(ctx)
	if err != nil {
		return false, err
	}
	for _, perm := range perms {
		if principal.Can(perm) {
			return true, nil
		}
	}
	return false, nil
}

// HasAll reports whether the current principal holds every permission.
func (g *Guard) HasAll(ctx context.Context, perms ...Permission) (bool, error) {
	principal, err := g.CurrentPrincipal(ctx)
	if err != nil {
		return false, err
	}
	for _, perm := range perms {
		if !principal.Can(perm) {
			return false, nil
		}
	}
	return true, nil
}

// RequirePermission is the raising variant used at mutation boundaries. It
// returns the principal on success, shared.ErrAuthenticationRequired when no
// session exists, and a shared.AuthorizationError carrying the missing
// permission and the caller's role otherwise.
func (g *Guard) RequirePermission(ctx context.Context, perm Permission) (*Principal, error) {
	principal, err := g.CurrentPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, shared.ErrAuthenticationRequired
	}
	if !principal.Can(perm) {
		return nil, &shared.AuthorizationError{Permission: string(perm), Role: string(principal.Role)}
	}
	return principal, nil
}

// RequireRole enforces a minimum role under the superset ordering. Suspended
// principals are rejected regardless of role.
func (g *Guard) RequireRole(ctx context.Context, minimum Role) (*Principal, error) {
	principal, err := g.CurrentPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, shared.ErrAuthenticationRequired
	}
	if principal.Status == StatusSuspended || !principal.Role.AtLeast(minimum) {
		return nil, &shared.AuthorizationError{Role: string(principal.Role)}
	}
	return principal, nil
}

// RequireAdmin enforces the admin role.
func (g *Guard) RequireAdmin(ctx context.Context) (*Principal, error) {
	return g.RequireRole(ctx, RoleAdmin)
}

// RequireModerator enforces moderator or better.
func (g *Guard) RequireModerator(ctx context.Context) (*Principal, error) {
	return g.RequireRole(ctx, RoleModerator)
}

// RoleFor is the lightweight role lookup shared with the route middleware.
func (g *Guard) RoleFor(ctx context.Context, userID int64) (Role, error) {
	return g.repo.RoleByID(ctx, userID)
}

func sessionUserID(ctx context.Context) (int64, bool) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
