package authz

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/atlasops/atlas-admin/internal/platform/httpx"
	"github.com/atlasops/atlas-admin/internal/shared"
)

// Gate protects configured path prefixes. Requests outside the prefixes pass
// through untouched; this is a route gate, not a general authorization layer.
// Unauthenticated callers are redirected to the login page with a redirectTo
// continuation, and authenticated callers below moderator go to the
// unauthorized page.
type Gate struct {
	Guard             *Guard
	Logger            *slog.Logger
	ProtectedPrefixes []string
	LoginPath         string
	UnauthorizedPath  string
}

// Handler wraps next with the route gate.
func (g Gate) Handler(next http.Handler) http.Handler {
	loginPath := g.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	unauthorizedPath := g.UnauthorizedPath
	if unauthorizedPath == "" {
		unauthorizedPath = "/unauthorized"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.protects(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		userID, ok := sessionUserID(r.Context())
		if !ok {
			redirect := loginPath + "?redirectTo=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, redirect, http.StatusSeeOther)
			return
		}
		role, err := g.Guard.RoleFor(r.Context(), userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				http.Redirect(w, r, unauthorizedPath, http.StatusSeeOther)
				return
			}
			if g.Logger != nil {
				g.Logger.Error("route gate role lookup", slog.Any("error", err))
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if !role.AtLeast(RoleModerator) {
			http.Redirect(w, r, unauthorizedPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g Gate) protects(path string) bool {
	for _, prefix := range g.ProtectedPrefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware wires permission checks into chi route groups for the JSON API.
type Middleware struct {
	Guard  *Guard
	Logger *slog.Logger
}

// RequirePermission rejects requests whose principal lacks the permission.
func (m Middleware) RequirePermission(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := m.Guard.RequirePermission(r.Context(), perm); err != nil {
				m.respond(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny rejects requests whose principal holds none of the permissions.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := m.Guard.CurrentPrincipal(r.Context())
			if err != nil {
				m.respond(w, err)
				return
			}
			if principal == nil {
				m.respond(w, shared.ErrAuthenticationRequired)
				return
			}
			for _, perm := range perms {
				if principal.Can(perm) {
					next.ServeHTTP(w, r)
					return
				}
			}
			m.respond(w, &shared.AuthorizationError{Permission: string(perms[0]), Role: string(principal.Role)})
		})
	}
}

func (m Middleware) respond(w http.ResponseWriter, err error) {
	var authzErr *shared.AuthorizationError
	if !errors.Is(err, shared.ErrAuthenticationRequired) && !errors.As(err, &authzErr) && m.Logger != nil {
		m.Logger.Error("authz middleware", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
