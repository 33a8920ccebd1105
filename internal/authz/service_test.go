package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/atlasops/atlas-admin/internal/shared"
)

type stubRepo struct {
	principals map[int64]*Principal
}

func (r *stubRepo) PrincipalByID(ctx context.Context, id int64) (*Principal, error) {
	p, ok := r.principals[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubRepo) RoleByID(ctx context.Context, id int64) (Role, error) {
	p, ok := r.principals[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	return p.Role, nil
}

func ctxWithUser(id string) context.Context {
	sess := &shared.Session{}
	sess.SetUser(id)
	return shared.ContextWithSession(context.Background(), sess)
}

func newTestGuard() *Guard {
	return NewGuard(&stubRepo{principals: map[int64]*Principal{
		1: {ID: 1, Email: "root@example.com", Role: RoleAdmin, Status: StatusActive},
		2: {ID: 2, Email: "mod@example.com", Role: RoleModerator, Status: StatusActive},
		3: {ID: 3, Email: "member@example.com", Role: RoleUser, Status: StatusActive},
		4: {ID: 4, Email: "frozen@example.com", Role: RoleAdmin, Status: StatusSuspended},
	}})
}

func TestCurrentPrincipalAbsence(t *testing.T) {
	guard := newTestGuard()

	p, err := guard.CurrentPrincipal(context.Background())
	if err != nil || p != nil {
		t.Fatalf("no session: expected (nil, nil), got (%v, %v)", p, err)
	}

	p, err = guard.CurrentPrincipal(ctxWithUser("999"))
	if err != nil || p != nil {
		t.Fatalf("unknown user: expected (nil, nil), got (%v, %v)", p, err)
	}
}

func TestRequirePermissionMatchesHasPermission(t *testing.T) {
	guard := newTestGuard()
	for _, userID := range []string{"1", "2", "3", "4"} {
		ctx := ctxWithUser(userID)
		for _, perm := range AllPermissions() {
			has, err := guard.HasPermission(ctx, perm)
			if err != nil {
				t.Fatalf("HasPermission: %v", err)
			}
			_, reqErr := guard.RequirePermission(ctx, perm)
			if has != (reqErr == nil) {
				t.Fatalf("user %s perm %s: Has=%v but Require err=%v", userID, perm, has, reqErr)
			}
		}
	}
}

func TestRequirePermissionErrors(t *testing.T) {
	guard := newTestGuard()

	_, err := guard.RequirePermission(context.Background(), PermViewUsers)
	if !errors.Is(err, shared.ErrAuthenticationRequired) {
		t.Fatalf("expected authentication required, got %v", err)
	}

	_, err = guard.RequirePermission(ctxWithUser("3"), PermDeleteUsers)
	var authzErr *shared.AuthorizationError
	if !errors.As(err, &authzErr) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if authzErr.Permission != string(PermDeleteUsers) || authzErr.Role != string(RoleUser) {
		t.Fatalf("denial context wrong: %+v", authzErr)
	}
}

func TestRequireRoleSuspended(t *testing.T) {
	guard := newTestGuard()
	_, err := guard.RequireAdmin(ctxWithUser("4"))
	var authzErr *shared.AuthorizationError
	if !errors.As(err, &authzErr) {
		t.Fatalf("suspended admin must be denied, got %v", err)
	}
}

func TestRequireModeratorAcceptsAdmin(t *testing.T) {
	guard := newTestGuard()
	if _, err := guard.RequireModerator(ctxWithUser("1")); err != nil {
		t.Fatalf("admin must pass a moderator check: %v", err)
	}
	if _, err := guard.RequireModerator(ctxWithUser("3")); err == nil {
		t.Fatal("plain user must fail a moderator check")
	}
}

func TestHasAnyHasAll(t *testing.T) {
	guard := newTestGuard()
	ctx := ctxWithUser("2")

	any, err := guard.HasAny(ctx, PermDeleteUsers, PermViewUsers)
	if err != nil || !any {
		t.Fatalf("expected HasAny true, got (%v, %v)", any, err)
	}
	all, err := guard.HasAll(ctx, PermDeleteUsers, PermViewUsers)
	if err != nil || all {
		t.Fatalf("expected HasAll false, got (%v, %v)", all, err)
	}
}
