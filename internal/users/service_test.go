package users

import (
	"context"
	"errors"
	"testing"

	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/shared"
)

func adminActor(id int64) *authz.Principal {
	return &authz.Principal{ID: id, Email: "root@example.com", Role: authz.RoleAdmin, Status: authz.StatusActive}
}

func TestCreateRejectsUnknownRoleBeforeAnyWrite(t *testing.T) {
	// With nil dependencies any write attempt would panic, so reaching the
	// validation error proves nothing was written.
	svc := NewService(nil, nil, nil)

	_, err := svc.Create(context.Background(), adminActor(1), CreateInput{
		Email:    "new@example.com",
		Password: "correct-horse",
		Role:     "superuser",
	}, RequestMeta{})

	var validationErr *shared.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := validationErr.Fields["role"]; !ok {
		t.Fatalf("expected role field detail, got %v", validationErr.Fields)
	}
}

func TestChangeRoleRejectsUnknownRole(t *testing.T) {
	svc := NewService(nil, nil, nil)
	_, err := svc.ChangeRole(context.Background(), adminActor(1), 2, authz.Role("overlord"), RequestMeta{})
	var validationErr *shared.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestChangeRoleSelfDemotionConflicts(t *testing.T) {
	svc := NewService(nil, nil, nil)
	_, err := svc.ChangeRole(context.Background(), adminActor(5), 5, authz.RoleModerator, RequestMeta{})
	var conflictErr *shared.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDeleteSelfConflicts(t *testing.T) {
	svc := NewService(nil, nil, nil)
	err := svc.Delete(context.Background(), adminActor(9), 9, RequestMeta{})
	var conflictErr *shared.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
