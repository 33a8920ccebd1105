package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/atlasops/atlas-admin/internal/audit"
	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/platform/db"
	"github.com/atlasops/atlas-admin/internal/shared"
)

// RequestMeta carries request attribution for audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// Service handles user management business rules. Every mutation and its
// audit entry share one transaction.
type Service struct {
	pool     *pgxpool.Pool
	repo     *Repository
	recorder *audit.Recorder
}

// NewService builds a Service.
func NewService(pool *pgxpool.Pool, repo *Repository, recorder *audit.Recorder) *Service {
	return &Service{pool: pool, repo: repo, recorder: recorder}
}

// List returns one page of users matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters, page, pageSize int) (ListResult, error) {
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return ListResult{}, err
	}
	pagination := shared.NewPagination(page, pageSize, total)
	users := []User{}
	if total > 0 {
		users, err = s.repo.List(ctx, filters, pagination.PageSize, pagination.Offset())
		if err != nil {
			return ListResult{}, err
		}
		if users == nil {
			users = []User{}
		}
	}
	return ListResult{Users: users, Pagination: pagination}, nil
}

// Get fetches a single user.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and inserts a new account. An unknown role fails
// validation before anything is written, so no row and no audit entry exist
// on failure.
func (s *Service) Create(ctx context.Context, actor *authz.Principal, input CreateInput, meta RequestMeta) (User, error) {
	role := authz.Role(input.Role)
	if !role.Valid() {
		return User{}, shared.NewValidationError("role", fmt.Sprintf("unknown role %q", input.Role))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}

	var created User
	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		created, err = s.repo.CreateTx(ctx, tx, input.Email, string(hash), role, input.FullName)
		if err != nil {
			return err
		}
		return s.recorder.RecordTx(ctx, tx, auditEntry(actor, meta, audit.CategoryUser, "user.create", created.ID, map[string]any{
			"email": created.Email,
			"role":  string(created.Role),
		}))
	})
	if err != nil {
		return User{}, err
	}
	return created, nil
}

// Update applies profile and status changes.
func (s *Service) Update(ctx context.Context, actor *authz.Principal, id int64, input UpdateInput, meta RequestMeta) (User, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	var status *authz.Status
	if input.Status != nil {
		parsed := authz.Status(*input.Status)
		if !parsed.Valid() {
			return User{}, shared.NewValidationError("status", fmt.Sprintf("unknown status %q", *input.Status))
		}
		status = &parsed
	}

	changes := map[string]any{}
	if input.FullName != nil && *input.FullName != current.FullName {
		changes["fullName"] = map[string]any{"from": current.FullName, "to": *input.FullName}
	}
	if input.AvatarURL != nil && *input.AvatarURL != current.AvatarURL {
		changes["avatarUrl"] = map[string]any{"from": current.AvatarURL, "to": *input.AvatarURL}
	}
	if status != nil && *status != current.Status {
		changes["status"] = map[string]any{"from": string(current.Status), "to": string(*status)}
	}

	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if input.FullName != nil || input.AvatarURL != nil {
			if err := s.repo.UpdateProfileTx(ctx, tx, id, input.FullName, input.AvatarURL); err != nil {
				return err
			}
		}
		if status != nil {
			if err := s.repo.UpdateStatusTx(ctx, tx, id, *status); err != nil {
				return err
			}
		}
		entry := auditEntry(actor, meta, audit.CategoryUser, "user.update", id, changes)
		return s.recorder.RecordTx(ctx, tx, entry)
	})
	if err != nil {
		return User{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// ChangeRole assigns a new role. An admin cannot remove their own admin
// role; that mutation is rejected with a Conflict before anything runs.
func (s *Service) ChangeRole(ctx context.Context, actor *authz.Principal, id int64, newRole authz.Role, meta RequestMeta) (User, error) {
	if !newRole.Valid() {
		return User{}, shared.NewValidationError("role", fmt.Sprintf("unknown role %q", newRole))
	}
	if actor != nil && actor.ID == id && actor.Role == authz.RoleAdmin && newRole != authz.RoleAdmin {
		return User{}, &shared.ConflictError{Reason: "cannot remove your own admin role"}
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.repo.UpdateRoleTx(ctx, tx, id, newRole); err != nil {
			return err
		}
		return s.recorder.RecordTx(ctx, tx, auditEntry(actor, meta, audit.CategoryRole, "user.role_change", id, map[string]any{
			"role": map[string]any{"from": string(current.Role), "to": string(newRole)},
		}))
	})
	if err != nil {
		return User{}, err
	}
	current.Role = newRole
	return current, nil
}

// Delete removes an account. Deleting one's own account is rejected with a
// Conflict.
func (s *Service) Delete(ctx context.Context, actor *authz.Principal, id int64, meta RequestMeta) error {
	if actor != nil && actor.ID == id {
		return &shared.ConflictError{Reason: "cannot delete your own account"}
	}
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.repo.DeleteTx(ctx, tx, id); err != nil {
			return err
		}
		return s.recorder.RecordTx(ctx, tx, auditEntry(actor, meta, audit.CategoryUser, "user.delete", id, map[string]any{
			"email": target.Email,
		}))
	})
}

func auditEntry(actor *authz.Principal, meta RequestMeta, category audit.Category, action string, resourceID int64, changes map[string]any) audit.Entry {
	entry := audit.Entry{
		Action:       action,
		Category:     category,
		ResourceType: "user",
		ResourceID:   fmt.Sprintf("%d", resourceID),
		Changes:      changes,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}
	if actor != nil {
		entry.UserID = actor.ID
		entry.ActorEmail = actor.Email
		entry.ActorName = actor.FullName
		entry.ActorRole = string(actor.Role)
	}
	return entry
}
