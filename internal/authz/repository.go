package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlasops/atlas-admin/internal/shared"
)

// Repository resolves principals from the identity, role, status, and
// profile tables.
type Repository interface {
	PrincipalByID(ctx context.Context, userID int64) (*Principal, error)
	RoleByID(ctx context.Context, userID int64) (Role, error)
}

// PGRepository implements Repository against PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// PrincipalByID loads the full principal. A missing role or status row makes
// the principal unresolvable and maps to shared.ErrNotFound.
func (r *PGRepository) PrincipalByID(ctx context.Context, userID int64) (*Principal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT u.id, u.email, ur.role, us.status,
		       COALESCE(up.full_name, ''), COALESCE(up.avatar_url, ''),
		       u.last_login_at, u.created_at
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		JOIN user_statuses us ON us.user_id = u.id
		LEFT JOIN user_profiles up ON up.user_id = u.id
		WHERE u.id = $1`, userID)

	var (
		p         Principal
		role      string
		status    string
		lastLogin pgtype.Timestamptz
	)
	if err := row.Scan(&p.ID, &p.Email, &role, &status, &p.FullName, &p.AvatarURL, &lastLogin, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("authz: load principal: %w", err)
	}
	p.Role = Role(role)
	p.Status = Status(status)
	if lastLogin.Valid {
		t := lastLogin.Time
		p.LastLoginAt = &t
	}
	return &p, nil
}

// RoleByID is the lightweight lookup used by the route middleware: a single
// role-table read instead of the full principal join.
func (r *PGRepository) RoleByID(ctx context.Context, userID int64) (Role, error) {
	var role string
	err := r.pool.QueryRow(ctx, `SELECT role FROM user_roles WHERE user_id = $1`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", fmt.Errorf("authz: load role: %w", err)
	}
	return Role(role), nil
}

var _ Repository = (*PGRepository)(nil)
