package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/shared"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for user management.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `
	u.id, u.email, ur.role, us.status,
	COALESCE(up.full_name, ''), COALESCE(up.avatar_url, ''),
	u.last_login_at, u.created_at`

const userJoins = `
	FROM users u
	JOIN user_roles ur ON ur.user_id = u.id
	JOIN user_statuses us ON us.user_id = u.id
	LEFT JOIN user_profiles up ON up.user_id = u.id`

// Count returns the number of users matching the filters.
func (r *Repository) Count(ctx context.Context, filters ListFilters) (int, error) {
	where, args := buildWhere(filters)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+userJoins+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("users: count: %w", err)
	}
	return total, nil
}

// List returns users matching the filters ordered by creation, newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters, limit, offset int) ([]User, error) {
	where, args := buildWhere(filters)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s %s%s ORDER BY u.created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, userJoins, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: rows: %w", err)
	}
	return out, nil
}

// GetByID fetches a single user.
func (r *Repository) GetByID(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+userJoins+` WHERE u.id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// CreateTx inserts the identity plus its role, status, and profile rows.
// A duplicate email maps to a Conflict.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, email, passwordHash string, role authz.Role, fullName string) (User, error) {
	var (
		id        int64
		createdAt pgtype.Timestamptz
	)
	err := tx.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, created_at) VALUES ($1, $2, NOW()) RETURNING id, created_at`,
		email, passwordHash).Scan(&id, &createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, &shared.ConflictError{Reason: "email already registered"}
		}
		return User{}, fmt.Errorf("users: insert identity: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role, updated_at) VALUES ($1, $2, NOW())`, id, string(role)); err != nil {
		return User{}, fmt.Errorf("users: insert role: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO user_statuses (user_id, status, updated_at) VALUES ($1, $2, NOW())`, id, string(authz.StatusPending)); err != nil {
		return User{}, fmt.Errorf("users: insert status: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO user_profiles (user_id, full_name, updated_at) VALUES ($1, $2, NOW())`, id, fullName); err != nil {
		return User{}, fmt.Errorf("users: insert profile: %w", err)
	}
	return User{
		ID:        id,
		Email:     email,
		Role:      role,
		Status:    authz.StatusPending,
		FullName:  fullName,
		CreatedAt: createdAt.Time,
	}, nil
}

// UpdateProfileTx updates profile fields, creating the row when absent.
func (r *Repository) UpdateProfileTx(ctx context.Context, tx pgx.Tx, id int64, fullName, avatarURL *string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO user_profiles (user_id, full_name, avatar_url, updated_at)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = COALESCE($2, user_profiles.full_name),
			avatar_url = COALESCE($3, user_profiles.avatar_url),
			updated_at = NOW()`,
		id, fullName, avatarURL)
	if err != nil {
		return fmt.Errorf("users: update profile: %w", err)
	}
	return nil
}

// UpdateStatusTx changes the account status.
func (r *Repository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int64, status authz.Status) error {
	tag, err := tx.Exec(ctx, `UPDATE user_statuses SET status = $2, updated_at = NOW() WHERE user_id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("users: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateRoleTx changes the account role.
func (r *Repository) UpdateRoleTx(ctx context.Context, tx pgx.Tx, id int64, role authz.Role) error {
	tag, err := tx.Exec(ctx, `UPDATE user_roles SET role = $2, updated_at = NOW() WHERE user_id = $1`, id, string(role))
	if err != nil {
		return fmt.Errorf("users: update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteTx removes the identity; role, status, and profile rows cascade.
func (r *Repository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func buildWhere(f ListFilters) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(format string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}
	if f.Role != "" {
		add("ur.role = $%d", string(f.Role))
	}
	if f.Status != "" {
		add("us.status = $%d", string(f.Status))
	}
	if f.Search != "" {
		pattern := "%" + strings.ReplaceAll(strings.ReplaceAll(f.Search, "%", `\%`), "_", `\_`) + "%"
		args = append(args, pattern)
		n := len(args)
		conds = append(conds, fmt.Sprintf("(u.email ILIKE $%d OR COALESCE(up.full_name, '') ILIKE $%d)", n, n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u         User
		role      string
		status    string
		lastLogin pgtype.Timestamptz
	)
	if err := row.Scan(&u.ID, &u.Email, &role, &status, &u.FullName, &u.AvatarURL, &lastLogin, &u.CreatedAt); err != nil {
		return User{}, err
	}
	u.Role = authz.Role(role)
	u.Status = authz.Status(status)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
