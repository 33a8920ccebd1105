// Package auth implements session login and logout.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/shared"
)

// Credential carries the columns needed to verify a login attempt.
type Credential struct {
	UserID       int64
	Email        string
	PasswordHash string
	Role         authz.Role
	Status       authz.Status
	FullName     string
}

// Repository handles credential lookup and the session registry table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CredentialByEmail fetches the credential row for a login attempt. Email
// matching is case insensitive.
func (r *Repository) CredentialByEmail(ctx context.Context, email string) (Credential, error) {
	var cred Credential
	err := r.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.password_hash, ur.role, us.status, COALESCE(up.full_name, '')
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		JOIN user_statuses us ON us.user_id = u.id
		LEFT JOIN user_profiles up ON up.user_id = u.id
		WHERE lower(u.email) = lower($1)`, email).
		Scan(&cred.UserID, &cred.Email, &cred.PasswordHash, &cred.Role, &cred.Status, &cred.FullName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credential{}, shared.ErrNotFound
		}
		return Credential{}, fmt.Errorf("auth: credential by email: %w", err)
	}
	return cred, nil
}

// TouchLastLogin stamps the user's last successful login.
func (r *Repository) TouchLastLogin(ctx context.Context, tx pgx.Tx, userID int64) error {
	if _, err := tx.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("auth: touch last login: %w", err)
	}
	return nil
}

// RegisterSession records an active session so administrators can review and
// correlate logins. The Redis copy remains authoritative for expiry.
func (r *Repository) RegisterSession(ctx context.Context, tx pgx.Tx, sessionID string, userID int64, ipAddress, userAgent string, expiresAt time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO user_sessions (id, user_id, ip_address, user_agent, created_at, expires_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NOW(), $5)
		ON CONFLICT (id) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    ip_address = EXCLUDED.ip_address,
		    user_agent = EXCLUDED.user_agent,
		    expires_at = EXCLUDED.expires_at`,
		sessionID, userID, ipAddress, userAgent, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("auth: register session: %w", err)
	}
	return nil
}

// RemoveSession drops a session from the registry at logout.
func (r *Repository) RemoveSession(ctx context.Context, tx pgx.Tx, sessionID string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM user_sessions WHERE id = $1`, sessionID); err != nil {
		return fmt.Errorf("auth: remove session: %w", err)
	}
	return nil
}
