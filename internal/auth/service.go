package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/atlasops/atlas-admin/internal/audit"
	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/platform/db"
	"github.com/atlasops/atlas-admin/internal/shared"
)

// LoginMeta carries request context for the session registry and audit trail.
type LoginMeta struct {
	SessionID string
	IPAddress string
	UserAgent string
	TTL       time.Duration
}

// Identity is the authenticated principal returned to the client on login.
type Identity struct {
	UserID   int64        `json:"id"`
	Email    string       `json:"email"`
	FullName string       `json:"fullName,omitempty"`
	Role     authz.Role   `json:"role"`
	Status   authz.Status `json:"status"`
}

// Service verifies credentials and maintains the session registry.
type Service struct {
	logger   *slog.Logger
	pool     *pgxpool.Pool
	repo     *Repository
	recorder *audit.Recorder
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, pool *pgxpool.Pool, repo *Repository, recorder *audit.Recorder) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, pool: pool, repo: repo, recorder: recorder}
}

// Login verifies the credentials and, on success, stamps last_login_at,
// registers the session, and audits the event in one transaction. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string, meta LoginMeta) (Identity, error) {
	cred, err := s.repo.CredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Identity{}, shared.ErrAuthenticationRequired
		}
		return Identity{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		s.recordFailure(ctx, cred, meta, "invalid password")
		return Identity{}, shared.ErrAuthenticationRequired
	}

	if cred.Status != authz.StatusActive {
		s.recordFailure(ctx, cred, meta, "account "+string(cred.Status))
		return Identity{}, &shared.AuthorizationError{Role: string(cred.Role)}
	}

	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.repo.TouchLastLogin(ctx, tx, cred.UserID); err != nil {
			return err
		}
		if err := s.repo.RegisterSession(ctx, tx, meta.SessionID, cred.UserID, meta.IPAddress, meta.UserAgent, time.Now().Add(meta.TTL)); err != nil {
			return err
		}
		return s.recorder.RecordTx(ctx, tx, s.entry(cred, meta, "auth.login", nil))
	})
	if err != nil {
		return Identity{}, err
	}

	return Identity{
		UserID:   cred.UserID,
		Email:    cred.Email,
		FullName: cred.FullName,
		Role:     cred.Role,
		Status:   cred.Status,
	}, nil
}

// Logout removes the session from the registry and audits the event.
func (s *Service) Logout(ctx context.Context, actor *authz.Principal, sessionID string, meta LoginMeta) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.repo.RemoveSession(ctx, tx, sessionID); err != nil {
			return err
		}
		entry := audit.Entry{
			UserID:     actor.ID,
			Action:     "auth.logout",
			Category:   audit.CategoryAuth,
			IPAddress:  meta.IPAddress,
			UserAgent:  meta.UserAgent,
			ActorEmail: actor.Email,
			ActorName:  actor.FullName,
			ActorRole:  string(actor.Role),
		}
		return s.recorder.RecordTx(ctx, tx, entry)
	})
}

// recordFailure audits a rejected attempt for a known account. A failed write
// never masks the login outcome.
func (s *Service) recordFailure(ctx context.Context, cred Credential, meta LoginMeta, reason string) {
	entry := s.entry(cred, meta, "auth.login_failed", map[string]any{"reason": reason})
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn("audit login failure", slog.Any("error", err))
	}
}

func (s *Service) entry(cred Credential, meta LoginMeta, action string, metadata map[string]any) audit.Entry {
	return audit.Entry{
		UserID:     cred.UserID,
		Action:     action,
		Category:   audit.CategoryAuth,
		Metadata:   metadata,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		ActorEmail: cred.Email,
		ActorName:  cred.FullName,
		ActorRole:  string(cred.Role),
	}
}
