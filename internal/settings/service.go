package settings

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlasops/atlas-admin/internal/audit"
	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/platform/db"
)

// Service handles settings reads and audited updates.
type Service struct {
	pool     *pgxpool.Pool
	repo     *Repository
	recorder *audit.Recorder
}

// NewService builds a Service.
func NewService(pool *pgxpool.Pool, repo *Repository, recorder *audit.Recorder) *Service {
	return &Service{pool: pool, repo: repo, recorder: recorder}
}

// List returns every setting.
func (s *Service) List(ctx context.Context) ([]Setting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = []Setting{}
	}
	return settings, nil
}

// Get fetches one setting by key.
func (s *Service) Get(ctx context.Context, key string) (Setting, error) {
	return s.repo.GetByKey(ctx, key)
}

// Update validates the value against the setting's type and rules, then
// writes it together with the audit entry in one transaction.
func (s *Service) Update(ctx context.Context, actor *authz.Principal, key, value, ip, userAgent string) (Setting, error) {
	current, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return Setting{}, err
	}
	if err := current.ValidateValue(value); err != nil {
		return Setting{}, err
	}

	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.repo.UpdateValueTx(ctx, tx, key, value); err != nil {
			return err
		}
		entry := audit.Entry{
			Action:       "setting.update",
			Category:     audit.CategorySettings,
			ResourceType: "setting",
			ResourceID:   key,
			Changes: map[string]any{
				"value": map[string]any{"from": current.Value, "to": value},
			},
			IPAddress: ip,
			UserAgent: userAgent,
		}
		if actor != nil {
			entry.UserID = actor.ID
			entry.ActorEmail = actor.Email
			entry.ActorName = actor.FullName
			entry.ActorRole = string(actor.Role)
		}
		return s.recorder.RecordTx(ctx, tx, entry)
	})
	if err != nil {
		return Setting{}, err
	}
	current.Value = value
	return current, nil
}
