package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlasops/atlas-admin/internal/shared"
)

// Repository provides PostgreSQL backed persistence for settings.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const settingColumns = `id, key, value, data_type, category, validation_rules, is_public, updated_at`

// List returns all settings ordered by category then key.
func (r *Repository) List(ctx context.Context) ([]Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+settingColumns+` FROM system_settings ORDER BY category, key`)
	if err != nil {
		return nil, fmt.Errorf("settings: list: %w", err)
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		setting, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("settings: rows: %w", err)
	}
	return out, nil
}

// GetByKey fetches one setting.
func (r *Repository) GetByKey(ctx context.Context, key string) (Setting, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+settingColumns+` FROM system_settings WHERE key = $1`, key)
	setting, err := scanSetting(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Setting{}, shared.ErrNotFound
		}
		return Setting{}, err
	}
	return setting, nil
}

// UpdateValueTx writes a new value inside the caller's transaction.
func (r *Repository) UpdateValueTx(ctx context.Context, tx pgx.Tx, key, value string) error {
	tag, err := tx.Exec(ctx, `UPDATE system_settings SET value = $2, updated_at = NOW() WHERE key = $1`, key, value)
	if err != nil {
		return fmt.Errorf("settings: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanSetting(row pgx.Row) (Setting, error) {
	var (
		s        Setting
		dataType string
		rules    []byte
	)
	if err := row.Scan(&s.ID, &s.Key, &s.Value, &dataType, &s.Category, &rules, &s.IsPublic, &s.UpdatedAt); err != nil {
		return Setting{}, err
	}
	s.DataType = DataType(dataType)
	if len(rules) > 0 {
		var parsed ValidationRules
		if err := json.Unmarshal(rules, &parsed); err == nil {
			s.ValidationRules = &parsed
		}
	}
	return s, nil
}
