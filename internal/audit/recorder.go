package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertEntrySQL = `
	INSERT INTO audit_logs (
		user_id, action, action_category, resource_type, resource_id,
		changes, metadata, ip_address, user_agent,
		actor_email, actor_name, actor_role, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, COALESCE($13, NOW()))`

// Recorder writes audit entries. Actor email/name/role must be supplied by
// the caller from the acting principal so the row is a point-in-time
// snapshot, not a live join.
type Recorder struct {
	pool *pgxpool.Pool
}

// NewRecorder returns a Recorder backed by the pool.
func NewRecorder(pool *pgxpool.Pool) *Recorder {
	return &Recorder{pool: pool}
}

// Record persists an entry outside any caller transaction.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	if r == nil || r.pool == nil {
		return errors.New("audit: recorder not initialised")
	}
	args, err := insertArgs(entry)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, insertEntrySQL, args...)
	return err
}

// RecordTx persists an entry inside the caller's transaction, so a mutation
// and its audit row commit or roll back together.
func (r *Recorder) RecordTx(ctx context.Context, tx pgx.Tx, entry Entry) error {
	args, err := insertArgs(entry)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, insertEntrySQL, args...)
	return err
}

func insertArgs(entry Entry) ([]any, error) {
	if entry.Action == "" || !entry.Category.Valid() {
		return nil, errors.New("audit: entry requires action and a valid category")
	}
	changes, err := marshalJSON(entry.Changes)
	if err != nil {
		return nil, err
	}
	metadata, err := marshalJSON(entry.Metadata)
	if err != nil {
		return nil, err
	}
	var createdAt any
	if !entry.CreatedAt.IsZero() {
		createdAt = entry.CreatedAt.UTC()
	} else {
		createdAt = (*time.Time)(nil)
	}
	return []any{
		entry.UserID,
		entry.Action,
		string(entry.Category),
		nullable(entry.ResourceType),
		nullable(entry.ResourceID),
		changes,
		metadata,
		nullable(entry.IPAddress),
		nullable(entry.UserAgent),
		entry.ActorEmail,
		nullable(entry.ActorName),
		entry.ActorRole,
		createdAt,
	}, nil
}

func marshalJSON(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
