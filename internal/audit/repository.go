package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed audit queries.
type Repository interface {
	Count(ctx context.Context, filters Filters) (int, error)
	Page(ctx context.Context, filters Filters, limit, offset int) ([]Entry, error)
}

// PGRepository implements Repository with dynamically composed predicates.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const selectColumns = `
	a.id, a.user_id, a.action, a.action_category,
	COALESCE(a.resource_type, ''), COALESCE(a.resource_id, ''),
	a.changes, a.metadata,
	COALESCE(a.ip_address, ''), COALESCE(a.user_agent, ''),
	a.actor_email, COALESCE(a.actor_name, ''), a.actor_role,
	COALESCE(u.email, ''), COALESCE(up.full_name, ''), COALESCE(ur.role, ''),
	a.created_at`

// Rows survive even when the acting user has been deleted or changed since
// the action, so all the user joins are LEFT.
const fromClause = `
	FROM audit_logs a
	LEFT JOIN users u ON u.id = a.user_id
	LEFT JOIN user_profiles up ON up.user_id = a.user_id
	LEFT JOIN user_roles ur ON ur.user_id = a.user_id`

// Count returns the number of entries matching the filters.
func (r *PGRepository) Count(ctx context.Context, filters Filters) (int, error) {
	where, args := buildWhere(filters)
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs a`+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("audit: count: %w", err)
	}
	return total, nil
}

// Page returns entries matching the filters, newest first.
func (r *PGRepository) Page(ctx context.Context, filters Filters, limit, offset int) ([]Entry, error) {
	where, args := buildWhere(filters)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s %s%s ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d`,
		selectColumns, fromClause, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: page: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// buildWhere composes the AND predicate list. Search, when present, is ORed
// internally across action and metadata text.
func buildWhere(f Filters) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(format string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if f.UserID != nil {
		add("a.user_id = $%d", *f.UserID)
	}
	if f.Category != "" {
		add("a.action_category = $%d", string(f.Category))
	}
	if f.Action != "" {
		add("a.action ILIKE $%d", "%"+escapeLike(f.Action)+"%")
	}
	if f.ResourceType != "" {
		add("a.resource_type = $%d", f.ResourceType)
	}
	if f.ResourceID != "" {
		add("a.resource_id = $%d", f.ResourceID)
	}
	if f.IPAddress != "" {
		add("a.ip_address = $%d", f.IPAddress)
	}
	if !f.StartDate.IsZero() {
		add("a.created_at >= $%d", f.StartDate.UTC())
	}
	if !f.EndDate.IsZero() {
		add("a.created_at <= $%d", f.EndDate.UTC())
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(a.action ILIKE $%d OR a.metadata::text ILIKE $%d)", n, n))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

func scanEntries(rows pgx.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			category  string
			changes   []byte
			metadata  []byte
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Action, &category,
			&e.ResourceType, &e.ResourceID,
			&changes, &metadata,
			&e.IPAddress, &e.UserAgent,
			&e.ActorEmail, &e.ActorName, &e.ActorRole,
			&e.CurrentEmail, &e.CurrentName, &e.CurrentRole,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		e.Category = Category(category)
		if len(changes) > 0 {
			_ = json.Unmarshal(changes, &e.Changes)
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &e.Metadata)
		}
		if createdAt.Valid {
			e.CreatedAt = createdAt.Time
		} else {
			e.CreatedAt = time.Time{}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: rows: %w", err)
	}
	return entries, nil
}

var _ Repository = (*PGRepository)(nil)
