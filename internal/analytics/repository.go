package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlasops/atlas-admin/internal/shared"
)

// Repository runs the aggregate queries. Everything here is read-only except
// RefreshDashboard.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UserCounts returns total, active, and new-user counts for the window.
func (r *Repository) UserCounts(ctx context.Context, newSince time.Time) (total, active, newUsers int64, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE us.status = 'active'),
		       COUNT(*) FILTER (WHERE u.created_at >= $1)
		FROM users u
		JOIN user_statuses us ON us.user_id = u.id`, newSince.UTC()).Scan(&total, &active, &newUsers)
	if err != nil {
		err = fmt.Errorf("analytics: user counts: %w", err)
	}
	return total, active, newUsers, err
}

// GrowthSeries produces a day-bucketed cumulative growth series. The date
// scaffold is generated database-side so days without signups still appear.
func (r *Repository) GrowthSeries(ctx context.Context, from, to time.Time) ([]GrowthPoint, error) {
	rows, err := r.pool.Query(ctx, `
		WITH days AS (
			SELECT generate_series($1::date, $2::date, interval '1 day')::date AS day
		),
		daily AS (
			SELECT d.day, COUNT(u.id) AS new_users
			FROM days d
			LEFT JOIN users u ON u.created_at::date = d.day
			GROUP BY d.day
		)
		SELECT daily.day, daily.new_users,
		       (SELECT COUNT(*) FROM users WHERE created_at::date <= daily.day) AS cumulative_users
		FROM daily
		ORDER BY daily.day`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("analytics: growth series: %w", err)
	}
	defer rows.Close()

	var series []GrowthPoint
	for rows.Next() {
		var point GrowthPoint
		if err := rows.Scan(&point.Day, &point.NewUsers, &point.CumulativeUsers); err != nil {
			return nil, fmt.Errorf("analytics: scan growth: %w", err)
		}
		series = append(series, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics: growth rows: %w", err)
	}
	return series, nil
}

// CategoryCounts groups audit entries by category within the window.
func (r *Repository) CategoryCounts(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT action_category, COUNT(*)
		FROM audit_logs
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY action_category`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("analytics: category counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			category string
			count    int64
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("analytics: scan category: %w", err)
		}
		counts[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics: category rows: %w", err)
	}
	return counts, nil
}

// TopActiveUsers ranks users by audit action count within the window.
func (r *Repository) TopActiveUsers(ctx context.Context, from, to time.Time, limit int) ([]TopUser, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.user_id, COALESCE(u.email, ''), COALESCE(up.full_name, ''), COUNT(*) AS actions
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id
		LEFT JOIN user_profiles up ON up.user_id = a.user_id
		WHERE a.created_at >= $1 AND a.created_at <= $2
		GROUP BY a.user_id, u.email, up.full_name
		ORDER BY actions DESC, a.user_id
		LIMIT $3`, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("analytics: top users: %w", err)
	}
	defer rows.Close()

	var top []TopUser
	for rows.Next() {
		var user TopUser
		if err := rows.Scan(&user.UserID, &user.Email, &user.FullName, &user.ActionCount); err != nil {
			return nil, fmt.Errorf("analytics: scan top user: %w", err)
		}
		top = append(top, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics: top rows: %w", err)
	}
	return top, nil
}

// RoleCounts segments users by role.
func (r *Repository) RoleCounts(ctx context.Context) ([]Segment, error) {
	return r.segment(ctx, `SELECT role, COUNT(*) FROM user_roles GROUP BY role ORDER BY role`)
}

// StatusCounts segments users by status.
func (r *Repository) StatusCounts(ctx context.Context) ([]Segment, error) {
	return r.segment(ctx, `SELECT status, COUNT(*) FROM user_statuses GROUP BY status ORDER BY status`)
}

func (r *Repository) segment(ctx context.Context, query string) ([]Segment, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("analytics: segment: %w", err)
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		var seg Segment
		if err := rows.Scan(&seg.Key, &seg.Count); err != nil {
			return nil, fmt.Errorf("analytics: scan segment: %w", err)
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics: segment rows: %w", err)
	}
	return segments, nil
}

// DashboardSummary reads the dashboard_stats materialized view.
func (r *Repository) DashboardSummary(ctx context.Context) (Summary, error) {
	var s Summary
	err := r.pool.QueryRow(ctx, `
		SELECT total_users, active_users, new_users_30d, actions_today, refreshed_at
		FROM dashboard_stats`).Scan(&s.TotalUsers, &s.ActiveUsers, &s.NewUsers30d, &s.ActionsToday, &s.RefreshedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Summary{}, shared.ErrNotFound
		}
		return Summary{}, fmt.Errorf("analytics: dashboard summary: %w", err)
	}
	return s, nil
}

// RefreshDashboard recomputes the materialized view. Invoked on demand from
// the worker, never on a timer.
func (r *Repository) RefreshDashboard(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `REFRESH MATERIALIZED VIEW CONCURRENTLY dashboard_stats`); err != nil {
		return fmt.Errorf("analytics: refresh dashboard_stats: %w", err)
	}
	return nil
}
