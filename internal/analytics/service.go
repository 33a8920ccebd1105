package analytics

import (
	"context"
	"sort"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTopN bounds the active-user ranking.
const DefaultTopN = 10

var labelCaser = cases.Title(language.English)

// Service coordinates aggregate queries with the cache layer. Everything
// except the dashboard summary re-scans on every call; the summary reads the
// materialized view through the short-TTL cache.
type Service struct {
	repo  *Repository
	cache *Cache
	now   func() time.Time
}

// NewService wires a Repository with a Cache helper.
func NewService(repo *Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// UserCounts returns total/active/new counts. A non-positive window falls
// back to 30 days.
func (s *Service) UserCounts(ctx context.Context, windowDays int) (total, active, newUsers int64, err error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	since := s.now().UTC().AddDate(0, 0, -windowDays)
	return s.repo.UserCounts(ctx, since)
}

// Growth returns the day-bucketed cumulative series for the window.
func (s *Service) Growth(ctx context.Context, from, to time.Time) ([]GrowthPoint, error) {
	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	series, err := s.repo.GrowthSeries(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if series == nil {
		series = []GrowthPoint{}
	}
	return series, nil
}

// CategoryBreakdown returns per-category counts with two-decimal
// percentages. With no activity every percentage is zero.
func (s *Service) CategoryBreakdown(ctx context.Context, from, to time.Time) ([]CategorySlice, error) {
	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	counts, err := s.repo.CategoryCounts(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return BreakdownFromCounts(counts), nil
}

// BreakdownFromCounts converts raw category counts into ordered slices with
// percentage shares, largest first.
func BreakdownFromCounts(counts map[string]int64) []CategorySlice {
	var total int64
	for _, count := range counts {
		total += count
	}
	slices := make([]CategorySlice, 0, len(counts))
	for category, count := range counts {
		slices = append(slices, CategorySlice{
			Category: category,
			Label:    labelCaser.String(category),
			Count:    count,
			Percent:  Percent(count, total),
		})
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Count != slices[j].Count {
			return slices[i].Count > slices[j].Count
		}
		return slices[i].Category < slices[j].Category
	})
	return slices
}

// TopUsers ranks the most active users in the window.
func (s *Service) TopUsers(ctx context.Context, from, to time.Time, limit int) ([]TopUser, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultTopN
	}
	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	top, err := s.repo.TopActiveUsers(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []TopUser{}
	}
	return top, nil
}

// Segmentation returns role and status segment counts.
func (s *Service) Segmentation(ctx context.Context) (roles, statuses []Segment, err error) {
	roles, err = s.repo.RoleCounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	statuses, err = s.repo.StatusCounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	return roles, statuses, nil
}

// DashboardSummary reads the materialized view through the cache.
func (s *Service) DashboardSummary(ctx context.Context) (Summary, error) {
	key, err := s.cache.BuildKey(ctx, "analytics", "dashboard")
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	err = s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (any, error) {
		return s.repo.DashboardSummary(ctx)
	})
	return summary, err
}

// InvalidateDashboard orphans cached summaries after a refresh.
func (s *Service) InvalidateDashboard(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
