// Package analytics serves read-only aggregates for the admin dashboard:
// user counts, growth series, category breakdowns, top-N rankings, and the
// materialized dashboard summary.
package analytics

import (
	"math"
	"time"
)

// Summary mirrors one row of the dashboard_stats materialized view.
type Summary struct {
	TotalUsers   int64     `json:"totalUsers"`
	ActiveUsers  int64     `json:"activeUsers"`
	NewUsers30d  int64     `json:"newUsers30d"`
	ActionsToday int64     `json:"actionsToday"`
	RefreshedAt  time.Time `json:"refreshedAt"`
}

// GrowthPoint is one day of the cumulative growth series.
type GrowthPoint struct {
	Day             time.Time `json:"day"`
	NewUsers        int64     `json:"newUsers"`
	CumulativeUsers int64     `json:"cumulativeUsers"`
}

// CategorySlice is one audit category with its share of the total.
type CategorySlice struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Count    int64   `json:"count"`
	Percent  float64 `json:"percent"`
}

// TopUser ranks a user by action count within a window.
type TopUser struct {
	UserID      int64  `json:"userId"`
	Email       string `json:"email"`
	FullName    string `json:"fullName,omitempty"`
	ActionCount int64  `json:"actionCount"`
}

// Segment is one key of a role or status segmentation.
type Segment struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Percent computes a two-decimal percentage. A zero total yields 0, never
// NaN.
func Percent(count, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*10000) / 100
}
