// Package jobs holds the background task definitions and the Asynq worker.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardRefresh recomputes the dashboard_stats materialized view.
	TaskDashboardRefresh = "analytics:dashboard_refresh"
)

// DashboardRefreshPayload records who asked for the refresh.
type DashboardRefreshPayload struct {
	RequestedBy int64     `json:"requestedBy,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

// NewDashboardRefreshTask constructs the refresh task. Uniqueness keeps a
// burst of refresh clicks from stacking identical jobs.
func NewDashboardRefreshTask(payload DashboardRefreshPayload) (*asynq.Task, []asynq.Option, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.Queue(QueueDefault),
		asynq.Unique(time.Minute),
		asynq.MaxRetry(3),
	}
	return asynq.NewTask(TaskDashboardRefresh, data), opts, nil
}
