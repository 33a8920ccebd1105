package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atlasops/atlas-admin/internal/analytics"
	"github.com/atlasops/atlas-admin/internal/observability"
)

// DashboardRefreshJob runs the materialized view refresh and invalidates the
// summary cache afterwards so the next dashboard read sees fresh numbers.
type DashboardRefreshJob struct {
	Repo    *analytics.Repository
	Cache   *analytics.Cache
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// NewDashboardRefreshJob initialises the refresh handler.
func NewDashboardRefreshJob(repo *analytics.Repository, cache *analytics.Cache, logger *slog.Logger, metrics *observability.Metrics) *DashboardRefreshJob {
	return &DashboardRefreshJob{Repo: repo, Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle executes one refresh task.
func (j *DashboardRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Repo == nil {
		return errors.New("dashboard refresh: handler not configured")
	}
	var payload DashboardRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.Int64("requested_by", payload.RequestedBy))
	logger.Info("starting dashboard refresh")

	start := time.Now()
	err := j.Repo.RefreshDashboard(ctx)
	j.Metrics.ObserveJob(TaskDashboardRefresh, err, time.Since(start))
	if err != nil {
		logger.Error("refresh failed", slog.Any("error", err))
		return err
	}

	if err := j.Cache.Bump(ctx); err != nil {
		// The view is already fresh; stale cache entries expire on TTL.
		logger.Warn("cache bump failed", slog.Any("error", err))
	}

	logger.Info("completed dashboard refresh", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *DashboardRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardRefresh))
	}
	return slog.Default().With(slog.String("job", TaskDashboardRefresh))
}
