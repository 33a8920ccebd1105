// Package analytichttp exposes the analytics and dashboard endpoints.
package analytichttp

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/atlasops/atlas-admin/internal/analytics"
	"github.com/atlasops/atlas-admin/internal/audit"
	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/platform/httpx"
	"github.com/atlasops/atlas-admin/internal/shared"
)

// RefreshEnqueuer schedules a dashboard_stats refresh in the background.
type RefreshEnqueuer interface {
	EnqueueDashboardRefresh(ctx context.Context) error
}

// Handler serves analytics requests.
type Handler struct {
	logger   *slog.Logger
	service  *analytics.Service
	guard    *authz.Guard
	enqueuer RefreshEnqueuer
	recorder *audit.Recorder
	group    singleflight.Group
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *analytics.Service, guard *authz.Guard, enqueuer RefreshEnqueuer, recorder *audit.Recorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard, enqueuer: enqueuer, recorder: recorder}
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	// Dashboard landings arrive in bursts; collapse concurrent reads into
	// one view scan.
	value, err, _ := h.group.Do("dashboard-summary", func() (any, error) {
		return h.service.DashboardSummary(r.Context())
	})
	if err != nil {
		h.logger.Error("dashboard summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, value)
}

func (h *Handler) handleCounts(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", 30)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	total, active, newUsers, err := h.service.UserCounts(r.Context(), days)
	if err != nil {
		h.logger.Error("user counts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"totalUsers":  total,
		"activeUsers": active,
		"newUsers":    newUsers,
		"windowDays":  days,
	})
}

func (h *Handler) handleGrowth(w http.ResponseWriter, r *http.Request) {
	from, to, err := windowParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	series, err := h.service.Growth(r.Context(), from, to)
	if err != nil {
		h.logger.Error("growth series", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"series": series})
}

func (h *Handler) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	from, to, err := windowParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	breakdown, err := h.service.CategoryBreakdown(r.Context(), from, to)
	if err != nil {
		h.logger.Error("category breakdown", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": breakdown})
}

func (h *Handler) handleTopUsers(w http.ResponseWriter, r *http.Request) {
	from, to, err := windowParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	limit, err := intParam(r, "limit", analytics.DefaultTopN)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	top, err := h.service.TopUsers(r.Context(), from, to, limit)
	if err != nil {
		h.logger.Error("top users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": top})
}

func (h *Handler) handleSegmentation(w http.ResponseWriter, r *http.Request) {
	roles, statuses, err := h.service.Segmentation(r.Context())
	if err != nil {
		h.logger.Error("segmentation", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": roles, "statuses": statuses})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.RequireAdmin(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.enqueuer.EnqueueDashboardRefresh(r.Context()); err != nil {
		h.logger.Error("enqueue dashboard refresh", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.InvalidateDashboard(r.Context()); err != nil {
		h.logger.Warn("invalidate dashboard cache", slog.Any("error", err))
	}
	entry := audit.Entry{
		UserID:       actor.ID,
		Action:       "dashboard.refresh",
		Category:     audit.CategorySystem,
		ResourceType: "materialized_view",
		ResourceID:   "dashboard_stats",
		ActorEmail:   actor.Email,
		ActorName:    actor.FullName,
		ActorRole:    string(actor.Role),
		UserAgent:    r.UserAgent(),
	}
	if err := h.recorder.Record(r.Context(), entry); err != nil {
		h.logger.Warn("audit dashboard refresh", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"status": "refresh scheduled"})
}

func windowParams(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		from, err = time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, shared.NewValidationError("from", "invalid date")
		}
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		to, err = time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, shared.NewValidationError("to", "invalid date")
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, shared.NewValidationError("from", "must not follow to")
	}
	return from, to, nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, shared.NewValidationError(name, "must be an integer")
	}
	return parsed, nil
}
