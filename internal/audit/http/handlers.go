// Package audithttp exposes the audit log query and export endpoints.
package audithttp

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atlasops/atlas-admin/internal/audit"
	"github.com/atlasops/atlas-admin/internal/audit/export"
	"github.com/atlasops/atlas-admin/internal/platform/httpx"
	"github.com/atlasops/atlas-admin/internal/shared"
)

// QueryService defines the business contract for audit data.
type QueryService interface {
	Query(ctx context.Context, filters audit.Filters, page, pageSize int) (audit.Result, error)
	Export(ctx context.Context, filters audit.Filters) ([]audit.Entry, error)
}

// Handler serves audit log requests.
type Handler struct {
	logger  *slog.Logger
	service QueryService
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service QueryService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filters, page, pageSize, err := parseQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Query(r.Context(), filters, page, pageSize)
	if err != nil {
		h.logger.Error("audit query", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filters, _, _, err := parseQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	csvBytes, err := export.WriteCSV(entries)
	if err != nil {
		h.logger.Error("audit encode csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-logs.csv"`)
	if _, err := w.Write(csvBytes); err != nil {
		h.logger.Warn("audit write csv", slog.Any("error", err))
	}
}

func parseQuery(r *http.Request) (audit.Filters, int, int, error) {
	q := r.URL.Query()
	filters := audit.Filters{
		Action:       strings.TrimSpace(q.Get("action")),
		ResourceType: strings.TrimSpace(q.Get("resourceType")),
		ResourceID:   strings.TrimSpace(q.Get("resourceId")),
		IPAddress:    strings.TrimSpace(q.Get("ipAddress")),
		Search:       strings.TrimSpace(q.Get("search")),
	}

	if v := strings.TrimSpace(q.Get("userId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return audit.Filters{}, 0, 0, shared.NewValidationError("userId", "must be an integer")
		}
		filters.UserID = &id
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		category := audit.Category(v)
		if !category.Valid() {
			return audit.Filters{}, 0, 0, shared.NewValidationError("category", "unknown category")
		}
		filters.Category = category
	}
	if v := strings.TrimSpace(q.Get("startDate")); v != "" {
		t, err := parseDate(v, false)
		if err != nil {
			return audit.Filters{}, 0, 0, shared.NewValidationError("startDate", "invalid date")
		}
		filters.StartDate = t
	}
	if v := strings.TrimSpace(q.Get("endDate")); v != "" {
		t, err := parseDate(v, true)
		if err != nil {
			return audit.Filters{}, 0, 0, shared.NewValidationError("endDate", "invalid date")
		}
		filters.EndDate = t
	}
	if !filters.StartDate.IsZero() && !filters.EndDate.IsZero() && filters.StartDate.After(filters.EndDate) {
		return audit.Filters{}, 0, 0, shared.NewValidationError("endDate", "must not precede startDate")
	}

	page := 1
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return audit.Filters{}, 0, 0, shared.NewValidationError("page", "must be an integer")
		}
		page = parsed
	}
	pageSize := shared.DefaultPageSize
	if v := strings.TrimSpace(q.Get("pageSize")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return audit.Filters{}, 0, 0, shared.NewValidationError("pageSize", "must be an integer")
		}
		pageSize = parsed
	}

	return filters, page, pageSize, nil
}

// parseDate accepts RFC3339 timestamps or plain dates. A plain end date is
// widened to the last instant of that day so the range stays inclusive.
func parseDate(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t.UTC(), nil
}
