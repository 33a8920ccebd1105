package audithttp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlasops/atlas-admin/internal/audit"
	"github.com/atlasops/atlas-admin/internal/shared"
)

type stubService struct {
	result  audit.Result
	entries []audit.Entry
	err     error
	filters audit.Filters
}

func (s *stubService) Query(ctx context.Context, filters audit.Filters, page, pageSize int) (audit.Result, error) {
	s.filters = filters
	return s.result, s.err
}

func (s *stubService) Export(ctx context.Context, filters audit.Filters) ([]audit.Entry, error) {
	s.filters = filters
	return s.entries, s.err
}

func TestParseQueryDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/audit", nil)
	filters, page, pageSize, err := parseQuery(req)
	require.NoError(t, err)
	require.Equal(t, audit.Filters{}, filters)
	require.Equal(t, 1, page)
	require.Equal(t, shared.DefaultPageSize, pageSize)
}

func TestParseQueryFullFilterSet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/audit?userId=7&category=role&action=role_change&resourceType=user&resourceId=12&ipAddress=10.0.0.1&search=alice&page=3&pageSize=50", nil)
	filters, page, pageSize, err := parseQuery(req)
	require.NoError(t, err)
	require.NotNil(t, filters.UserID)
	require.EqualValues(t, 7, *filters.UserID)
	require.Equal(t, audit.CategoryRole, filters.Category)
	require.Equal(t, "role_change", filters.Action)
	require.Equal(t, "user", filters.ResourceType)
	require.Equal(t, "12", filters.ResourceID)
	require.Equal(t, "10.0.0.1", filters.IPAddress)
	require.Equal(t, "alice", filters.Search)
	require.Equal(t, 3, page)
	require.Equal(t, 50, pageSize)
}

func TestParseQueryEndDateWidensToEndOfDay(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/audit?startDate=2025-05-01&endDate=2025-05-31", nil)
	filters, _, _, err := parseQuery(req)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), filters.StartDate)
	require.Equal(t, time.Date(2025, 5, 31, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC), filters.EndDate)
}

func TestParseQueryRejectsBadInput(t *testing.T) {
	cases := []string{
		"/audit?userId=abc",
		"/audit?category=nonsense",
		"/audit?startDate=not-a-date",
		"/audit?startDate=2025-06-01&endDate=2025-05-01",
		"/audit?page=two",
		"/audit?pageSize=many",
	}
	for _, target := range cases {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		_, _, _, err := parseQuery(req)
		var validationErr *shared.ValidationError
		require.ErrorAs(t, err, &validationErr, "target %s", target)
	}
}

func TestHandleListRespondsJSON(t *testing.T) {
	svc := &stubService{result: audit.Result{
		Entries:    []audit.Entry{{ID: 1, Action: "auth.login", Category: audit.CategoryAuth}},
		Pagination: shared.NewPagination(1, 20, 1),
	}}
	h := NewHandler(nil, svc)

	rec := httptest.NewRecorder()
	h.handleList(rec, httptest.NewRequest(http.MethodGet, "/audit", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"logs"`)
	require.Contains(t, rec.Body.String(), `"totalPages":1`)
}

func TestHandleListBadFilter(t *testing.T) {
	h := NewHandler(nil, &stubService{})
	rec := httptest.NewRecorder()
	h.handleList(rec, httptest.NewRequest(http.MethodGet, "/audit?category=bogus", nil))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleExportWritesCSV(t *testing.T) {
	svc := &stubService{entries: []audit.Entry{{ID: 1, Action: "auth.login", Category: audit.CategoryAuth}}}
	h := NewHandler(nil, svc)

	rec := httptest.NewRecorder()
	h.handleExport(rec, httptest.NewRequest(http.MethodGet, "/audit/export.csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "audit-logs.csv")
	require.Contains(t, rec.Body.String(), "auth.login")
}

func TestHandleListServiceError(t *testing.T) {
	h := NewHandler(nil, &stubService{err: errors.New("boom")})
	rec := httptest.NewRecorder()
	h.handleList(rec, httptest.NewRequest(http.MethodGet, "/audit", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
