package analytichttp

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atlasops/atlas-admin/internal/shared"
)

func TestWindowParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/analytics?from=2025-03-01&to=2025-03-31", nil)
	from, to, err := windowParams(req)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !from.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", from)
	}
	if !to.Equal(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected to %v", to)
	}
}

func TestWindowParamsOptional(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/analytics", nil)
	from, to, err := windowParams(req)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !from.IsZero() || !to.IsZero() {
		t.Fatal("missing params must stay zero for service defaults")
	}
}

func TestWindowParamsRejectsInvertedRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/analytics?from=2025-04-01&to=2025-03-01", nil)
	_, _, err := windowParams(req)
	var validationErr *shared.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWindowParamsRejectsBadDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/analytics?from=yesterday", nil)
	if _, _, err := windowParams(req); err == nil {
		t.Fatal("expected an error for a malformed date")
	}
}

func TestIntParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/analytics?limit=25", nil)
	got, err := intParam(req, "limit", 10)
	if err != nil || got != 25 {
		t.Fatalf("expected 25, got (%d, %v)", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/analytics", nil)
	got, err = intParam(req, "limit", 10)
	if err != nil || got != 10 {
		t.Fatalf("expected fallback 10, got (%d, %v)", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/analytics?limit=lots", nil)
	if _, err := intParam(req, "limit", 10); err == nil {
		t.Fatal("expected an error for a non-integer")
	}
}
