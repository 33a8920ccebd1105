package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestGate() Gate {
	return Gate{
		Guard:             newTestGuard(),
		ProtectedPrefixes: []string{"/users", "/audit"},
		LoginPath:         "/auth/login",
		UnauthorizedPath:  "/unauthorized",
	}
}

func gateRequest(t *testing.T, gate Gate, path, userID string) *httptest.ResponseRecorder {
	t.Helper()
	handler := gate.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		req = req.WithContext(ctxWithUser(userID))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGateIgnoresUnprotectedPaths(t *testing.T) {
	rec := gateRequest(t, newTestGate(), "/healthz", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unprotected path should pass, got %d", rec.Code)
	}
}

func TestGateRedirectsAnonymousToLogin(t *testing.T) {
	rec := gateRequest(t, newTestGate(), "/users?page=2", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if loc != "/auth/login?redirectTo=%2Fusers%3Fpage%3D2" {
		t.Fatalf("unexpected redirect target %q", loc)
	}
}

func TestGateRedirectsPlainUserToUnauthorized(t *testing.T) {
	rec := gateRequest(t, newTestGate(), "/audit", "3")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/unauthorized" {
		t.Fatalf("unexpected redirect target %q", loc)
	}
}

func TestGatePassesModerator(t *testing.T) {
	rec := gateRequest(t, newTestGate(), "/users", "2")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("moderator should pass, got %d", rec.Code)
	}
}

func TestGateUnknownUserGoesUnauthorized(t *testing.T) {
	rec := gateRequest(t, newTestGate(), "/users", "999")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/unauthorized" {
		t.Fatalf("unexpected redirect target %q", loc)
	}
}

func TestRequirePermissionMiddleware(t *testing.T) {
	mw := Middleware{Guard: newTestGuard()}
	handler := mw.RequirePermission(PermViewAuditLogs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/audit", nil).WithContext(ctxWithUser("1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin should pass, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/audit", nil).WithContext(ctxWithUser("2"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("moderator lacks audit access, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/audit", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous should get 401, got %d", rec.Code)
	}
}
