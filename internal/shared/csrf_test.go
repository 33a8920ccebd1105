package shared

import (
	"context"
	"errors"
	"testing"
)

func TestCSRFEnsureAndVerify(t *testing.T) {
	m := NewCSRFManager("secret")
	sess := &Session{ID: "abc", values: map[string]string{}}

	token, err := m.EnsureToken(context.Background(), sess)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	again, err := m.EnsureToken(context.Background(), sess)
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if again != token {
		t.Fatal("expected a stable token per session")
	}

	if err := m.VerifyToken(context.Background(), sess, token); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestCSRFVerifyRejectsBadTokens(t *testing.T) {
	m := NewCSRFManager("secret")
	sess := &Session{ID: "abc", values: map[string]string{}}
	if _, err := m.EnsureToken(context.Background(), sess); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	if err := m.VerifyToken(context.Background(), sess, ""); !errors.Is(err, ErrCSRFTokenMissing) {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if err := m.VerifyToken(context.Background(), sess, "forged"); !errors.Is(err, ErrCSRFTokenMismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if err := m.VerifyToken(context.Background(), nil, "anything"); !errors.Is(err, ErrCSRFTokenMissing) {
		t.Fatalf("expected missing token error for nil session, got %v", err)
	}
}
