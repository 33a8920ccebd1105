package audit

import (
	"strings"
	"testing"
	"time"
)

func TestBuildWhereEmpty(t *testing.T) {
	where, args := buildWhere(Filters{})
	if where != "" || args != nil {
		t.Fatalf("expected empty predicate, got %q with %d args", where, len(args))
	}
}

func TestBuildWhereNumbersPlaceholdersSequentially(t *testing.T) {
	userID := int64(7)
	where, args := buildWhere(Filters{
		UserID:    &userID,
		Category:  CategoryUser,
		Action:    "user.create",
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Search:    "alice",
	})
	want := " WHERE a.user_id = $1 AND a.action_category = $2 AND a.action ILIKE $3 AND a.created_at >= $4 AND (a.action ILIKE $5 OR a.metadata::text ILIKE $5)"
	if where != want {
		t.Fatalf("predicate mismatch:\n got %q\nwant %q", where, want)
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d", len(args))
	}
	if args[2] != "%user.create%" {
		t.Fatalf("action should be wrapped for substring match, got %v", args[2])
	}
}

func TestBuildWhereEscapesLikeWildcards(t *testing.T) {
	where, args := buildWhere(Filters{Action: "100%_done"})
	if !strings.Contains(where, "ILIKE") {
		t.Fatalf("expected ILIKE predicate, got %q", where)
	}
	if args[0] != `%100\%\_done%` {
		t.Fatalf("wildcards must be escaped, got %v", args[0])
	}
}

func TestBuildWhereExactMatches(t *testing.T) {
	where, args := buildWhere(Filters{
		ResourceType: "user",
		ResourceID:   "12",
		IPAddress:    "10.0.0.1",
	})
	want := " WHERE a.resource_type = $1 AND a.resource_id = $2 AND a.ip_address = $3"
	if where != want {
		t.Fatalf("predicate mismatch:\n got %q\nwant %q", where, want)
	}
	if args[0] != "user" || args[1] != "12" || args[2] != "10.0.0.1" {
		t.Fatalf("unexpected args %v", args)
	}
}
