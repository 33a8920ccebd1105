package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/atlasops/atlas-admin/internal/audit"
)

func TestWriteCSV(t *testing.T) {
	entries := []audit.Entry{
		{
			ID:         1,
			UserID:     9,
			Action:     "user.create",
			Category:   audit.CategoryUser,
			ActorEmail: "root@example.com",
			ActorRole:  "admin",
			Changes:    map[string]any{"email": "new@example.com"},
			CreatedAt:  time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		},
		{
			ID:         2,
			UserID:     9,
			Action:     "auth.login",
			Category:   audit.CategoryAuth,
			ActorEmail: "root@example.com",
			ActorRole:  "admin",
			IPAddress:  "10.0.0.1",
			CreatedAt:  time.Date(2025, 6, 1, 12, 31, 0, 0, time.UTC),
		},
	}

	raw, err := WriteCSV(entries)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if len(records[0]) != 14 {
		t.Fatalf("expected 14 columns, got %d", len(records[0]))
	}
	if records[1][1] != "2025-06-01T12:30:00Z" {
		t.Fatalf("timestamps must be RFC3339, got %q", records[1][1])
	}
	if records[1][12] != `{"email":"new@example.com"}` {
		t.Fatalf("changes must be JSON encoded, got %q", records[1][12])
	}
	if records[2][10] != "10.0.0.1" {
		t.Fatalf("ip column mismatch, got %q", records[2][10])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	raw, err := WriteCSV(nil)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected header only, got %d rows", len(records))
	}
}
