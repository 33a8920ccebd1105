// Package export encodes audit entries for download.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"time"

	"github.com/atlasops/atlas-admin/internal/audit"
)

var header = []string{
	"id", "created_at", "user_id", "actor_email", "actor_name", "actor_role",
	"action", "action_category", "resource_type", "resource_id",
	"ip_address", "user_agent", "changes", "metadata",
}

// WriteCSV renders entries as a CSV document with a header row.
func WriteCSV(entries []audit.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, e := range entries {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.UTC().Format(time.RFC3339),
			strconv.FormatInt(e.UserID, 10),
			e.ActorEmail,
			e.ActorName,
			e.ActorRole,
			e.Action,
			string(e.Category),
			e.ResourceType,
			e.ResourceID,
			e.IPAddress,
			e.UserAgent,
			jsonField(e.Changes),
			jsonField(e.Metadata),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func jsonField(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(raw)
}
