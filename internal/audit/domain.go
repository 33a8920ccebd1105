// Package audit stores and queries the append-only audit log. Entries are
// written by privileged mutations and never updated or deleted.
package audit

import (
	"time"

	"github.com/atlasops/atlas-admin/internal/shared"
)

// Category groups audit actions for filtering and badge colouring.
type Category string

const (
	CategoryAuth     Category = "auth"
	CategoryUser     Category = "user"
	CategoryRole     Category = "role"
	CategorySystem   Category = "system"
	CategoryContent  Category = "content"
	CategorySettings Category = "settings"
)

// Valid reports whether the category is a member of the enum.
func (c Category) Valid() bool {
	switch c {
	case CategoryAuth, CategoryUser, CategoryRole, CategorySystem, CategoryContent, CategorySettings:
		return true
	}
	return false
}

// Entry is one audit log record. Actor identity fields are snapshotted at
// write time; the query layer additionally exposes the actor's current
// values so reviewers can see drift since the action occurred.
type Entry struct {
	ID           int64          `json:"id"`
	UserID       int64          `json:"userId"`
	Action       string         `json:"action"`
	Category     Category       `json:"actionCategory"`
	ResourceType string         `json:"resourceType,omitempty"`
	ResourceID   string         `json:"resourceId,omitempty"`
	Changes      map[string]any `json:"changes,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	IPAddress    string         `json:"ipAddress,omitempty"`
	UserAgent    string         `json:"userAgent,omitempty"`

	ActorEmail string `json:"actorEmail"`
	ActorName  string `json:"actorName,omitempty"`
	ActorRole  string `json:"actorRole"`

	CurrentEmail string `json:"currentEmail,omitempty"`
	CurrentName  string `json:"currentName,omitempty"`
	CurrentRole  string `json:"currentRole,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Filters narrows an audit query. Exact-match fields are ANDed; Search is
// additionally ORed across action and metadata text.
type Filters struct {
	UserID       *int64
	Category     Category
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	StartDate    time.Time
	EndDate      time.Time
	Search       string
}

// Result is one page of audit entries with pagination metadata.
type Result struct {
	Entries    []Entry           `json:"logs"`
	Pagination shared.Pagination `json:"pagination"`
}

// ExportCap bounds the non-paginated export variant.
const ExportCap = 10000
