// Package settings manages typed system settings. Values are stored as
// strings tagged with a data type and optional validation rules; there is no
// version history.
package settings

import (
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"time"

	"github.com/atlasops/atlas-admin/internal/shared"
)

// DataType tags how a setting value is interpreted and validated.
type DataType string

const (
	TypeBoolean DataType = "boolean"
	TypeText    DataType = "text"
	TypeNumber  DataType = "number"
	TypeString  DataType = "string"
	TypeEmail   DataType = "email"
	TypeURL     DataType = "url"
)

// Valid reports whether the data type is a member of the enum.
func (t DataType) Valid() bool {
	switch t {
	case TypeBoolean, TypeText, TypeNumber, TypeString, TypeEmail, TypeURL:
		return true
	}
	return false
}

// ValidationRules constrains a setting value beyond its data type.
type ValidationRules struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
}

// Setting is one system configuration entry.
type Setting struct {
	ID              int64            `json:"id"`
	Key             string           `json:"key"`
	Value           string           `json:"value"`
	DataType        DataType         `json:"dataType"`
	Category        string           `json:"category"`
	ValidationRules *ValidationRules `json:"validationRules,omitempty"`
	IsPublic        bool             `json:"isPublic"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// ValidateValue checks a candidate value against the setting's data type and
// rules, reporting failures per field.
func (s Setting) ValidateValue(value string) error {
	switch s.DataType {
	case TypeBoolean:
		if value != "true" && value != "false" {
			return shared.NewValidationError("value", "must be true or false")
		}
	case TypeNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return shared.NewValidationError("value", "must be a number")
		}
		if r := s.ValidationRules; r != nil {
			if r.Min != nil && n < *r.Min {
				return shared.NewValidationError("value", fmt.Sprintf("must be at least %g", *r.Min))
			}
			if r.Max != nil && n > *r.Max {
				return shared.NewValidationError("value", fmt.Sprintf("must be at most %g", *r.Max))
			}
		}
	case TypeEmail:
		if _, err := mail.ParseAddress(value); err != nil {
			return shared.NewValidationError("value", "must be a valid email address")
		}
	case TypeURL:
		u, err := url.Parse(value)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return shared.NewValidationError("value", "must be an http(s) URL")
		}
	case TypeString, TypeText:
		// Length rules below are the only constraint.
	default:
		return shared.NewValidationError("dataType", fmt.Sprintf("unknown data type %q", s.DataType))
	}
	if r := s.ValidationRules; r != nil && r.MaxLength != nil && len(value) > *r.MaxLength {
		return shared.NewValidationError("value", fmt.Sprintf("must be at most %d characters", *r.MaxLength))
	}
	return nil
}
