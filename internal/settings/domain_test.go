package settings

import (
	"errors"
	"testing"

	"github.com/atlasops/atlas-admin/internal/shared"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func requireValid(t *testing.T, s Setting, value string) {
	t.Helper()
	if err := s.ValidateValue(value); err != nil {
		t.Fatalf("expected %q to validate for %s, got %v", value, s.DataType, err)
	}
}

func requireInvalid(t *testing.T, s Setting, value string) {
	t.Helper()
	err := s.ValidateValue(value)
	var validationErr *shared.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected %q to fail validation for %s, got %v", value, s.DataType, err)
	}
}

func TestValidateBoolean(t *testing.T) {
	s := Setting{Key: "maintenance_mode", DataType: TypeBoolean}
	requireValid(t, s, "true")
	requireValid(t, s, "false")
	requireInvalid(t, s, "yes")
	requireInvalid(t, s, "TRUE")
	requireInvalid(t, s, "")
}

func TestValidateNumberWithRange(t *testing.T) {
	s := Setting{
		Key:             "session_timeout_minutes",
		DataType:        TypeNumber,
		ValidationRules: &ValidationRules{Min: floatPtr(5), Max: floatPtr(1440)},
	}
	requireValid(t, s, "5")
	requireValid(t, s, "60.5")
	requireValid(t, s, "1440")
	requireInvalid(t, s, "4.99")
	requireInvalid(t, s, "1441")
	requireInvalid(t, s, "sixty")
}

func TestValidateEmail(t *testing.T) {
	s := Setting{Key: "support_email", DataType: TypeEmail}
	requireValid(t, s, "ops@example.com")
	requireInvalid(t, s, "not-an-email")
}

func TestValidateURL(t *testing.T) {
	s := Setting{Key: "status_page", DataType: TypeURL}
	requireValid(t, s, "https://status.example.com/path")
	requireValid(t, s, "http://example.com")
	requireInvalid(t, s, "ftp://example.com")
	requireInvalid(t, s, "example.com")
	requireInvalid(t, s, "https://")
}

func TestValidateMaxLengthAppliesAcrossTypes(t *testing.T) {
	s := Setting{
		Key:             "site_name",
		DataType:        TypeString,
		ValidationRules: &ValidationRules{MaxLength: intPtr(5)},
	}
	requireValid(t, s, "atlas")
	requireInvalid(t, s, "atlas-admin")

	email := Setting{
		Key:             "short_email",
		DataType:        TypeEmail,
		ValidationRules: &ValidationRules{MaxLength: intPtr(10)},
	}
	requireInvalid(t, email, "very.long.address@example.com")
}

func TestValidateUnknownDataType(t *testing.T) {
	s := Setting{Key: "weird", DataType: DataType("binary")}
	requireInvalid(t, s, "anything")
}
