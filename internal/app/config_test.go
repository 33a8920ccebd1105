package app

import (
	"reflect"
	"testing"
)

func TestProtectedPrefixList(t *testing.T) {
	cfg := &Config{ProtectedPrefixes: "/users, /roles ,,/audit"}
	got := cfg.ProtectedPrefixList()
	want := []string{"/users", "/roles", "/audit"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestProtectedPrefixListNil(t *testing.T) {
	var cfg *Config
	if got := cfg.ProtectedPrefixList(); got != nil {
		t.Fatalf("expected nil for nil config, got %v", got)
	}
}
