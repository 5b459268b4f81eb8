package core_test

import (
	"testing"

	"ledger-recon/internal/core"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"French slashes", "15/01/2025", "2025-01-15"},
		{"ISO passthrough", "2025-01-15", "2025-01-15"},
		{"French dashes", "15-01-2025", "2025-01-15"},
		{"Two digit year", "15/01/25", "2025-01-15"},
		{"ISO slashes", "2025/01/15", "2025-01-15"},
		{"French dots", "15.01.2025", "2025-01-15"},
		{"Spaces", "15 01 2025", "2025-01-15"},
		{"Surrounding whitespace", "  15/01/2025  ", "2025-01-15"},
		{"Empty", "", ""},
		{"Garbage", "janvier 2025", ""},
		{"Out of range day", "32/01/2025", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.NormalizeDate(tt.input); got != tt.expected {
				t.Errorf("NormalizeDate(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWireDate(t *testing.T) {
	if got := core.WireDate("2025-01-15"); got != "15/01/2025" {
		t.Errorf("WireDate ISO = %q, expected 15/01/2025", got)
	}
	// Unparsable input passes through for display.
	if got := core.WireDate("not-a-date"); got != "not-a-date" {
		t.Errorf("WireDate passthrough = %q", got)
	}
	if got := core.WireDate(""); got != "" {
		t.Errorf("WireDate empty = %q", got)
	}
}

func TestParseISODate(t *testing.T) {
	if _, ok := core.ParseISODate("2025-01-18"); !ok {
		t.Error("expected 2025-01-18 to parse")
	}
	if _, ok := core.ParseISODate("18/01/2025"); ok {
		t.Error("expected non-ISO layout to be rejected")
	}
}
