package core_test

import (
	"testing"

	"ledger-recon/internal/core"
)

func TestNormalizeEntry_Aliases(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{
			name: "French accented keys",
			raw: map[string]any{
				"n° compte": "512100",
				"libellé":   "Encaissement CHQ001234 - Martin SARL",
				"date":      "15/01/2025",
				"débit":     0.0,
				"crédit":    "1200,00",
			},
		},
		{
			name: "ASCII keys",
			raw: map[string]any{
				"compte":      "512100",
				"description": "Encaissement CHQ001234 - Martin SARL",
				"Date":        "2025-01-15",
				"debit":       "0",
				"credit":      1200.0,
			},
		},
		{
			name: "Capitalized keys",
			raw: map[string]any{
				"N° Compte": "512100",
				"Libellé":   "Encaissement CHQ001234 - Martin SARL",
				"DATE":      "15.01.2025",
				"DÉBIT":     "",
				"CRÉDIT":    "1 200,00",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := core.NormalizeEntry(tt.raw)
			if e == nil {
				t.Fatal("expected an entry, got nil")
			}
			if e.Account != "512100" {
				t.Errorf("Account = %q", e.Account)
			}
			if e.Label != "Encaissement CHQ001234 - Martin SARL" {
				t.Errorf("Label = %q", e.Label)
			}
			if e.Date != "2025-01-15" {
				t.Errorf("Date = %q", e.Date)
			}
			if !e.Credit.Equal(core.ParseAmount("1200")) {
				t.Errorf("Credit = %s", e.Credit)
			}
			if e.Net.String() != "-1200" {
				t.Errorf("Net = %s, expected -1200", e.Net)
			}
			if e.Type != core.TypeBanque {
				t.Errorf("Type = %s", e.Type)
			}
		})
	}
}

func TestNormalizeEntry_NoAccount(t *testing.T) {
	if e := core.NormalizeEntry(map[string]any{"libellé": "orphan line"}); e != nil {
		t.Errorf("expected nil for a record without account, got %+v", e)
	}
}

func TestNormalizeEntry_NegativeAmountsBecomeAbsolute(t *testing.T) {
	e := core.NormalizeEntry(map[string]any{
		"n° compte": "606400",
		"débit":     "-450.00",
		"crédit":    0.0,
	})
	if e == nil {
		t.Fatal("expected an entry")
	}
	if e.Debit.String() != "450" {
		t.Errorf("Debit = %s, expected 450", e.Debit)
	}
	if e.Net.String() != "450" {
		t.Errorf("Net = %s, expected 450", e.Net)
	}
}

func TestNormalizeOperation(t *testing.T) {
	op := core.NormalizeOperation(map[string]any{
		"date":    "25/01/2025",
		"nature":  "  CHQ009999 LOYER JANVIER ",
		"montant": "-850,00",
		"type":    "debit",
	})
	if op.Date != "2025-01-25" {
		t.Errorf("Date = %q", op.Date)
	}
	if op.Nature != "CHQ009999 LOYER JANVIER" {
		t.Errorf("Nature = %q", op.Nature)
	}
	if op.Montant.String() != "-850" {
		t.Errorf("Montant = %s, expected -850 (sign kept)", op.Montant)
	}
	if op.Type != "debit" {
		t.Errorf("Type = %q", op.Type)
	}
}

func TestParseGrandLivre(t *testing.T) {
	content := map[string]any{
		"ecritures_comptables": []any{
			map[string]any{"n° compte": "512100", "débit": 100.0, "crédit": 0.0},
			"not a record",
			map[string]any{"libellé": "no account, dropped"},
			map[string]any{"n° compte": "411000", "débit": 0.0, "crédit": 100.0},
		},
	}
	entries, err := core.ParseGrandLivre(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if _, err := core.ParseGrandLivre(map[string]any{}); err == nil {
		t.Error("expected an error for a document without ecritures_comptables")
	}
	if _, err := core.ParseGrandLivre(map[string]any{"ecritures_comptables": "wrong shape"}); err == nil {
		t.Error("expected an error for a malformed ecritures_comptables value")
	}
}

func TestParseReleve(t *testing.T) {
	content := map[string]any{
		"operations": []any{
			map[string]any{"date": "15/01/2025", "nature": "REMISE CHQ001234", "montant": 1200.0},
			42,
		},
	}
	ops, err := core.ParseReleve(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}

	if _, err := core.ParseReleve(map[string]any{}); err == nil {
		t.Error("expected an error for a document without operations")
	}
}
