package core_test

import (
	"testing"

	"ledger-recon/internal/core"
)

func validDraft() core.CorrectionDraft {
	return core.CorrectionDraft{
		Ref: "chq001234",
		Entries: []core.DraftEntry{
			{Account: "512200", Label: "Encaissement CHQ001234 - Martin SARL", Date: "15/01/2025", Debit: "1200.00", Credit: "0"},
			{Account: "411000", Label: "Règlement CHQ001234 - Martin SARL", Date: "15/01/2025", Debit: "0", Credit: "1200.00"},
		},
		Reasoning:  "Enregistrement de l'encaissement manquant.",
		Confidence: 0.9,
	}
}

func TestCorrectionDraft_NormalizeThenValidate(t *testing.T) {
	d := validDraft()
	d.Normalize()

	if d.Ref != "CHQ001234" {
		t.Errorf("Ref = %q, expected uppercase", d.Ref)
	}
	if d.Entries[0].Date != "2025-01-15" {
		t.Errorf("Date = %q, expected ISO", d.Entries[0].Date)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestCorrectionDraft_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*core.CorrectionDraft)
	}{
		{"No reference", func(d *core.CorrectionDraft) { d.Ref = "" }},
		{"No entries", func(d *core.CorrectionDraft) { d.Entries = nil }},
		{"Missing account", func(d *core.CorrectionDraft) { d.Entries[0].Account = "" }},
		{"Negative amount", func(d *core.CorrectionDraft) { d.Entries[0].Debit = "-1200.00" }},
		{"Neither side", func(d *core.CorrectionDraft) { d.Entries[0].Debit = "0"; d.Entries[0].Credit = "0" }},
		{"Both sides", func(d *core.CorrectionDraft) { d.Entries[0].Credit = "1200.00" }},
		{"Unbalanced", func(d *core.CorrectionDraft) { d.Entries[1].Credit = "1100.00" }},
		{"Reference absent from labels", func(d *core.CorrectionDraft) {
			d.Entries[0].Label = "Encaissement"
			d.Entries[1].Label = "Règlement"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			d.Normalize()
			tt.mutate(&d)
			if err := d.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestCorrectionDraft_WireEntries(t *testing.T) {
	d := validDraft()
	d.Normalize()

	wire := d.WireEntries()
	if len(wire) != 2 {
		t.Fatalf("expected 2 wire records, got %d", len(wire))
	}
	first := wire[0]
	if first["n° compte"] != "512200" {
		t.Errorf("account = %v", first["n° compte"])
	}
	if first["date"] != "15/01/2025" {
		t.Errorf("date = %v, expected DD/MM/YYYY", first["date"])
	}
	if first["débit"] != 1200.0 {
		t.Errorf("débit = %v", first["débit"])
	}
	if first["crédit"] != 0.0 {
		t.Errorf("crédit = %v", first["crédit"])
	}
}
