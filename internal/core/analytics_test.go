package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"ledger-recon/internal/core"
)

func mkEntry(account, label, date string, debit, credit float64) core.Entry {
	d := decimal.NewFromFloat(debit)
	c := decimal.NewFromFloat(credit)
	return core.Entry{
		Account: account,
		Label:   label,
		Date:    date,
		Debit:   d,
		Credit:  c,
		Net:     d.Sub(c),
		Type:    core.ClassifyAccount(account),
	}
}

func TestAnalyzeEntries_Totals(t *testing.T) {
	entries := []core.Entry{
		mkEntry("512100", "Encaissement CHQ001234 - Martin SARL", "2025-01-15", 0, 1200),
		mkEntry("411000", "Règlement CHQ001234 - Martin SARL", "2025-01-15", 1200, 0),
		mkEntry("606400", "Fournitures de bureau", "2025-02-03", 450, 0),
	}
	s := core.AnalyzeEntries(entries)

	if s.EntryCount != 3 {
		t.Errorf("EntryCount = %d", s.EntryCount)
	}
	if s.TotalDebit.String() != "1650" {
		t.Errorf("TotalDebit = %s", s.TotalDebit)
	}
	if s.TotalCredit.String() != "1200" {
		t.Errorf("TotalCredit = %s", s.TotalCredit)
	}
	if s.Balance.String() != "450" {
		t.Errorf("Balance = %s", s.Balance)
	}
	if tb := s.BalancesByType[core.TypeBanque]; tb.Balance.String() != "-1200" || tb.EntryCount != 1 {
		t.Errorf("bank balance = %+v", tb)
	}
	if s.DateAnalysis.PeriodStart != "2025-01-15" || s.DateAnalysis.PeriodEnd != "2025-02-03" {
		t.Errorf("period = %s → %s", s.DateAnalysis.PeriodStart, s.DateAnalysis.PeriodEnd)
	}
	if s.DateAnalysis.MonthlyDistribution["2025-01"] != 2 {
		t.Errorf("monthly distribution = %v", s.DateAnalysis.MonthlyDistribution)
	}
	if d, ok := s.AccountDetails["411000"]; !ok || d.PrincipalLabel != "Règlement CHQ001234 - Martin SARL" {
		t.Errorf("account detail 411000 = %+v", d)
	}
}

func TestAnalyzeEntries_Empty(t *testing.T) {
	s := core.AnalyzeEntries(nil)
	if s.EntryCount != 0 || !s.Balance.IsZero() {
		t.Errorf("unexpected snapshot for empty input: %+v", s)
	}
	if s.Anomalies == nil || s.Ratios == nil || s.AccountDetails == nil {
		t.Error("expected initialized empty collections")
	}
}

// Three identical lines share one signature, so the second and third each
// raise a duplicate anomaly.
func TestAnalyzeEntries_Duplicates(t *testing.T) {
	e := mkEntry("606400", "Fournitures de bureau", "2025-01-19", 450, 0)
	s := core.AnalyzeEntries([]core.Entry{e, e, e})

	doublons := 0
	for _, a := range s.Anomalies {
		if a.Kind == "doublon" {
			doublons++
		}
	}
	if doublons != 2 {
		t.Errorf("expected 2 duplicate anomalies, got %d (all: %+v)", doublons, s.Anomalies)
	}
}

func TestAnalyzeEntries_OutlierAndUnusualAccount(t *testing.T) {
	entries := []core.Entry{
		mkEntry("606400", "a", "2025-01-01", 100, 0),
		mkEntry("606400", "b", "2025-01-02", 110, 0),
		mkEntry("606400", "c", "2025-01-03", 120, 0),
		mkEntry("606400", "d", "2025-01-04", 130, 0),
		mkEntry("606400", "e", "2025-01-05", 90000, 0),
		mkEntry("999999", "hors plan", "2025-01-06", 50, 0),
	}
	s := core.AnalyzeEntries(entries)

	var kinds []string
	for _, a := range s.Anomalies {
		kinds = append(kinds, a.Kind)
	}
	hasOutlier, hasUnusual := false, false
	for _, k := range kinds {
		if k == "montant_eleve" {
			hasOutlier = true
		}
		if k == "compte_inhabituel" {
			hasUnusual = true
		}
	}
	if !hasOutlier {
		t.Errorf("expected a montant_eleve anomaly, kinds = %v", kinds)
	}
	if !hasUnusual {
		t.Errorf("expected a compte_inhabituel anomaly, kinds = %v", kinds)
	}
}

func TestAnalyzeGrandLivre_ShapeError(t *testing.T) {
	s := core.AnalyzeGrandLivre(map[string]any{"wrong": true}, "bad.json")
	if s.Error == "" {
		t.Error("expected a shape error in the snapshot")
	}
	if s.EntryCount != 0 {
		t.Errorf("EntryCount = %d, expected 0", s.EntryCount)
	}
}

func TestAnalyzeGrandLivre_SetsProvenance(t *testing.T) {
	content := map[string]any{
		"ecritures_comptables": []any{
			map[string]any{"n° compte": "512100", "débit": 0.0, "crédit": 100.0},
		},
	}
	s := core.AnalyzeGrandLivre(content, "grand_livre_demo.json")
	if s.Error != "" {
		t.Fatalf("unexpected error: %s", s.Error)
	}
	if s.SourceFile != "grand_livre_demo.json" {
		t.Errorf("SourceFile = %q", s.SourceFile)
	}
	if s.ProcessedAt == "" {
		t.Error("expected ProcessedAt to be set")
	}
}
