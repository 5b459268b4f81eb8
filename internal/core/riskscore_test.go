package core_test

import (
	"testing"

	"ledger-recon/internal/core"
)

func TestScoreRisk_Empty(t *testing.T) {
	r := core.ScoreRisk(nil, 3)
	if r.Score != 0 {
		t.Errorf("Score = %d, expected 0", r.Score)
	}
	if r.Level != core.RiskFaible {
		t.Errorf("Level = %q", r.Level)
	}
	if r.AlertCount != 0 {
		t.Errorf("AlertCount = %d", r.AlertCount)
	}
}

func TestScoreRisk_Weighting(t *testing.T) {
	critical := core.Alert{Kind: core.KindChequeIncoherent, Severity: core.SeverityCritical}
	low := core.Alert{Kind: core.KindJourNonOuvrable, Severity: core.SeverityLow}

	one := core.ScoreRisk([]core.Alert{low}, 1)
	heavy := core.ScoreRisk([]core.Alert{critical}, 1)
	if heavy.Score <= one.Score {
		t.Errorf("critical alert (%d) should outweigh a low one (%d)", heavy.Score, one.Score)
	}

	// 15 * 7 = 105 weighted, ln(106) * 30 ≈ 139, capped.
	if heavy.Score != 100 {
		t.Errorf("Score = %d, expected the 100 cap", heavy.Score)
	}
	if heavy.Level != core.RiskCritique {
		t.Errorf("Level = %q", heavy.Level)
	}
}

func TestScoreRisk_DocumentNormalization(t *testing.T) {
	alerts := []core.Alert{
		{Kind: core.KindEcartMontant, Severity: core.SeverityMedium},
		{Kind: core.KindEcartMontant, Severity: core.SeverityMedium},
	}
	few := core.ScoreRisk(alerts, 1)
	many := core.ScoreRisk(alerts, 10)
	if many.Score >= few.Score {
		t.Errorf("same alerts over more documents should score lower: %d vs %d", many.Score, few.Score)
	}
	if got := few.ByKind[core.KindEcartMontant]; got != 2 {
		t.Errorf("ByKind = %d", got)
	}
}

func TestScoreRisk_ZeroDocuments(t *testing.T) {
	alerts := []core.Alert{{Kind: core.KindEcartMontant, Severity: core.SeverityLow}}
	if r := core.ScoreRisk(alerts, 0); r.Score < 0 || r.Score > 100 {
		t.Errorf("Score = %d, expected the 0-100 range", r.Score)
	}
}

func TestScoreRisk_Bands(t *testing.T) {
	// severity low (2) * jour weight (2) = 4 weighted, ln(5) * 30 ≈ 48.
	mid := core.ScoreRisk([]core.Alert{{Kind: core.KindJourNonOuvrable, Severity: core.SeverityLow}}, 1)
	if mid.Level != core.RiskEleve {
		t.Errorf("Level = %q for score %d", mid.Level, mid.Score)
	}
}
