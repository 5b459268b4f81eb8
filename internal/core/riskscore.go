package core

import "math"

// Risk bands, from lowest to highest.
const (
	RiskFaible   = "FAIBLE"
	RiskMoyen    = "MOYEN"
	RiskEleve    = "ÉLEVÉ"
	RiskCritique = "CRITIQUE"
)

var severityWeights = map[Severity]float64{
	SeverityCritical: 15,
	SeverityHigh:     10,
	SeverityMedium:   5,
	SeverityLow:      2,
}

var kindWeights = map[AlertKind]float64{
	KindDoublonGrandLivre:     8,
	KindChequeIncoherent:      7,
	KindEcartMontant:          6,
	KindFactureNonRapprochee:  5,
	KindChequeEmisNonEncaisse: 4,
	KindChequeEncaisseNonEmis: 4,
	KindChequeNonComptabilise: 3,
	KindNumeroManquant:        3,
	KindJourNonOuvrable:       2,
}

// RiskAssessment is the weighted risk of an alert set on a 0-100 scale.
type RiskAssessment struct {
	Score      int            `json:"score"`
	Level      string         `json:"level"`
	AlertCount int            `json:"alert_count"`
	ByKind     map[AlertKind]int `json:"by_kind"`
}

// ScoreRisk weighs every alert by severity and kind, normalizes by the
// number of documents examined, and compresses the sum onto 0-100 with a
// logarithm so a handful of critical alerts dominates a pile of minor ones.
func ScoreRisk(alerts []Alert, documentCount int) RiskAssessment {
	assessment := RiskAssessment{
		AlertCount: len(alerts),
		ByKind:     make(map[AlertKind]int),
	}

	var sum float64
	for _, a := range alerts {
		sw, ok := severityWeights[a.Severity]
		if !ok {
			sw = severityWeights[SeverityLow]
		}
		kw, ok := kindWeights[a.Kind]
		if !ok {
			kw = 1
		}
		sum += sw * kw
		assessment.ByKind[a.Kind]++
	}

	if documentCount < 1 {
		documentCount = 1
	}
	normalized := sum / float64(documentCount)
	score := int(30 * math.Log(normalized+1))
	if score > 100 {
		score = 100
	}
	assessment.Score = score
	assessment.Level = riskLevel(score)
	return assessment
}

func riskLevel(score int) string {
	switch {
	case score < 20:
		return RiskFaible
	case score < 40:
		return RiskMoyen
	case score < 70:
		return RiskEleve
	default:
		return RiskCritique
	}
}
