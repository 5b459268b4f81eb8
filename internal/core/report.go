package core

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ValidationReport summarizes the lifecycle state of an alert set.
type ValidationReport struct {
	Total           int                 `json:"total"`
	ByStatus        map[AlertStatus]int `json:"by_status"`
	BySeverity      map[Severity]int    `json:"by_severity"`
	Risk            RiskAssessment      `json:"risk"`
	Recommendations []string            `json:"recommendations"`
}

// BuildValidationReport counts alerts by status and severity and derives
// the recommendation list from the kinds of the active alerts.
func BuildValidationReport(alerts []Alert, documentCount int) ValidationReport {
	report := ValidationReport{
		Total:      len(alerts),
		ByStatus:   make(map[AlertStatus]int),
		BySeverity: make(map[Severity]int),
		Risk:       ScoreRisk(alerts, documentCount),
	}
	for _, a := range alerts {
		report.ByStatus[a.Status]++
		report.BySeverity[a.Severity]++
	}
	report.Recommendations = recommendations(alerts)
	return report
}

// recommendationByKind holds one actionable sentence per alert kind; the
// report includes a recommendation once per kind among the active alerts.
var recommendationByKind = map[AlertKind]string{
	KindFactureNonRapprochee:  "Rapprocher les factures en attente avec les encaissements bancaires.",
	KindChequeNonComptabilise: "Comptabiliser les chèques présents sur le relevé bancaire.",
	KindChequeEmisNonEncaisse: "Relancer les bénéficiaires des chèques émis non encaissés ou annuler les chèques périmés.",
	KindChequeEncaisseNonEmis: "Régulariser les écritures d'émission des chèques déjà encaissés.",
	KindChequeIncoherent:      "Vérifier les montants des chèques incohérents entre grand livre et relevé.",
	KindEcartMontant:          "Analyser les écarts de montant et passer les écritures de régularisation.",
	KindNumeroManquant:        "Compléter les numéros de référence manquants sur les documents sources.",
	KindJourNonOuvrable:       "Justifier les écritures datées de jours non ouvrables.",
	KindDoublonGrandLivre:     "Extourner les écritures en double du grand livre.",
}

func recommendations(alerts []Alert) []string {
	present := make(map[AlertKind]bool)
	for _, a := range alerts {
		if a.Status == StatusActive {
			present[a.Kind] = true
		}
	}

	kinds := make([]AlertKind, 0, len(present))
	for kind := range present {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	recs := make([]string, 0, len(kinds)+1)
	for _, kind := range kinds {
		if rec, ok := recommendationByKind[kind]; ok {
			recs = append(recs, rec)
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "Aucune anomalie active: aucune action requise.")
	}
	return recs
}

// AccountSummary is one per-account line of a dashboard section. The
// counterparty name is extracted from the account's most frequent label.
type AccountSummary struct {
	Account string          `json:"account"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	Entries int             `json:"entries"`
}

type TreasurySummary struct {
	Balance  decimal.Decimal  `json:"balance"`
	Accounts []AccountSummary `json:"accounts"`
}

type ReceivablesSummary struct {
	Total    decimal.Decimal  `json:"total"`
	Accounts []AccountSummary `json:"accounts"`
}

type PayablesSummary struct {
	Total    decimal.Decimal  `json:"total"`
	Accounts []AccountSummary `json:"accounts"`
}

type VATSummary struct {
	Collected  decimal.Decimal `json:"collected"`
	Deductible decimal.Decimal `json:"deductible"`
	ToDeclare  decimal.Decimal `json:"to_declare"`
}

// Dashboard aggregates the treasury, client, supplier, and VAT positions
// of one ledger snapshot.
type Dashboard struct {
	Tresorerie   TreasurySummary    `json:"tresorerie"`
	Clients      ReceivablesSummary `json:"clients"`
	Fournisseurs PayablesSummary    `json:"fournisseurs"`
	TVA          VATSummary         `json:"tva"`
}

// BuildDashboard derives the dashboard from a snapshot. Client receivables
// keep their sign convention (debit balance = amount owed by the client);
// supplier debts are presented as a positive amount to pay.
func BuildDashboard(s Snapshot) Dashboard {
	collected := s.BalancesByType[TypeTVACollectee].Balance.Neg()
	deductible := s.BalancesByType[TypeTVADeductible].Balance

	return Dashboard{
		Tresorerie: TreasurySummary{
			Balance:  s.BalancesByType[TypeBanque].Balance,
			Accounts: accountSummaries(s, TypeBanque),
		},
		Clients: ReceivablesSummary{
			Total:    s.BalancesByType[TypeClients].Balance,
			Accounts: accountSummaries(s, TypeClients),
		},
		Fournisseurs: PayablesSummary{
			Total:    s.BalancesByType[TypeFournisseurs].Balance.Neg(),
			Accounts: accountSummaries(s, TypeFournisseurs),
		},
		TVA: VATSummary{
			Collected:  collected,
			Deductible: deductible,
			ToDeclare:  collected.Sub(deductible),
		},
	}
}

func accountSummaries(s Snapshot, accountType AccountType) []AccountSummary {
	seen := make(map[string]bool)
	summaries := []AccountSummary{}
	for _, e := range s.AccountsByType[accountType] {
		if seen[e.Account] {
			continue
		}
		seen[e.Account] = true

		detail := s.AccountDetails[e.Account]
		summaries = append(summaries, AccountSummary{
			Account: e.Account,
			Name:    ExtractCounterpartyName(detail.PrincipalLabel),
			Balance: detail.Balance,
			Entries: detail.EntryCount,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Account < summaries[j].Account })
	return summaries
}

// FormatAmount renders a decimal for dashboard display with two decimals
// and a euro suffix.
func FormatAmount(d decimal.Decimal) string {
	return fmt.Sprintf("%s €", d.StringFixed(2))
}
