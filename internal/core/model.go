package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType is the semantic class assigned to a ledger account by its number prefix.
type AccountType string

const (
	TypeBanque          AccountType = "banque"
	TypeClients         AccountType = "clients"
	TypeFournisseurs    AccountType = "fournisseurs"
	TypeTVADeductible   AccountType = "tva_deductible"
	TypeTVACollectee    AccountType = "tva_collectee"
	TypeVentes          AccountType = "ventes"
	TypeAchats          AccountType = "achats"
	TypeCharges         AccountType = "charges"
	TypeImmobilisations AccountType = "immobilisations"
	TypeStocks          AccountType = "stocks"
	TypeCapitaux        AccountType = "capitaux"
	TypeAutres          AccountType = "autres"
)

// Entry is one canonical general-ledger line. Dates are ISO YYYY-MM-DD
// internally and empty when the source value could not be parsed.
// Net is always Debit minus Credit.
type Entry struct {
	Account string          `json:"account"`
	Label   string          `json:"label"`
	Date    string          `json:"date"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Net     decimal.Decimal `json:"net"`
	Type    AccountType     `json:"type"`
}

// Operation is one canonical bank-statement line. Montant keeps its sign.
type Operation struct {
	Date    string          `json:"date"`
	Nature  string          `json:"nature"`
	Montant decimal.Decimal `json:"montant"`
	Type    string          `json:"type"`
}

type DocumentKind string

const (
	KindGrandLivre DocumentKind = "grandlivre"
	KindReleve     DocumentKind = "releve"
	KindFacture    DocumentKind = "facture"
	KindCheque     DocumentKind = "cheque"
)

// Document is a stored JSON document. Content holds the parsed tree as-is;
// unknown keys pass through every read-modify-write cycle untouched.
type Document struct {
	ID         uuid.UUID      `json:"id"`
	Kind       DocumentKind   `json:"kind"`
	Name       string         `json:"name"`
	Content    map[string]any `json:"content"`
	UploadedAt time.Time      `json:"uploaded_at"`
}

type AlertKind string

const (
	KindFactureNonRapprochee  AlertKind = "FACTURE_NON_RAPPROCHEE_GL"
	KindChequeNonComptabilise AlertKind = "CHEQUE_NON_COMPTABILISE_GL"
	KindChequeEmisNonEncaisse AlertKind = "CHEQUE_EMIS_NON_ENCAISSE_GL"
	KindChequeEncaisseNonEmis AlertKind = "CHEQUE_ENCAISSE_NON_EMIS_GL"
	KindChequeIncoherent      AlertKind = "CHEQUE_INCOHERENT_GL"
	KindEcartMontant          AlertKind = "ECART_MONTANT"
	KindNumeroManquant        AlertKind = "NUMERO_MANQUANT"
	KindJourNonOuvrable       AlertKind = "JOUR_NON_OUVRABLE"
	KindDoublonGrandLivre     AlertKind = "DOUBLON_GRAND_LIVRE"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

type AlertStatus string

const (
	StatusActive  AlertStatus = "active"
	StatusValide  AlertStatus = "valide"
	StatusCorrige AlertStatus = "corrige"
	StatusRejete  AlertStatus = "rejete"
)

type AlertSource string

const (
	SourceGL       AlertSource = "GL"
	SourceRL       AlertSource = "RL"
	SourceDocument AlertSource = "document"
)

// Alert is one detected anomaly, bound to the document whose JSON would be
// edited to resolve it. Quantitative kinds carry MontantGL/MontantReleve/Delta;
// the other descriptive fields are populated per kind.
type Alert struct {
	ID          uuid.UUID   `json:"id"`
	DocumentID  uuid.UUID   `json:"document_id"`
	Kind        AlertKind   `json:"kind"`
	Severity    Severity    `json:"severity"`
	Source      AlertSource `json:"source"`
	Ref         string      `json:"ref"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description"`

	Date          string           `json:"date,omitempty"`
	Montant       *decimal.Decimal `json:"montant,omitempty"`
	MontantGL     *decimal.Decimal `json:"montant_gl,omitempty"`
	MontantReleve *decimal.Decimal `json:"montant_releve,omitempty"`
	Delta         *decimal.Decimal `json:"delta,omitempty"`
	NomClient     string           `json:"nom_client,omitempty"`
	TypeFacture   string           `json:"type_facture,omitempty"`
	TypeOperation string           `json:"type,omitempty"`

	Status           AlertStatus `json:"status"`
	Commentaire      string      `json:"commentaire,omitempty"`
	DateModification time.Time   `json:"date_modification"`
}

// TypeBalance aggregates all entries sharing one account type.
type TypeBalance struct {
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Balance     decimal.Decimal `json:"balance"`
	EntryCount  int             `json:"entry_count"`
}

// SignificantEntry is a large movement retained for display. The label is
// truncated to 50 characters.
type SignificantEntry struct {
	Account string          `json:"account"`
	Label   string          `json:"label"`
	Date    string          `json:"date"`
	Net     decimal.Decimal `json:"net"`
}

type AccountActivity struct {
	Account    string `json:"account"`
	EntryCount int    `json:"entry_count"`
}

type Movements struct {
	LargestDebit       decimal.Decimal    `json:"largest_debit"`
	LargestCredit      decimal.Decimal    `json:"largest_credit"`
	MeanDebit          float64            `json:"mean_debit"`
	MeanCredit         float64            `json:"mean_credit"`
	SignificantEntries []SignificantEntry `json:"significant_entries"`
	MostActiveAccounts []AccountActivity  `json:"most_active_accounts"`
}

type DateAnalysis struct {
	PeriodStart         string         `json:"period_start"`
	PeriodEnd           string         `json:"period_end"`
	DurationDays        int            `json:"duration_days"`
	MonthlyDistribution map[string]int `json:"monthly_distribution"`
	EntriesWithoutDate  int            `json:"entries_without_date"`
}

// LedgerAnomaly is an analytic signal local to one ledger, distinct from the
// cross-document Alert taxonomy.
type LedgerAnomaly struct {
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Account     string          `json:"account,omitempty"`
	Date        string          `json:"date,omitempty"`
	Net         decimal.Decimal `json:"net"`
	Threshold   float64         `json:"threshold,omitempty"`
}

type AccountDetail struct {
	EntryCount     int             `json:"entry_count"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	Balance        decimal.Decimal `json:"balance"`
	EarliestDate   string          `json:"earliest_date"`
	LatestDate     string          `json:"latest_date"`
	PrincipalLabel string          `json:"principal_label"`
}

// Snapshot is the full set of analytic characteristics computed for one
// ledger document. It marshals to the characteristics JSON exported to hosts.
type Snapshot struct {
	EntryCount     int                         `json:"entry_count"`
	TotalDebit     decimal.Decimal             `json:"total_debit"`
	TotalCredit    decimal.Decimal             `json:"total_credit"`
	Balance        decimal.Decimal             `json:"balance"`
	AccountsByType map[AccountType][]Entry     `json:"accounts_by_type"`
	BalancesByType map[AccountType]TypeBalance `json:"balances_by_type"`
	Movements      Movements                   `json:"movements"`
	Ratios         map[string]float64          `json:"ratios"`
	DateAnalysis   DateAnalysis                `json:"date_analysis"`
	Anomalies      []LedgerAnomaly             `json:"anomalies"`
	AccountDetails map[string]AccountDetail    `json:"account_details"`
	SourceFile     string                      `json:"source_file,omitempty"`
	ProcessedAt    string                      `json:"processed_at,omitempty"`
	Error          string                      `json:"error,omitempty"`
}
