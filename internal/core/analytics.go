package core

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Analytics policy knobs. The caps bound UI payloads; they are policy, not
// correctness constraints.
const (
	maxAnomalies          = 20
	maxSignificantEntries = 10
	maxActiveAccounts     = 10
	labelTruncation       = 50
	significantThreshold  = 10000
	outlierPercentile     = 95
)

// AnalyzeGrandLivre computes the characteristics snapshot for a ledger
// document tree. Input-shape errors yield the zero snapshot with the error
// message set; the caller decides whether to persist it.
func AnalyzeGrandLivre(content map[string]any, sourceFile string) Snapshot {
	entries, err := ParseGrandLivre(content)
	if err != nil {
		s := emptySnapshot()
		s.Error = err.Error()
		return s
	}
	s := AnalyzeEntries(entries)
	s.SourceFile = sourceFile
	s.ProcessedAt = time.Now().UTC().Format(time.RFC3339)
	return s
}

// AnalyzeEntries aggregates a canonical entry list into a snapshot. The
// computation is pure; an empty list yields zeros and empty maps.
func AnalyzeEntries(entries []Entry) Snapshot {
	s := emptySnapshot()
	s.EntryCount = len(entries)

	for _, e := range entries {
		s.TotalDebit = s.TotalDebit.Add(e.Debit)
		s.TotalCredit = s.TotalCredit.Add(e.Credit)
		s.AccountsByType[e.Type] = append(s.AccountsByType[e.Type], e)

		tb := s.BalancesByType[e.Type]
		tb.TotalDebit = tb.TotalDebit.Add(e.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(e.Credit)
		tb.Balance = tb.TotalDebit.Sub(tb.TotalCredit)
		tb.EntryCount++
		s.BalancesByType[e.Type] = tb
	}
	s.Balance = s.TotalDebit.Sub(s.TotalCredit)

	s.Movements = analyzeMovements(entries)
	s.Ratios = computeRatios(s.BalancesByType, s.TotalDebit, s.TotalCredit)
	s.DateAnalysis = analyzeDates(entries)
	s.Anomalies = detectLedgerAnomalies(entries)
	s.AccountDetails = buildAccountDetails(entries)
	return s
}

func emptySnapshot() Snapshot {
	return Snapshot{
		AccountsByType: make(map[AccountType][]Entry),
		BalancesByType: make(map[AccountType]TypeBalance),
		Movements: Movements{
			SignificantEntries: []SignificantEntry{},
			MostActiveAccounts: []AccountActivity{},
		},
		Ratios: make(map[string]float64),
		DateAnalysis: DateAnalysis{
			MonthlyDistribution: make(map[string]int),
		},
		Anomalies:      []LedgerAnomaly{},
		AccountDetails: make(map[string]AccountDetail),
	}
}

func analyzeMovements(entries []Entry) Movements {
	m := Movements{
		SignificantEntries: []SignificantEntry{},
		MostActiveAccounts: []AccountActivity{},
	}

	var debitSum, creditSum float64
	var debitCount, creditCount int
	threshold := decimal.NewFromInt(significantThreshold)
	activity := make(map[string]int)
	var accountOrder []string

	for _, e := range entries {
		if e.Debit.IsPositive() {
			if e.Debit.GreaterThan(m.LargestDebit) {
				m.LargestDebit = e.Debit
			}
			debitSum += e.Debit.InexactFloat64()
			debitCount++
		}
		if e.Credit.IsPositive() {
			if e.Credit.GreaterThan(m.LargestCredit) {
				m.LargestCredit = e.Credit
			}
			creditSum += e.Credit.InexactFloat64()
			creditCount++
		}

		if e.Net.Abs().GreaterThan(threshold) && len(m.SignificantEntries) < maxSignificantEntries {
			m.SignificantEntries = append(m.SignificantEntries, SignificantEntry{
				Account: e.Account,
				Label:   truncateLabel(e.Label),
				Date:    e.Date,
				Net:     e.Net,
			})
		}

		if _, seen := activity[e.Account]; !seen {
			accountOrder = append(accountOrder, e.Account)
		}
		activity[e.Account]++
	}

	if debitCount > 0 {
		m.MeanDebit = debitSum / float64(debitCount)
	}
	if creditCount > 0 {
		m.MeanCredit = creditSum / float64(creditCount)
	}

	sort.SliceStable(accountOrder, func(i, j int) bool {
		return activity[accountOrder[i]] > activity[accountOrder[j]]
	})
	for _, account := range accountOrder {
		if len(m.MostActiveAccounts) == maxActiveAccounts {
			break
		}
		m.MostActiveAccounts = append(m.MostActiveAccounts, AccountActivity{
			Account:    account,
			EntryCount: activity[account],
		})
	}
	return m
}

// computeRatios derives the financial ratios that have a nonzero
// denominator; the others are omitted from the map entirely.
func computeRatios(byType map[AccountType]TypeBalance, totalDebit, totalCredit decimal.Decimal) map[string]float64 {
	ratios := make(map[string]float64)

	bank := byType[TypeBanque].Balance.InexactFloat64()
	suppliers := byType[TypeFournisseurs].Balance.InexactFloat64()
	equity := byType[TypeCapitaux].Balance.InexactFloat64()
	purchases := byType[TypeAchats].Balance.InexactFloat64()
	stocks := byType[TypeStocks].Balance.InexactFloat64()

	if !totalDebit.IsZero() {
		ratios["balance_ratio"] = totalCredit.InexactFloat64() / totalDebit.InexactFloat64()
	}
	if suppliers != 0 {
		ratios["liquidity_ratio"] = bank / math.Abs(suppliers)
	}
	if equity != 0 {
		ratios["debt_ratio"] = bank / equity
	}
	if stocks != 0 {
		ratios["stock_rotation_ratio"] = purchases / stocks
	}
	return ratios
}

func analyzeDates(entries []Entry) DateAnalysis {
	da := DateAnalysis{MonthlyDistribution: make(map[string]int)}

	var start, end time.Time
	for _, e := range entries {
		if e.Date == "" {
			da.EntriesWithoutDate++
			continue
		}
		t, ok := ParseISODate(e.Date)
		if !ok {
			da.EntriesWithoutDate++
			continue
		}
		if start.IsZero() || t.Before(start) {
			start = t
		}
		if end.IsZero() || t.After(end) {
			end = t
		}
		da.MonthlyDistribution[t.Format("2006-01")]++
	}

	if !start.IsZero() {
		da.PeriodStart = start.Format(isoLayout)
		da.PeriodEnd = end.Format(isoLayout)
		da.DurationDays = int(end.Sub(start).Hours() / 24)
	}
	return da
}

// detectLedgerAnomalies flags duplicates, percentile outliers, and accounts
// outside the classification table. Output is capped at maxAnomalies.
func detectLedgerAnomalies(entries []Entry) []LedgerAnomaly {
	anomalies := []LedgerAnomaly{}
	add := func(a LedgerAnomaly) bool {
		if len(anomalies) >= maxAnomalies {
			return false
		}
		anomalies = append(anomalies, a)
		return true
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		signature := fmt.Sprintf("%s|%s|%s", e.Account, e.Date, e.Net.String())
		if seen[signature] {
			if !add(LedgerAnomaly{
				Kind:        "doublon",
				Description: fmt.Sprintf("Écriture en double sur le compte %s (%s, net %s)", e.Account, e.Date, e.Net.String()),
				Account:     e.Account,
				Date:        e.Date,
				Net:         e.Net,
			}) {
				return anomalies
			}
			continue
		}
		seen[signature] = true
	}

	var magnitudes []float64
	for _, e := range entries {
		if v := math.Abs(e.Net.InexactFloat64()); v > 0 {
			magnitudes = append(magnitudes, v)
		}
	}
	if len(magnitudes) > 0 {
		threshold := percentile(magnitudes, outlierPercentile)
		for _, e := range entries {
			if math.Abs(e.Net.InexactFloat64()) > threshold {
				if !add(LedgerAnomaly{
					Kind:        "montant_eleve",
					Description: fmt.Sprintf("Montant inhabituel sur le compte %s: net %s", e.Account, e.Net.String()),
					Account:     e.Account,
					Date:        e.Date,
					Net:         e.Net,
					Threshold:   threshold,
				}) {
					return anomalies
				}
			}
		}
	}

	for _, e := range entries {
		if e.Type == TypeAutres {
			if !add(LedgerAnomaly{
				Kind:        "compte_inhabituel",
				Description: fmt.Sprintf("Compte %s hors plan comptable connu", e.Account),
				Account:     e.Account,
				Date:        e.Date,
				Net:         e.Net,
			}) {
				return anomalies
			}
		}
	}
	return anomalies
}

// percentile computes the p-th percentile with linear interpolation between
// order statistics.
func percentile(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func buildAccountDetails(entries []Entry) map[string]AccountDetail {
	details := make(map[string]AccountDetail)
	labelCounts := make(map[string]map[string]int)
	labelOrder := make(map[string][]string)

	for _, e := range entries {
		d := details[e.Account]
		d.EntryCount++
		d.TotalDebit = d.TotalDebit.Add(e.Debit)
		d.TotalCredit = d.TotalCredit.Add(e.Credit)
		d.Balance = d.TotalDebit.Sub(d.TotalCredit)
		if e.Date != "" {
			if d.EarliestDate == "" || e.Date < d.EarliestDate {
				d.EarliestDate = e.Date
			}
			if d.LatestDate == "" || e.Date > d.LatestDate {
				d.LatestDate = e.Date
			}
		}
		details[e.Account] = d

		if e.Label != "" {
			if labelCounts[e.Account] == nil {
				labelCounts[e.Account] = make(map[string]int)
			}
			if labelCounts[e.Account][e.Label] == 0 {
				labelOrder[e.Account] = append(labelOrder[e.Account], e.Label)
			}
			labelCounts[e.Account][e.Label]++
		}
	}

	for account, d := range details {
		best := ""
		bestCount := 0
		for _, label := range labelOrder[account] {
			if labelCounts[account][label] > bestCount {
				best = label
				bestCount = labelCounts[account][label]
			}
		}
		d.PrincipalLabel = best
		details[account] = d
	}
	return details
}

func truncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= labelTruncation {
		return label
	}
	return string(runes[:labelTruncation])
}
