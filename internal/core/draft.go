package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DraftEntry is one replacement ledger line inside a correction draft.
// Amounts are strings so drafts survive JSON round-trips without float
// drift; they are parsed with the standard amount heuristic.
type DraftEntry struct {
	Account string `json:"account" jsonschema_description:"Numéro du compte comptable de la ligne (ex: 512200)"`
	Label   string `json:"label" jsonschema_description:"Libellé de l'écriture; doit contenir la référence de l'alerte"`
	Date    string `json:"date" jsonschema_description:"Date de l'écriture au format JJ/MM/AAAA"`
	Debit   string `json:"debit" jsonschema_description:"Montant au débit (chaîne, '0' si aucun)"`
	Credit  string `json:"credit" jsonschema_description:"Montant au crédit (chaîne, '0' si aucun)"`
}

// CorrectionDraft is a proposed replacement entry set for one alert. It is
// produced either by a human through the host UI or by the drafting agent,
// and always passes Normalize then Validate before being applied.
type CorrectionDraft struct {
	Ref        string       `json:"ref" jsonschema_description:"Référence de l'alerte corrigée (numéro de facture ou de chèque)"`
	Entries    []DraftEntry `json:"entries" jsonschema_description:"Écritures de remplacement; la partie double doit être équilibrée"`
	Reasoning  string       `json:"reasoning" jsonschema_description:"Justification comptable de la correction proposée"`
	Confidence float64      `json:"confidence" jsonschema_description:"Confiance entre 0.0 et 1.0"`
}

// Normalize trims every field and canonicalizes the reference to upper
// case and dates to ISO.
func (d *CorrectionDraft) Normalize() {
	d.Ref = strings.ToUpper(strings.TrimSpace(d.Ref))
	for i := range d.Entries {
		e := &d.Entries[i]
		e.Account = strings.TrimSpace(e.Account)
		e.Label = strings.TrimSpace(e.Label)
		e.Date = NormalizeDate(e.Date)
		e.Debit = strings.TrimSpace(e.Debit)
		e.Credit = strings.TrimSpace(e.Credit)
	}
}

// Validate checks structural soundness: a reference, at least one line,
// accounts on every line, one positive side per line, a balanced total,
// and the reference present in at least one label so a re-run of the same
// correction stays a no-op.
func (d CorrectionDraft) Validate() error {
	if d.Ref == "" {
		return errors.New("draft has no reference")
	}
	if len(d.Entries) == 0 {
		return errors.New("draft has no entries")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	refSeen := false

	for i, e := range d.Entries {
		if e.Account == "" {
			return fmt.Errorf("entry %d has no account", i)
		}
		debit := ParseAmount(e.Debit)
		credit := ParseAmount(e.Credit)
		if debit.IsNegative() || credit.IsNegative() {
			return fmt.Errorf("entry %d has a negative amount", i)
		}
		if debit.IsZero() && credit.IsZero() {
			return fmt.Errorf("entry %d has neither debit nor credit", i)
		}
		if debit.IsPositive() && credit.IsPositive() {
			return fmt.Errorf("entry %d has both debit and credit", i)
		}
		if strings.Contains(e.Label, d.Ref) {
			refSeen = true
		}
		totalDebit = totalDebit.Add(debit)
		totalCredit = totalCredit.Add(credit)
	}

	if !refSeen {
		return fmt.Errorf("no entry label carries the reference %s", d.Ref)
	}
	if !totalDebit.Equal(totalCredit) {
		return fmt.Errorf("draft is unbalanced: debit %s, credit %s",
			totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}
	return nil
}

// WireEntries renders the draft entries with the document wire keys and
// DD/MM/YYYY dates, ready for ApplyGLCorrection.
func (d CorrectionDraft) WireEntries() []map[string]any {
	out := make([]map[string]any, 0, len(d.Entries))
	for _, e := range d.Entries {
		out = append(out, map[string]any{
			"n° compte": e.Account,
			"libellé":   e.Label,
			"date":      WireDate(e.Date),
			"débit":     ParseAmount(e.Debit).InexactFloat64(),
			"crédit":    ParseAmount(e.Credit).InexactFloat64(),
		})
	}
	return out
}
