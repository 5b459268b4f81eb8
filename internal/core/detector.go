package core

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DetectionInput is the consistent cross-document snapshot a pass works on.
// The detector never mutates it; corrections applied mid-pass are not
// observed.
type DetectionInput struct {
	GLDocID    uuid.UUID
	RLDocID    uuid.UUID
	Entries    []Entry
	Operations []Operation
	Invoices   []Document
	Cheques    []Document
}

type Detector struct {
	cfg DetectionConfig
	now func() time.Time
}

func NewDetector(cfg DetectionConfig) *Detector {
	return &Detector{cfg: cfg, now: time.Now}
}

// Detect applies every reconciliation rule over the input snapshot and
// returns the alert set. Same input and config produce the same alerts,
// ignoring ids and timestamps.
func (d *Detector) Detect(input DetectionInput) []Alert {
	idx := BuildReferenceIndex(input.Entries, input.Operations, input.Invoices, input.Cheques)

	var alerts []Alert
	invoiceRefs, chequeRefs := idx.Refs()

	for _, ref := range invoiceRefs {
		alerts = append(alerts, d.checkInvoice(ref, idx, input)...)
	}
	for _, ref := range chequeRefs {
		alerts = append(alerts, d.checkCheque(ref, idx, input)...)
	}
	alerts = append(alerts, d.checkMissingNumbers(idx)...)
	if d.cfg.AlertOnWeekendTransactions {
		alerts = append(alerts, d.checkBusinessDays(input)...)
	}
	if d.cfg.AlertOnDuplicateTransactions {
		alerts = append(alerts, d.checkDuplicates(input)...)
	}
	return alerts
}

func (d *Detector) newAlert(kind AlertKind, docID uuid.UUID, source AlertSource, ref string) Alert {
	return Alert{
		ID:               uuid.New(),
		DocumentID:       docID,
		Kind:             kind,
		Source:           source,
		Ref:              ref,
		Title:            GuideTitle(kind),
		Status:           StatusActive,
		DateModification: d.now().UTC(),
	}
}

func (d *Detector) checkInvoice(ref string, idx *ReferenceIndex, input DetectionInput) []Alert {
	glEntries := idx.GLByRef[ref]
	rlOps := idx.RLByRef[ref]
	invoice := idx.InvoiceByRef[ref]

	var alerts []Alert

	if len(glEntries) > 0 {
		hasOrigin := false
		hasBank := false
		for _, e := range glEntries {
			switch e.Type {
			case TypeClients, TypeFournisseurs, TypeAchats, TypeCharges:
				hasOrigin = true
			case TypeBanque:
				hasBank = true
			}
		}
		if hasOrigin && !hasBank {
			montant := ParseAmount(invoice.Content[InvoiceAmountKey]).Abs()
			a := d.newAlert(KindFactureNonRapprochee, input.GLDocID, SourceGL, ref)
			a.Severity = d.cfg.SeverityFor(montant.InexactFloat64())
			a.Montant = &montant
			a.NomClient = invoiceCounterparty(invoice, glEntries)
			a.TypeFacture = invoiceSide(glEntries)
			a.Date = firstDate(glEntries)
			a.Description = fmt.Sprintf("La facture %s est comptabilisée mais aucun règlement n'apparaît sur un compte 512.", ref)
			alerts = append(alerts, a)
		}
	}

	if len(glEntries) > 0 && len(rlOps) > 0 {
		montantGL := sumNet(glEntries)
		montantRL := sumMontant(rlOps)
		delta := montantGL.Sub(montantRL).Abs()
		tol := d.cfg.Tolerance(math.Max(montantGL.InexactFloat64(), montantRL.InexactFloat64()))
		if delta.InexactFloat64() > tol {
			a := d.newAlert(KindEcartMontant, input.GLDocID, SourceGL, ref)
			a.Severity = d.cfg.SeverityFor(delta.InexactFloat64())
			a.MontantGL = &montantGL
			a.MontantReleve = &montantRL
			a.Delta = &delta
			a.NomClient = invoiceCounterparty(invoice, glEntries)
			a.Date = firstDate(glEntries)
			a.Description = fmt.Sprintf("Écart de %s entre le grand livre (%s) et le relevé (%s) pour la référence %s.",
				delta.StringFixed(2), montantGL.StringFixed(2), montantRL.StringFixed(2), ref)
			alerts = append(alerts, a)
		}
	}
	return alerts
}

func (d *Detector) checkCheque(ref string, idx *ReferenceIndex, input DetectionInput) []Alert {
	glEntries := idx.GLByRef[ref]
	rlOps := idx.RLByRef[ref]
	cheque := idx.ChequeByRef[ref]

	inGL := len(glEntries) > 0
	inRL := len(rlOps) > 0
	hasBank := false
	for _, e := range glEntries {
		if e.Type == TypeBanque {
			hasBank = true
			break
		}
	}

	montant := ParseAmount(cheque.Content[ChequeAmountKey]).Abs()
	emitter, _ := cheque.Content["Emetteur"].(string)

	build := func(kind AlertKind, docID uuid.UUID, source AlertSource, desc string) Alert {
		a := d.newAlert(kind, docID, source, ref)
		a.Severity = d.cfg.SeverityFor(montant.InexactFloat64())
		a.Montant = &montant
		a.NomClient = emitter
		a.Description = desc
		return a
	}

	switch {
	case !inGL && inRL:
		if !d.cfg.AlertOnMissingTransactions {
			return nil
		}
		a := build(KindChequeNonComptabilise, input.GLDocID, SourceGL,
			fmt.Sprintf("Le chèque %s apparaît sur le relevé bancaire mais n'est pas comptabilisé au grand livre.", ref))
		a.Date = firstOpDate(rlOps)
		return []Alert{a}

	case inGL && inRL && !hasBank:
		a := build(KindChequeEncaisseNonEmis, input.GLDocID, SourceGL,
			fmt.Sprintf("Le chèque %s est encaissé sur le relevé sans écriture d'émission sur un compte 512.", ref))
		a.Date = firstOpDate(rlOps)
		return []Alert{a}

	case inGL && inRL:
		montantGL := sumNet(glEntries)
		montantRL := sumMontant(rlOps)
		delta := montantGL.Sub(montantRL).Abs()
		tol := d.cfg.Tolerance(math.Max(montantGL.InexactFloat64(), montantRL.InexactFloat64()))
		if delta.InexactFloat64() > tol {
			a := build(KindChequeIncoherent, input.GLDocID, SourceGL,
				fmt.Sprintf("Montants incohérents pour le chèque %s: %s au grand livre contre %s au relevé.",
					ref, montantGL.StringFixed(2), montantRL.StringFixed(2)))
			a.Severity = d.cfg.SeverityFor(delta.InexactFloat64())
			a.MontantGL = &montantGL
			a.MontantReleve = &montantRL
			a.Delta = &delta
			a.Date = firstDate(glEntries)
			return []Alert{a}
		}
		return nil

	case inGL && !hasBank && !inRL:
		a := build(KindChequeEmisNonEncaisse, input.GLDocID, SourceGL,
			fmt.Sprintf("Le chèque %s est émis au grand livre mais n'apparaît ni sur un compte 512 ni sur le relevé.", ref))
		a.Date = firstDate(glEntries)
		return []Alert{a}
	}
	return nil
}

func (d *Detector) checkMissingNumbers(idx *ReferenceIndex) []Alert {
	var alerts []Alert
	for _, doc := range idx.UnnumberedDocs {
		ref := doc.Name
		if ref == "" {
			ref = doc.ID.String()
		}
		a := d.newAlert(KindNumeroManquant, doc.ID, SourceDocument, ref)
		a.Severity = SeverityMedium
		a.TypeFacture = string(doc.Kind)
		a.Description = fmt.Sprintf("Le document %s ne porte pas de numéro de référence.", ref)
		alerts = append(alerts, a)
	}
	return alerts
}

func (d *Detector) checkBusinessDays(input DetectionInput) []Alert {
	var alerts []Alert

	for _, e := range input.Entries {
		if !d.cfg.IsMonitoredAccount(e.Account) {
			continue
		}
		if reason := d.nonBusinessDay(e.Date); reason != "" {
			a := d.newAlert(KindJourNonOuvrable, input.GLDocID, SourceGL, fmt.Sprintf("%s@%s", e.Account, e.Date))
			a.Severity = SeverityMedium
			a.Date = e.Date
			net := e.Net
			a.Montant = &net
			a.Description = fmt.Sprintf("Écriture du %s sur le compte %s datée d'un %s.", WireDate(e.Date), e.Account, reason)
			alerts = append(alerts, a)
		}
	}

	for _, op := range input.Operations {
		if reason := d.nonBusinessDay(op.Date); reason != "" {
			a := d.newAlert(KindJourNonOuvrable, input.RLDocID, SourceRL, fmt.Sprintf("%s@%s", op.Date, truncateLabel(op.Nature)))
			a.Severity = SeverityMedium
			a.Date = op.Date
			montant := op.Montant
			a.Montant = &montant
			a.TypeOperation = op.Type
			a.Description = fmt.Sprintf("Opération bancaire du %s datée d'un %s.", WireDate(op.Date), reason)
			alerts = append(alerts, a)
		}
	}
	return alerts
}

// nonBusinessDay returns a short reason when the date is a weekend day or a
// configured holiday, and the empty string otherwise.
func (d *Detector) nonBusinessDay(isoDate string) string {
	t, ok := ParseISODate(isoDate)
	if !ok {
		return ""
	}
	switch t.Weekday() {
	case time.Saturday:
		return "samedi"
	case time.Sunday:
		return "dimanche"
	}
	if d.cfg.IsHoliday(isoDate) {
		return "jour férié"
	}
	return ""
}

func (d *Detector) checkDuplicates(input DetectionInput) []Alert {
	var alerts []Alert
	seen := make(map[string]bool)
	for _, e := range input.Entries {
		signature := fmt.Sprintf("%s|%s|%s", e.Account, e.Date, e.Net.String())
		if seen[signature] {
			a := d.newAlert(KindDoublonGrandLivre, input.GLDocID, SourceGL, signature)
			a.Severity = d.cfg.SeverityFor(e.Net.Abs().InexactFloat64())
			a.Date = e.Date
			net := e.Net
			a.Montant = &net
			a.Description = fmt.Sprintf("Écriture en double sur le compte %s (%s, net %s).", e.Account, e.Date, e.Net.StringFixed(2))
			alerts = append(alerts, a)
			continue
		}
		seen[signature] = true
	}
	return alerts
}

func sumNet(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Net)
	}
	return total.Abs()
}

func sumMontant(ops []Operation) decimal.Decimal {
	total := decimal.Zero
	for _, op := range ops {
		total = total.Add(op.Montant)
	}
	return total.Abs()
}

func firstDate(entries []Entry) string {
	for _, e := range entries {
		if e.Date != "" {
			return e.Date
		}
	}
	return ""
}

func firstOpDate(ops []Operation) string {
	for _, op := range ops {
		if op.Date != "" {
			return op.Date
		}
	}
	return ""
}

// invoiceSide guesses whether an invoice is a client or supplier invoice
// from the accounts its ledger entries touch.
func invoiceSide(entries []Entry) string {
	for _, e := range entries {
		switch e.Type {
		case TypeClients:
			return "client"
		case TypeFournisseurs:
			return "fournisseur"
		}
	}
	return ""
}

func invoiceCounterparty(invoice Document, entries []Entry) string {
	if name, ok := invoice.Content["Nom Client/Fournisseur"].(string); ok {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			return trimmed
		}
	}
	for _, e := range entries {
		if name := ExtractCounterpartyName(e.Label); name != "Inconnu" {
			return name
		}
	}
	return "Inconnu"
}
