package core_test

import (
	"testing"

	"github.com/google/uuid"

	"ledger-recon/internal/core"
)

func invoiceDoc(number string) core.Document {
	content := map[string]any{"Total TTC": "2400.00"}
	if number != "" {
		content[core.InvoiceNumberKey] = number
	}
	return core.Document{ID: uuid.New(), Kind: core.KindFacture, Name: "facture.json", Content: content}
}

func chequeDoc(number string) core.Document {
	content := map[string]any{"Montant du Chèque": "1200.00"}
	if number != "" {
		content[core.ChequeNumberKey] = number
	}
	return core.Document{ID: uuid.New(), Kind: core.KindCheque, Name: "cheque.json", Content: content}
}

func TestDocumentRef(t *testing.T) {
	ref, ok := core.DocumentRef(invoiceDoc("  fac2025-001 "))
	if !ok || ref != "FAC2025-001" {
		t.Errorf("DocumentRef = %q, %v; expected FAC2025-001, true", ref, ok)
	}

	if _, ok := core.DocumentRef(invoiceDoc("")); ok {
		t.Error("expected missing number key to report not ok")
	}
	if _, ok := core.DocumentRef(invoiceDoc("   ")); ok {
		t.Error("expected blank number to report not ok")
	}

	ref, ok = core.DocumentRef(chequeDoc("CHQ001234"))
	if !ok || ref != "CHQ001234" {
		t.Errorf("cheque DocumentRef = %q, %v", ref, ok)
	}
}

func TestBuildReferenceIndex(t *testing.T) {
	entries := []core.Entry{
		{Account: "411000", Label: "Facture FAC2025-001 - Dupont SA"},
		{Account: "512100", Label: "Encaissement CHQ001234 - Martin SARL"},
		{Account: "606400", Label: "Fournitures sans référence"},
	}
	ops := []core.Operation{
		{Nature: "VIR FAC2025-001 DUPONT SA", Montant: core.ParseAmount("2350")},
		{Nature: "REMISE CHQ001234", Montant: core.ParseAmount("1200")},
	}
	unnumbered := invoiceDoc("")
	idx := core.BuildReferenceIndex(entries, ops,
		[]core.Document{invoiceDoc("FAC2025-001"), unnumbered},
		[]core.Document{chequeDoc("CHQ001234")})

	if len(idx.GLByRef["FAC2025-001"]) != 1 {
		t.Errorf("GL matches for FAC2025-001 = %d, expected 1", len(idx.GLByRef["FAC2025-001"]))
	}
	if len(idx.RLByRef["FAC2025-001"]) != 1 {
		t.Errorf("RL matches for FAC2025-001 = %d, expected 1", len(idx.RLByRef["FAC2025-001"]))
	}
	if len(idx.GLByRef["CHQ001234"]) != 1 || len(idx.RLByRef["CHQ001234"]) != 1 {
		t.Error("expected cheque reference matched on both sides")
	}
	if len(idx.UnnumberedDocs) != 1 || idx.UnnumberedDocs[0].ID != unnumbered.ID {
		t.Errorf("UnnumberedDocs = %v", idx.UnnumberedDocs)
	}
}

// Matching is case-sensitive: references are uppercased at extraction, so a
// lowercase token in a label does not match.
func TestBuildReferenceIndex_CaseSensitive(t *testing.T) {
	entries := []core.Entry{{Account: "411000", Label: "facture fac2025-001"}}
	idx := core.BuildReferenceIndex(entries, nil, []core.Document{invoiceDoc("FAC2025-001")}, nil)
	if len(idx.GLByRef["FAC2025-001"]) != 0 {
		t.Error("expected no match for a lowercase label")
	}
}

func TestReferenceIndex_RefsOrdering(t *testing.T) {
	idx := core.BuildReferenceIndex(nil, nil,
		[]core.Document{invoiceDoc("FAC-B"), invoiceDoc("FAC-A")},
		[]core.Document{chequeDoc("CHQ-2"), chequeDoc("CHQ-1")})

	invoiceRefs, chequeRefs := idx.Refs()
	if len(invoiceRefs) != 2 || invoiceRefs[0] != "FAC-A" || invoiceRefs[1] != "FAC-B" {
		t.Errorf("invoiceRefs = %v", invoiceRefs)
	}
	if len(chequeRefs) != 2 || chequeRefs[0] != "CHQ-1" || chequeRefs[1] != "CHQ-2" {
		t.Errorf("chequeRefs = %v", chequeRefs)
	}
}
