package core

import (
	"sort"
	"strings"
)

// Reference carrier keys on source documents.
const (
	InvoiceNumberKey = "Numéro Facture"
	ChequeNumberKey  = "Numéro de Chèque"
	InvoiceAmountKey = "Total TTC"
	ChequeAmountKey  = "Montant du Chèque"
)

// ReferenceIndex correlates reference tokens (invoice and cheque numbers)
// with the ledger entries, statement operations, and source documents that
// carry them. Membership is case-sensitive substring on label and nature;
// multiplicity inside a single field is not inspected.
type ReferenceIndex struct {
	GLByRef      map[string][]Entry
	RLByRef      map[string][]Operation
	InvoiceByRef map[string]Document
	ChequeByRef  map[string]Document

	// UnnumberedDocs lists source documents whose carrier key is missing
	// or blank, in input order.
	UnnumberedDocs []Document
}

// DocumentRef reads the reference token of a source document, uppercased
// and trimmed. The second return reports whether the carrier key held a
// non-blank value.
func DocumentRef(doc Document) (string, bool) {
	key := InvoiceNumberKey
	if doc.Kind == KindCheque {
		key = ChequeNumberKey
	}
	raw, ok := doc.Content[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	ref := strings.ToUpper(strings.TrimSpace(s))
	if ref == "" {
		return "", false
	}
	return ref, true
}

// BuildReferenceIndex extracts reference tokens from the source documents
// and indexes the GL entries and RL operations containing them.
func BuildReferenceIndex(entries []Entry, ops []Operation, invoices, cheques []Document) *ReferenceIndex {
	idx := &ReferenceIndex{
		GLByRef:      make(map[string][]Entry),
		RLByRef:      make(map[string][]Operation),
		InvoiceByRef: make(map[string]Document),
		ChequeByRef:  make(map[string]Document),
	}

	index := func(docs []Document, byRef map[string]Document) {
		for _, doc := range docs {
			ref, ok := DocumentRef(doc)
			if !ok {
				idx.UnnumberedDocs = append(idx.UnnumberedDocs, doc)
				continue
			}
			byRef[ref] = doc
			idx.match(ref, entries, ops)
		}
	}
	index(invoices, idx.InvoiceByRef)
	index(cheques, idx.ChequeByRef)
	return idx
}

func (idx *ReferenceIndex) match(ref string, entries []Entry, ops []Operation) {
	if _, done := idx.GLByRef[ref]; done {
		return
	}
	idx.GLByRef[ref] = nil
	for _, e := range entries {
		if strings.Contains(e.Label, ref) {
			idx.GLByRef[ref] = append(idx.GLByRef[ref], e)
		}
	}
	for _, op := range ops {
		if strings.Contains(op.Nature, ref) {
			idx.RLByRef[ref] = append(idx.RLByRef[ref], op)
		}
	}
}

// Refs returns every indexed reference token in deterministic order:
// invoice refs first, then cheque refs, each sorted lexicographically.
func (idx *ReferenceIndex) Refs() (invoiceRefs, chequeRefs []string) {
	for ref := range idx.InvoiceByRef {
		invoiceRefs = append(invoiceRefs, ref)
	}
	for ref := range idx.ChequeByRef {
		chequeRefs = append(chequeRefs, ref)
	}
	sort.Strings(invoiceRefs)
	sort.Strings(chequeRefs)
	return invoiceRefs, chequeRefs
}
