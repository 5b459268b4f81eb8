package core

import (
	"fmt"
	"strings"
)

// Field alias tables. Source documents arrive with localized keys and
// variant casings; each canonical field probes its aliases in order with
// case-sensitive matching. New aliases extend the tables.
var (
	accountAliases = []string{"n° compte", "numero_compte", "compte", "N° Compte"}
	labelAliases   = []string{"libellé", "libelle", "description", "Libellé"}
	dateAliases    = []string{"date", "Date", "DATE"}
	debitAliases   = []string{"débit", "debit", "DÉBIT"}
	creditAliases  = []string{"crédit", "credit", "CRÉDIT"}
	natureAliases  = []string{"nature", "Nature", "libellé", "libelle"}
	montantAliases = []string{"montant", "Montant", "MONTANT"}
	opTypeAliases  = []string{"type", "Type", "TYPE"}
)

func probeField(raw map[string]any, aliases []string) (any, bool) {
	for _, alias := range aliases {
		if v, ok := raw[alias]; ok {
			return v, true
		}
	}
	return nil, false
}

func probeString(raw map[string]any, aliases []string) string {
	v, ok := probeField(raw, aliases)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSpace(s)
}

// NormalizeEntry collapses a raw ledger record into a canonical Entry.
// Records without an account are invalid and return nil.
func NormalizeEntry(raw map[string]any) *Entry {
	account := probeString(raw, accountAliases)
	if account == "" {
		return nil
	}

	debitValue, _ := probeField(raw, debitAliases)
	creditValue, _ := probeField(raw, creditAliases)
	debit := ParseAmount(debitValue).Abs()
	credit := ParseAmount(creditValue).Abs()

	e := &Entry{
		Account: account,
		Label:   probeString(raw, labelAliases),
		Date:    NormalizeDate(probeString(raw, dateAliases)),
		Debit:   debit,
		Credit:  credit,
		Net:     debit.Sub(credit),
	}
	e.Type = ClassifyAccount(e.Account)
	return e
}

// NormalizeOperation collapses a raw bank-statement record. Montant keeps
// its sign; missing fields default to empty or zero.
func NormalizeOperation(raw map[string]any) Operation {
	montantValue, _ := probeField(raw, montantAliases)
	return Operation{
		Date:    NormalizeDate(probeString(raw, dateAliases)),
		Nature:  probeString(raw, natureAliases),
		Montant: ParseAmount(montantValue),
		Type:    probeString(raw, opTypeAliases),
	}
}

// ParseGrandLivre extracts the canonical entry list from a ledger document
// tree. A missing or malformed ecritures_comptables key is an input-shape
// error; individual invalid records are dropped.
func ParseGrandLivre(content map[string]any) ([]Entry, error) {
	rawList, ok := content["ecritures_comptables"].([]any)
	if !ok {
		return nil, fmt.Errorf("document has no ecritures_comptables list")
	}

	entries := make([]Entry, 0, len(rawList))
	for _, item := range rawList {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if e := NormalizeEntry(record); e != nil {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

// ParseReleve extracts the canonical operation list from a bank-statement
// document tree.
func ParseReleve(content map[string]any) ([]Operation, error) {
	rawList, ok := content["operations"].([]any)
	if !ok {
		return nil, fmt.Errorf("document has no operations list")
	}

	ops := make([]Operation, 0, len(rawList))
	for _, item := range rawList {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		ops = append(ops, NormalizeOperation(record))
	}
	return ops, nil
}
