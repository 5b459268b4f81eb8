package core

import (
	"regexp"
	"strings"
)

var accountAnnotation = regexp.MustCompile(`\s*\(\d+\)\s*`)

// ExtractCounterpartyName pulls the client or supplier name out of a ledger
// label of the form "Encaissement FAC2025010102 - InfoVista Ltd". The name
// is everything after the last " - " separator. Account annotations such as
// "(411)" are stripped. Labels without a name part yield "Inconnu".
func ExtractCounterpartyName(label string) string {
	idx := strings.LastIndex(label, " - ")
	if idx < 0 {
		return "Inconnu"
	}
	name := accountAnnotation.ReplaceAllString(label[idx+len(" - "):], " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return "Inconnu"
	}
	return name
}
