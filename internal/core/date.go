package core

import (
	"strings"
	"time"
)

// dateLayouts is tried in order; the first layout that parses wins.
var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"02/01/06",
	"2006/01/02",
	"02.01.2006",
	"2006.01.02",
	"02 01 2006",
	"2006 01 02",
}

const isoLayout = "2006-01-02"

// NormalizeDate parses a source date in any supported layout and returns the
// ISO form, or the empty string when no layout matches.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoLayout)
		}
	}
	return ""
}

// WireDate renders an ISO date in the DD/MM/YYYY form used inside ledger and
// statement documents. Unparsable input passes through unchanged.
func WireDate(iso string) string {
	t, err := time.Parse(isoLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

// ParseISODate returns the time value of an ISO date and whether it parsed.
func ParseISODate(iso string) (time.Time, bool) {
	t, err := time.Parse(isoLayout, iso)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
