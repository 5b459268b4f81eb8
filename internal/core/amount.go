package core

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a raw JSON value into a signed decimal amount.
// Strings go through the separator heuristic below; numbers pass through;
// anything else (nil, "N/A", malformed text) yields zero.
func ParseAmount(raw any) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case json.Number:
		return parseAmountString(v.String())
	case string:
		return parseAmountString(v)
	case decimal.Decimal:
		return v
	}
	return decimal.Zero
}

// parseAmountString applies the comma-vs-period rule: when both separators
// are present the rightmost one is decimal and the other is grouping; a lone
// comma is decimal only when it is followed by one or two digits.
func parseAmountString(s string) decimal.Decimal {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		fraction := cleaned[lastComma+1:]
		if strings.Count(cleaned, ",") == 1 && len(fraction) >= 1 && len(fraction) <= 2 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
