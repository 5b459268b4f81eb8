package core

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SeverityThresholds keys severities on the magnitude of a detected
// discrepancy. A delta at or above Critical is critical, and so on down.
type SeverityThresholds struct {
	Critical float64 `json:"critical" jsonschema_description:"Montant à partir duquel une anomalie est critique"`
	High     float64 `json:"high" jsonschema_description:"Montant à partir duquel une anomalie est élevée"`
	Medium   float64 `json:"medium" jsonschema_description:"Montant à partir duquel une anomalie est moyenne"`
	Low      float64 `json:"low" jsonschema_description:"Montant plancher des anomalies faibles"`
}

// DetectionConfig tunes the anomaly detector. It round-trips through the
// store as JSON with unknown keys preserved.
type DetectionConfig struct {
	AmountTolerancePercentage    float64            `json:"amount_tolerance_percentage" jsonschema_description:"Tolérance relative sur les écarts de montant (0.01 = 1%)"`
	AmountToleranceAbsolute      float64            `json:"amount_tolerance_absolute" jsonschema_description:"Tolérance absolue sur les écarts de montant, en euros"`
	SeverityThresholds           SeverityThresholds `json:"severity_thresholds" jsonschema_description:"Seuils de sévérité par montant d'écart"`
	AlertOnMissingTransactions   bool               `json:"alert_on_missing_transactions" jsonschema_description:"Alerter sur les transactions absentes d'un des deux côtés"`
	AlertOnDuplicateTransactions bool               `json:"alert_on_duplicate_transactions" jsonschema_description:"Alerter sur les écritures en double du grand livre"`
	AlertOnWeekendTransactions   bool               `json:"alert_on_weekend_transactions" jsonschema_description:"Alerter sur les écritures datées d'un jour non ouvrable"`
	MonitoredBankAccounts        []string           `json:"monitored_bank_accounts" jsonschema_description:"Préfixes des comptes bancaires surveillés"`
	Holidays                     []string           `json:"holidays" jsonschema_description:"Jours fériés au format YYYY-MM-DD"`
}

// DefaultDetectionConfig returns the configuration used when the store has
// none persisted yet.
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		AmountTolerancePercentage: 0.01,
		AmountToleranceAbsolute:   1.00,
		SeverityThresholds: SeverityThresholds{
			Critical: 10000,
			High:     1000,
			Medium:   100,
			Low:      0,
		},
		AlertOnMissingTransactions:   true,
		AlertOnDuplicateTransactions: true,
		AlertOnWeekendTransactions:   true,
		MonitoredBankAccounts:        []string{"512"},
		Holidays:                     []string{},
	}
}

// Tolerance returns the discrepancy tolerance for a pair of amounts:
// the larger of the absolute tolerance and the percentage tolerance
// applied to the larger amount.
func (c DetectionConfig) Tolerance(maxAmount float64) float64 {
	pct := c.AmountTolerancePercentage * maxAmount
	if pct > c.AmountToleranceAbsolute {
		return pct
	}
	return c.AmountToleranceAbsolute
}

// SeverityFor maps a discrepancy magnitude onto a severity.
func (c DetectionConfig) SeverityFor(delta float64) Severity {
	t := c.SeverityThresholds
	switch {
	case delta >= t.Critical:
		return SeverityCritical
	case delta >= t.High:
		return SeverityHigh
	case delta >= t.Medium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// IsHoliday reports whether an ISO date is in the configured holiday set.
func (c DetectionConfig) IsHoliday(isoDate string) bool {
	for _, h := range c.Holidays {
		if h == isoDate {
			return true
		}
	}
	return false
}

// IsMonitoredAccount reports whether an account number falls under one of
// the monitored bank prefixes.
func (c DetectionConfig) IsMonitoredAccount(account string) bool {
	for _, prefix := range c.MonitoredBankAccounts {
		if len(account) >= len(prefix) && account[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// ConfigDocument couples the typed configuration with the raw JSON tree it
// was decoded from, so keys this version does not model survive a
// read-modify-write cycle.
type ConfigDocument struct {
	Config DetectionConfig
	raw    map[string]any
}

// DecodeConfigDocument parses a persisted configuration blob. An empty blob
// yields the defaults with no extra keys.
func DecodeConfigDocument(blob []byte) (ConfigDocument, error) {
	doc := ConfigDocument{Config: DefaultDetectionConfig()}
	if len(blob) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(blob, &doc.Config); err != nil {
		return doc, fmt.Errorf("failed to decode detection config: %w", err)
	}
	if err := json.Unmarshal(blob, &doc.raw); err != nil {
		return doc, fmt.Errorf("failed to decode detection config tree: %w", err)
	}
	return doc, nil
}

// Encode re-merges the typed configuration over the raw tree and marshals
// the result. Keys absent from DetectionConfig keep their stored values.
func (d ConfigDocument) Encode() ([]byte, error) {
	typed, err := json.Marshal(d.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to encode detection config: %w", err)
	}
	if d.raw == nil {
		return typed, nil
	}

	var typedTree map[string]any
	if err := json.Unmarshal(typed, &typedTree); err != nil {
		return nil, fmt.Errorf("failed to rebuild detection config tree: %w", err)
	}
	merged := make(map[string]any, len(d.raw)+len(typedTree))
	for k, v := range d.raw {
		merged[k] = v
	}
	for k, v := range typedTree {
		merged[k] = v
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged detection config: %w", err)
	}
	return out, nil
}

// ConfigSchema reflects DetectionConfig into a JSON Schema so a host UI can
// render the settings form without hard-coding the field list.
func ConfigSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	return reflector.Reflect(&DetectionConfig{})
}
