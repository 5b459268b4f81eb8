package app

import (
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"

	"ledger-recon/internal/core"
)

// AnalysisResult is returned by AnalyzeLedger.
type AnalysisResult struct {
	DocumentID uuid.UUID
	Snapshot   core.Snapshot
}

// DetectionResult is returned by RunDetectionPass.
type DetectionResult struct {
	GLDocumentID uuid.UUID
	RLDocumentID uuid.UUID
	Alerts       []core.Alert
	BySeverity   map[core.Severity]int
	Risk         core.RiskAssessment
}

// AlertListResult is returned by ListAlerts.
type AlertListResult struct {
	Alerts []core.Alert
}

// AlertResult is returned by GetAlert. Guide is nil when no guide resolves
// for the alert's kind or title; SuggestedLabel is empty in that case.
type AlertResult struct {
	Alert          core.Alert
	Guide          *core.Guide
	SuggestedLabel string
}

// CorrectionResult is returned by ApplyCorrection.
type CorrectionResult struct {
	DocumentID uuid.UUID
	Ref        string
	Replaced   bool
}

// DraftResult is returned by DraftCorrection.
type DraftResult struct {
	Alert core.Alert
	Draft core.CorrectionDraft
}

// ConfigResult is returned by GetConfig.
type ConfigResult struct {
	Config core.DetectionConfig
	Schema *jsonschema.Schema
}

// DashboardResult is returned by GetDashboard.
type DashboardResult struct {
	DocumentID uuid.UUID
	Dashboard  core.Dashboard
}

// ReportResult is returned by BuildReport.
type ReportResult struct {
	Report core.ValidationReport
}
