package app

import (
	"context"

	"github.com/google/uuid"

	"ledger-recon/internal/core"
)

// ApplicationService is the single interface all adapters (CLI, scheduler,
// future web) call. It decouples presentation from business logic.
// Implementations must contain no fmt.Println, no ANSI codes, and no
// display logic of any kind.
type ApplicationService interface {
	// AnalyzeLedger recomputes the characteristics snapshot of the latest
	// ledger document and persists it. Input-shape errors come back inside
	// the snapshot's error field, not as a Go error.
	AnalyzeLedger(ctx context.Context) (*AnalysisResult, error)

	// RunDetectionPass takes a consistent snapshot of the latest ledger,
	// statement, and source documents, applies every reconciliation rule,
	// and upserts the resulting alerts. Re-detected anomalies supersede
	// their previous alert for the same (document, kind, ref) tuple.
	RunDetectionPass(ctx context.Context) (*DetectionResult, error)

	// ListAlerts returns alerts ordered by severity, optionally filtered
	// by lifecycle status (empty = all).
	ListAlerts(ctx context.Context, status core.AlertStatus) (*AlertListResult, error)

	// GetAlert returns one alert with its resolved corrective guide. The
	// guide is nil when the alert kind and title are both unknown.
	GetAlert(ctx context.Context, id uuid.UUID) (*AlertResult, error)

	// UpdateAlertStatus moves an alert through its lifecycle
	// (active, valide, corrige, rejete) with a comment.
	UpdateAlertStatus(ctx context.Context, req UpdateAlertStatusRequest) error

	// ApplyCorrection rewrites the alert's bound document: ledger and
	// statement corrections replace the entries matching the alert's
	// reference, source-document corrections shallow-merge new content.
	// The save is an atomic replace of the document body.
	ApplyCorrection(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error)

	// DraftCorrection asks the drafting agent for a replacement entry list
	// resolving the alert. Fails when no agent is configured; corrections
	// then flow through ApplyCorrection with user-supplied drafts only.
	DraftCorrection(ctx context.Context, alertID uuid.UUID) (*DraftResult, error)

	// GetConfig returns the detection configuration with its JSON schema
	// for settings forms.
	GetConfig(ctx context.Context) (*ConfigResult, error)

	// UpdateConfig persists new detection settings, preserving unknown
	// keys already stored.
	UpdateConfig(ctx context.Context, cfg core.DetectionConfig) error

	// GetDashboard derives the treasury, client, supplier, and VAT
	// positions from the latest ledger snapshot.
	GetDashboard(ctx context.Context) (*DashboardResult, error)

	// BuildReport summarizes the alert set: counts by status and severity,
	// the weighted risk score, and recommendations.
	BuildReport(ctx context.Context) (*ReportResult, error)
}
