package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ledger-recon/internal/ai"
	"ledger-recon/internal/core"
	"ledger-recon/internal/store"
)

// Narrow store contracts, declared where they are consumed. The pgx-backed
// structs in internal/store satisfy them.
type DocumentStore interface {
	Save(ctx context.Context, doc core.Document) error
	Get(ctx context.Context, id uuid.UUID) (core.Document, error)
	GetLatest(ctx context.Context, kind core.DocumentKind) (core.Document, error)
	ListByKind(ctx context.Context, kind core.DocumentKind) ([]core.Document, error)
	ReplaceContent(ctx context.Context, id uuid.UUID, content map[string]any) error
}

type AlertStore interface {
	Upsert(ctx context.Context, alert core.Alert) error
	Get(ctx context.Context, id uuid.UUID) (core.Alert, error)
	List(ctx context.Context, status core.AlertStatus) ([]core.Alert, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status core.AlertStatus, commentaire string, at time.Time) error
}

type SnapshotStore interface {
	Save(ctx context.Context, documentID uuid.UUID, snapshot core.Snapshot) error
	Get(ctx context.Context, documentID uuid.UUID) (core.Snapshot, error)
}

type ConfigStore interface {
	Get(ctx context.Context) (core.ConfigDocument, error)
	Save(ctx context.Context, doc core.ConfigDocument) error
}

type appService struct {
	documents DocumentStore
	alerts    AlertStore
	snapshots SnapshotStore
	config    ConfigStore
	agent     ai.AgentService
}

// NewAppService constructs an appService that satisfies ApplicationService.
// agent may be nil: corrections then flow through user-supplied drafts only.
func NewAppService(
	documents DocumentStore,
	alerts AlertStore,
	snapshots SnapshotStore,
	config ConfigStore,
	agent ai.AgentService,
) ApplicationService {
	return &appService{
		documents: documents,
		alerts:    alerts,
		snapshots: snapshots,
		config:    config,
		agent:     agent,
	}
}

func (s *appService) AnalyzeLedger(ctx context.Context) (*AnalysisResult, error) {
	gl, err := s.documents.GetLatest(ctx, core.KindGrandLivre)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest ledger: %w", err)
	}

	snapshot := core.AnalyzeGrandLivre(gl.Content, gl.Name)
	if snapshot.Error == "" {
		if err := s.snapshots.Save(ctx, gl.ID, snapshot); err != nil {
			return nil, err
		}
	}
	return &AnalysisResult{DocumentID: gl.ID, Snapshot: snapshot}, nil
}

func (s *appService) RunDetectionPass(ctx context.Context) (*DetectionResult, error) {
	gl, err := s.documents.GetLatest(ctx, core.KindGrandLivre)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest ledger: %w", err)
	}
	entries, err := core.ParseGrandLivre(gl.Content)
	if err != nil {
		return nil, fmt.Errorf("ledger document %s: %w", gl.ID, err)
	}

	input := core.DetectionInput{GLDocID: gl.ID, Entries: entries}

	rl, err := s.documents.GetLatest(ctx, core.KindReleve)
	switch {
	case err == nil:
		ops, err := core.ParseReleve(rl.Content)
		if err != nil {
			return nil, fmt.Errorf("statement document %s: %w", rl.ID, err)
		}
		input.RLDocID = rl.ID
		input.Operations = ops
	case errors.Is(err, store.ErrNotFound):
		// Reconciliation degrades to ledger-only rules.
	default:
		return nil, fmt.Errorf("failed to load latest statement: %w", err)
	}

	if input.Invoices, err = s.documents.ListByKind(ctx, core.KindFacture); err != nil {
		return nil, err
	}
	if input.Cheques, err = s.documents.ListByKind(ctx, core.KindCheque); err != nil {
		return nil, err
	}

	cfgDoc, err := s.config.Get(ctx)
	if err != nil {
		return nil, err
	}

	alerts := core.NewDetector(cfgDoc.Config).Detect(input)
	for _, alert := range alerts {
		if err := s.alerts.Upsert(ctx, alert); err != nil {
			return nil, err
		}
	}

	result := &DetectionResult{
		GLDocumentID: gl.ID,
		RLDocumentID: input.RLDocID,
		Alerts:       alerts,
		BySeverity:   make(map[core.Severity]int),
		Risk:         core.ScoreRisk(alerts, s.documentCount(input)),
	}
	for _, alert := range alerts {
		result.BySeverity[alert.Severity]++
	}
	return result, nil
}

func (s *appService) documentCount(input core.DetectionInput) int {
	count := 1 + len(input.Invoices) + len(input.Cheques)
	if input.RLDocID != (uuid.UUID{}) {
		count++
	}
	return count
}

func (s *appService) ListAlerts(ctx context.Context, status core.AlertStatus) (*AlertListResult, error) {
	alerts, err := s.alerts.List(ctx, status)
	if err != nil {
		return nil, err
	}
	return &AlertListResult{Alerts: alerts}, nil
}

func (s *appService) GetAlert(ctx context.Context, id uuid.UUID) (*AlertResult, error) {
	alert, err := s.alerts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &AlertResult{Alert: alert}
	if guide, ok := core.ResolveGuide(alert.Kind, alert.Title); ok {
		result.Guide = &guide
		result.SuggestedLabel = guide.LabelTemplate(alert.Ref, counterpartyOrDefault(alert))
	}
	return result, nil
}

func counterpartyOrDefault(alert core.Alert) string {
	if alert.NomClient != "" {
		return alert.NomClient
	}
	return "Inconnu"
}

func (s *appService) UpdateAlertStatus(ctx context.Context, req UpdateAlertStatusRequest) error {
	switch req.Status {
	case core.StatusActive, core.StatusValide, core.StatusCorrige, core.StatusRejete:
	default:
		return fmt.Errorf("unknown alert status %q", req.Status)
	}
	return s.alerts.UpdateStatus(ctx, req.AlertID, req.Status, req.Commentaire, time.Now().UTC())
}

func (s *appService) ApplyCorrection(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error) {
	alert, err := s.alerts.Get(ctx, req.AlertID)
	if err != nil {
		return nil, err
	}
	doc, err := s.documents.Get(ctx, alert.DocumentID)
	if err != nil {
		return nil, err
	}

	var content map[string]any
	switch doc.Kind {
	case core.KindGrandLivre, core.KindReleve:
		if req.Draft == nil {
			return nil, fmt.Errorf("a correction draft is required for %s documents", doc.Kind)
		}
		draft := *req.Draft
		draft.Ref = alert.Ref
		draft.Normalize()
		if err := draft.Validate(); err != nil {
			return nil, err
		}
		if doc.Kind == core.KindGrandLivre {
			content = core.ApplyGLCorrection(doc.Content, alert.Ref, draft.WireEntries())
		} else {
			content = core.ApplyRLCorrection(doc.Content, alert.Ref, draft.WireEntries())
		}
	default:
		if req.NewContent == nil {
			return nil, fmt.Errorf("new content is required for %s documents", doc.Kind)
		}
		content = core.ApplySourceCorrection(doc.Content, req.NewContent)
	}

	if err := s.documents.ReplaceContent(ctx, doc.ID, content); err != nil {
		return nil, err
	}
	if err := s.alerts.UpdateStatus(ctx, alert.ID, core.StatusCorrige, req.Commentaire, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &CorrectionResult{DocumentID: doc.ID, Ref: alert.Ref, Replaced: true}, nil
}

func (s *appService) DraftCorrection(ctx context.Context, alertID uuid.UUID) (*DraftResult, error) {
	if s.agent == nil {
		return nil, fmt.Errorf("assisted drafting is unavailable: no OPENAI_API_KEY configured")
	}

	alert, err := s.alerts.Get(ctx, alertID)
	if err != nil {
		return nil, err
	}

	draftReq := ai.DraftRequest{Alert: alert}
	if guide, ok := core.ResolveGuide(alert.Kind, alert.Title); ok {
		draftReq.Guide = &guide
	}

	doc, err := s.documents.Get(ctx, alert.DocumentID)
	if err == nil && doc.Kind == core.KindGrandLivre {
		if entries, err := core.ParseGrandLivre(doc.Content); err == nil {
			for _, e := range entries {
				if strings.Contains(e.Label, alert.Ref) {
					draftReq.CurrentEntries = append(draftReq.CurrentEntries, e)
				}
			}
		}
	}

	draft, err := s.agent.DraftCorrection(ctx, draftReq)
	if err != nil {
		return nil, err
	}
	return &DraftResult{Alert: alert, Draft: *draft}, nil
}

func (s *appService) GetConfig(ctx context.Context) (*ConfigResult, error) {
	cfgDoc, err := s.config.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &ConfigResult{Config: cfgDoc.Config, Schema: core.ConfigSchema()}, nil
}

func (s *appService) UpdateConfig(ctx context.Context, cfg core.DetectionConfig) error {
	cfgDoc, err := s.config.Get(ctx)
	if err != nil {
		return err
	}
	cfgDoc.Config = cfg
	return s.config.Save(ctx, cfgDoc)
}

func (s *appService) GetDashboard(ctx context.Context) (*DashboardResult, error) {
	gl, err := s.documents.GetLatest(ctx, core.KindGrandLivre)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest ledger: %w", err)
	}

	snapshot, err := s.snapshots.Get(ctx, gl.ID)
	if errors.Is(err, store.ErrNotFound) {
		snapshot = core.AnalyzeGrandLivre(gl.Content, gl.Name)
		if snapshot.Error != "" {
			return nil, fmt.Errorf("ledger document %s: %s", gl.ID, snapshot.Error)
		}
		if err := s.snapshots.Save(ctx, gl.ID, snapshot); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return &DashboardResult{DocumentID: gl.ID, Dashboard: core.BuildDashboard(snapshot)}, nil
}

func (s *appService) BuildReport(ctx context.Context) (*ReportResult, error) {
	alerts, err := s.alerts.List(ctx, "")
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	for _, alert := range alerts {
		seen[alert.DocumentID] = true
	}
	documentCount := len(seen)
	if documentCount == 0 {
		documentCount = 1
	}

	return &ReportResult{Report: core.BuildValidationReport(alerts, documentCount)}, nil
}
