package app

import (
	"github.com/google/uuid"

	"ledger-recon/internal/core"
)

// UpdateAlertStatusRequest moves one alert through its lifecycle.
type UpdateAlertStatusRequest struct {
	AlertID     uuid.UUID
	Status      core.AlertStatus
	Commentaire string
}

// CorrectionRequest is the input for correcting the document bound to an
// alert. Ledger and statement corrections use Draft; source-document
// corrections use NewContent.
type CorrectionRequest struct {
	AlertID     uuid.UUID
	Draft       *core.CorrectionDraft
	NewContent  map[string]any
	Commentaire string
}
