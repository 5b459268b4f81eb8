package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ledger-recon/internal/core"
)

// AlertStore persists alerts keyed by id. The (document_id, kind, ref)
// tuple is unique: a fresh detection pass upserts on it, so a re-detected
// anomaly supersedes its previous alert and returns to the active status.
type AlertStore struct {
	pool *pgxpool.Pool
}

func NewAlertStore(pool *pgxpool.Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

func (s *AlertStore) Upsert(ctx context.Context, alert core.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode alert payload: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO alerts (id, document_id, kind, ref, source, severity, payload, status, commentaire, date_modification)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (document_id, kind, ref) DO UPDATE
		  SET source = EXCLUDED.source,
		      severity = EXCLUDED.severity,
		      payload = EXCLUDED.payload,
		      status = EXCLUDED.status,
		      commentaire = EXCLUDED.commentaire,
		      date_modification = EXCLUDED.date_modification
	`, alert.ID, alert.DocumentID, string(alert.Kind), alert.Ref, string(alert.Source),
		string(alert.Severity), payload, string(alert.Status), alert.Commentaire, alert.DateModification)
	if err != nil {
		return fmt.Errorf("failed to upsert alert %s/%s: %w", alert.Kind, alert.Ref, err)
	}
	return nil
}

func (s *AlertStore) Get(ctx context.Context, id uuid.UUID) (core.Alert, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, payload, status, commentaire, date_modification
		FROM alerts WHERE id = $1
	`, id)
	return scanAlert(row)
}

// List returns every alert, optionally filtered by status. Ordering is
// stable: severity first, then modification time descending.
func (s *AlertStore) List(ctx context.Context, status core.AlertStatus) ([]core.Alert, error) {
	query := `
		SELECT id, payload, status, commentaire, date_modification
		FROM alerts
	`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += `
		ORDER BY CASE severity
		  WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END,
		  date_modification DESC
	`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []core.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// UpdateStatus moves an alert through its lifecycle and records the
// comment and modification time.
func (s *AlertStore) UpdateStatus(ctx context.Context, id uuid.UUID, status core.AlertStatus, commentaire string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE alerts
		SET status = $2, commentaire = $3, date_modification = $4
		WHERE id = $1
	`, id, string(status), commentaire, at)
	if err != nil {
		return fmt.Errorf("failed to update alert %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanAlert(row pgx.Row) (core.Alert, error) {
	var payload []byte
	var id uuid.UUID
	var status, commentaire string
	var modified time.Time
	err := row.Scan(&id, &payload, &status, &commentaire, &modified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Alert{}, ErrNotFound
		}
		return core.Alert{}, fmt.Errorf("failed to scan alert: %w", err)
	}

	var alert core.Alert
	if err := json.Unmarshal(payload, &alert); err != nil {
		return core.Alert{}, fmt.Errorf("failed to decode alert payload: %w", err)
	}
	// Lifecycle columns are authoritative over the stored payload.
	alert.ID = id
	alert.Status = core.AlertStatus(status)
	alert.Commentaire = commentaire
	alert.DateModification = modified
	return alert, nil
}
