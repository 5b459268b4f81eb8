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

// SnapshotStore keeps the latest characteristics snapshot per document.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

func (s *SnapshotStore) Save(ctx context.Context, documentID uuid.UUID, snapshot core.Snapshot) error {
	characteristics, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	processedAt := time.Now().UTC()
	if t, err := time.Parse(time.RFC3339, snapshot.ProcessedAt); err == nil {
		processedAt = t
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO snapshots (document_id, characteristics, processed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (document_id) DO UPDATE
		  SET characteristics = EXCLUDED.characteristics,
		      processed_at = EXCLUDED.processed_at
	`, documentID, characteristics, processedAt)
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", documentID, err)
	}
	return nil
}

func (s *SnapshotStore) Get(ctx context.Context, documentID uuid.UUID) (core.Snapshot, error) {
	var characteristics []byte
	err := s.pool.QueryRow(ctx, `
		SELECT characteristics FROM snapshots WHERE document_id = $1
	`, documentID).Scan(&characteristics)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Snapshot{}, ErrNotFound
		}
		return core.Snapshot{}, fmt.Errorf("failed to load snapshot for %s: %w", documentID, err)
	}

	var snapshot core.Snapshot
	if err := json.Unmarshal(characteristics, &snapshot); err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snapshot, nil
}
