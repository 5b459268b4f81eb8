package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ledger-recon/internal/core"
)

// ConfigStore persists the single detection configuration row. Unknown
// keys inside the JSON blob survive read-modify-write cycles because the
// decode keeps the raw tree alongside the typed struct.
type ConfigStore struct {
	pool *pgxpool.Pool
}

func NewConfigStore(pool *pgxpool.Pool) *ConfigStore {
	return &ConfigStore{pool: pool}
}

// Get loads the configuration document, falling back to defaults when no
// row exists yet.
func (s *ConfigStore) Get(ctx context.Context) (core.ConfigDocument, error) {
	var blob []byte
	err := s.pool.QueryRow(ctx, `SELECT config FROM detection_config WHERE id = 1`).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.DecodeConfigDocument(nil)
		}
		return core.ConfigDocument{}, fmt.Errorf("failed to load detection config: %w", err)
	}
	return core.DecodeConfigDocument(blob)
}

func (s *ConfigStore) Save(ctx context.Context, doc core.ConfigDocument) error {
	blob, err := doc.Encode()
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO detection_config (id, config)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET config = EXCLUDED.config
	`, blob)
	if err != nil {
		return fmt.Errorf("failed to save detection config: %w", err)
	}
	return nil
}
