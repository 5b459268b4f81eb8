package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ledger-recon/internal/core"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// DocumentStore persists document JSON trees. Saves are atomic replaces of
// the content column; the store never patches inside a tree.
type DocumentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

func (s *DocumentStore) Save(ctx context.Context, doc core.Document) error {
	content, err := json.Marshal(doc.Content)
	if err != nil {
		return fmt.Errorf("failed to encode document content: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (id, kind, name, content, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		  SET kind = EXCLUDED.kind,
		      name = EXCLUDED.name,
		      content = EXCLUDED.content
	`, doc.ID, string(doc.Kind), doc.Name, content, doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *DocumentStore) Get(ctx context.Context, id uuid.UUID) (core.Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, kind, name, content, uploaded_at
		FROM documents WHERE id = $1
	`, id)
	return scanDocument(row)
}

// GetLatest returns the most recently uploaded document of a kind.
func (s *DocumentStore) GetLatest(ctx context.Context, kind core.DocumentKind) (core.Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, kind, name, content, uploaded_at
		FROM documents WHERE kind = $1
		ORDER BY uploaded_at DESC
		LIMIT 1
	`, string(kind))
	return scanDocument(row)
}

func (s *DocumentStore) ListByKind(ctx context.Context, kind core.DocumentKind) ([]core.Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, kind, name, content, uploaded_at
		FROM documents WHERE kind = $1
		ORDER BY uploaded_at
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s documents: %w", kind, err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// GetInvoice looks an invoice up by its number field inside the JSON tree.
func (s *DocumentStore) GetInvoice(ctx context.Context, ref string) (core.Document, error) {
	return s.getByNumber(ctx, core.KindFacture, core.InvoiceNumberKey, ref)
}

// GetCheque looks a cheque up by its number field inside the JSON tree.
func (s *DocumentStore) GetCheque(ctx context.Context, ref string) (core.Document, error) {
	return s.getByNumber(ctx, core.KindCheque, core.ChequeNumberKey, ref)
}

func (s *DocumentStore) getByNumber(ctx context.Context, kind core.DocumentKind, key, ref string) (core.Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, kind, name, content, uploaded_at
		FROM documents
		WHERE kind = $1 AND upper(trim(content->>$2)) = $3
		ORDER BY uploaded_at DESC
		LIMIT 1
	`, string(kind), key, ref)
	return scanDocument(row)
}

// ReplaceContent atomically replaces the full JSON body of a document.
func (s *DocumentStore) ReplaceContent(ctx context.Context, id uuid.UUID, content map[string]any) error {
	encoded, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to encode document content: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `UPDATE documents SET content = $2 WHERE id = $1`, id, encoded)
	if err != nil {
		return fmt.Errorf("failed to replace document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanDocument(row pgx.Row) (core.Document, error) {
	var doc core.Document
	var kind string
	var content []byte
	err := row.Scan(&doc.ID, &kind, &doc.Name, &content, &doc.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Document{}, ErrNotFound
		}
		return core.Document{}, fmt.Errorf("failed to scan document: %w", err)
	}
	doc.Kind = core.DocumentKind(kind)
	if err := json.Unmarshal(content, &doc.Content); err != nil {
		return core.Document{}, fmt.Errorf("failed to decode document content: %w", err)
	}
	return doc, nil
}
