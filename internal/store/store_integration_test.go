package store_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"ledger-recon/internal/core"
	"ledger-recon/internal/store"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `TRUNCATE TABLE alerts, snapshots, documents, detection_config CASCADE;`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}
	return pool
}

func testLedgerDoc(uploadedAt time.Time) core.Document {
	return core.Document{
		ID:   uuid.New(),
		Kind: core.KindGrandLivre,
		Name: "grand_livre_test.json",
		Content: map[string]any{
			"ecritures_comptables": []any{
				map[string]any{"n° compte": "512100", "libellé": "Encaissement CHQ001234", "date": "15/01/2025", "débit": 0.0, "crédit": 1200.0},
			},
		},
		UploadedAt: uploadedAt,
	}
}

func TestDocumentStore_RoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	documents := store.NewDocumentStore(pool)

	doc := testLedgerDoc(time.Now().UTC())
	if err := documents.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := documents.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Kind != core.KindGrandLivre || got.Name != doc.Name {
		t.Errorf("got %+v", got)
	}
	if _, ok := got.Content["ecritures_comptables"]; !ok {
		t.Error("content did not round-trip")
	}

	if _, err := documents.Get(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDocumentStore_GetLatest(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	documents := store.NewDocumentStore(pool)

	if _, err := documents.GetLatest(ctx, core.KindGrandLivre); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on empty table, got %v", err)
	}

	older := testLedgerDoc(time.Now().UTC().Add(-time.Hour))
	newer := testLedgerDoc(time.Now().UTC())
	for _, doc := range []core.Document{older, newer} {
		if err := documents.Save(ctx, doc); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	got, err := documents.GetLatest(ctx, core.KindGrandLivre)
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if got.ID != newer.ID {
		t.Errorf("GetLatest returned %s, expected the newest %s", got.ID, newer.ID)
	}
}

func TestDocumentStore_GetByNumber(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	documents := store.NewDocumentStore(pool)

	invoice := core.Document{
		ID:   uuid.New(),
		Kind: core.KindFacture,
		Name: "facture.json",
		Content: map[string]any{
			"Numéro Facture": " fac2025-001 ",
			"Total TTC":      "2400.00",
		},
		UploadedAt: time.Now().UTC(),
	}
	if err := documents.Save(ctx, invoice); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := documents.GetInvoice(ctx, "FAC2025-001")
	if err != nil {
		t.Fatalf("GetInvoice failed: %v", err)
	}
	if got.ID != invoice.ID {
		t.Errorf("GetInvoice returned %s", got.ID)
	}

	if _, err := documents.GetCheque(ctx, "CHQ000000"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDocumentStore_ReplaceContent(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	documents := store.NewDocumentStore(pool)

	doc := testLedgerDoc(time.Now().UTC())
	if err := documents.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := documents.ReplaceContent(ctx, doc.ID, map[string]any{"ecritures_comptables": []any{}}); err != nil {
		t.Fatalf("ReplaceContent failed: %v", err)
	}
	got, err := documents.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if list, _ := got.Content["ecritures_comptables"].([]any); len(list) != 0 {
		t.Errorf("content not replaced: %v", got.Content)
	}

	if err := documents.ReplaceContent(ctx, uuid.New(), map[string]any{}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAlertStore_UpsertSupersedes(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	documents := store.NewDocumentStore(pool)
	alerts := store.NewAlertStore(pool)

	doc := testLedgerDoc(time.Now().UTC())
	if err := documents.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	montant := decimal.NewFromInt(1200)
	alert := core.Alert{
		ID:               uuid.New(),
		DocumentID:       doc.ID,
		Kind:             core.KindChequeNonComptabilise,
		Source:           core.SourceGL,
		Severity:         core.SeverityHigh,
		Ref:              "CHQ001234",
		Title:            "Chèque non comptabilisé",
		Description:      "Le chèque CHQ001234 apparaît sur le relevé bancaire mais n'est pas comptabilisé au grand livre.",
		Montant:          &montant,
		Status:           core.StatusActive,
		DateModification: time.Now().UTC(),
	}
	if err := alerts.Upsert(ctx, alert); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// A validated alert re-detected with a new severity goes back to active.
	if err := alerts.UpdateStatus(ctx, alert.ID, core.StatusValide, "vu", time.Now().UTC()); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	redetected := alert
	redetected.ID = uuid.New()
	redetected.Severity = core.SeverityCritical
	if err := alerts.Upsert(ctx, redetected); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	list, err := alerts.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 alert after supersede, got %d", len(list))
	}
	got := list[0]
	if got.ID != alert.ID {
		t.Errorf("supersede must keep the original alert id, got %s", got.ID)
	}
	if got.Severity != core.SeverityCritical {
		t.Errorf("Severity = %s", got.Severity)
	}
	if got.Status != core.StatusActive {
		t.Errorf("Status = %s, expected re-detection to reactivate", got.Status)
	}
	if got.Montant == nil || !got.Montant.Equal(montant) {
		t.Errorf("Montant = %v", got.Montant)
	}
}

func TestAlertStore_ListFiltersByStatus(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	documents := store.NewDocumentStore(pool)
	alerts := store.NewAlertStore(pool)

	doc := testLedgerDoc(time.Now().UTC())
	if err := documents.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mk := func(ref string, severity core.Severity) core.Alert {
		return core.Alert{
			ID:               uuid.New(),
			DocumentID:       doc.ID,
			Kind:             core.KindEcartMontant,
			Source:           core.SourceGL,
			Severity:         severity,
			Ref:              ref,
			Status:           core.StatusActive,
			DateModification: time.Now().UTC(),
		}
	}
	a := mk("FAC-A", core.SeverityLow)
	b := mk("FAC-B", core.SeverityCritical)
	for _, alert := range []core.Alert{a, b} {
		if err := alerts.Upsert(ctx, alert); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}
	if err := alerts.UpdateStatus(ctx, a.ID, core.StatusRejete, "faux positif", time.Now().UTC()); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	active, err := alerts.List(ctx, core.StatusActive)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != b.ID {
		t.Errorf("active list = %+v", active)
	}

	all, err := alerts.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 alerts, got %d", len(all))
	}
	// Severity ordering puts the critical alert first.
	if all[0].ID != b.ID {
		t.Errorf("expected the critical alert first, got %s", all[0].Ref)
	}
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	documents := store.NewDocumentStore(pool)
	snapshots := store.NewSnapshotStore(pool)

	doc := testLedgerDoc(time.Now().UTC())
	if err := documents.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snapshot := core.AnalyzeGrandLivre(doc.Content, doc.Name)
	if err := snapshots.Save(ctx, doc.ID, snapshot); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := snapshots.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.EntryCount != 1 {
		t.Errorf("EntryCount = %d", got.EntryCount)
	}
	if !got.TotalCredit.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("TotalCredit = %s", got.TotalCredit)
	}

	if _, err := snapshots.Get(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestConfigStore_DefaultsAndPersistence(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	config := store.NewConfigStore(pool)

	doc, err := config.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.Config.AmountToleranceAbsolute != 1.00 {
		t.Errorf("expected defaults on an empty table, got %+v", doc.Config)
	}

	doc.Config.AmountToleranceAbsolute = 2.5
	doc.Config.Holidays = []string{"2025-12-25"}
	if err := config.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := config.Get(ctx)
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if got.Config.AmountToleranceAbsolute != 2.5 {
		t.Errorf("AmountToleranceAbsolute = %f", got.Config.AmountToleranceAbsolute)
	}
	if len(got.Config.Holidays) != 1 || got.Config.Holidays[0] != "2025-12-25" {
		t.Errorf("Holidays = %v", got.Config.Holidays)
	}
}
