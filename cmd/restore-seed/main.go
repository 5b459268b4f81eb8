// restore-seed is a one-shot tool to restore the demo document set.
// Run it against a fresh database to get a ledger, a bank statement, an
// invoice, and a cheque. A detection pass over this set raises
// unreconciled-invoice, amount-gap, inconsistent-cheque, non-business-day
// and duplicate alerts; the other cheque rules and the missing-number rule
// do not fire on it.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"ledger-recon/internal/core"
	"ledger-recon/internal/db"
	"ledger-recon/internal/store"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	log.Println("Clearing previous alerts, snapshots, and documents...")
	if _, err := pool.Exec(ctx, `DELETE FROM alerts; DELETE FROM snapshots; DELETE FROM documents;`); err != nil {
		log.Fatalf("Failed to clear document data: %v", err)
	}

	documents := store.NewDocumentStore(pool)
	now := time.Now().UTC()

	seed := []core.Document{
		{
			ID:   uuid.New(),
			Kind: core.KindGrandLivre,
			Name: "grand_livre_demo.json",
			Content: map[string]any{
				"ecritures_comptables": []any{
					entry("512100", "Encaissement CHQ001234 - Martin SARL", "15/01/2025", 0, 1200.00),
					entry("411000", "Règlement CHQ001234 - Martin SARL", "15/01/2025", 1200.00, 0),
					entry("411000", "Facture FAC2025-001 - Dupont SA", "10/01/2025", 2400.00, 0),
					entry("706000", "Facture FAC2025-001 - Dupont SA", "10/01/2025", 0, 2000.00),
					entry("445711", "TVA sur FAC2025-001", "10/01/2025", 0, 400.00),
					entry("512100", "Chèque CHQ005678 fournisseur Bureau+", "18/01/2025", 0, 540.00),
					entry("401000", "Chèque CHQ005678 fournisseur Bureau+", "18/01/2025", 540.00, 0),
					entry("606400", "Fournitures de bureau", "19/01/2025", 450.00, 0),
					entry("445661", "TVA déductible fournitures", "19/01/2025", 90.00, 0),
					entry("606400", "Fournitures de bureau", "19/01/2025", 450.00, 0),
					entry("445661", "TVA déductible fournitures", "19/01/2025", 90.00, 0),
				},
			},
			UploadedAt: now,
		},
		{
			ID:   uuid.New(),
			Kind: core.KindReleve,
			Name: "releve_demo.json",
			Content: map[string]any{
				"operations": []any{
					operation("15/01/2025", "REMISE CHQ001234 MARTIN SARL", 1200.00, "credit"),
					operation("12/01/2025", "VIR FAC2025-001 DUPONT SA", 2350.00, "credit"),
					operation("25/01/2025", "CHQ009999 LOYER JANVIER", -850.00, "debit"),
					operation("19/01/2025", "PRLV FOURNITURES BUREAU", -540.00, "debit"),
				},
			},
			UploadedAt: now,
		},
		{
			ID:   uuid.New(),
			Kind: core.KindFacture,
			Name: "facture_fac2025_001.json",
			Content: map[string]any{
				"Numéro Facture": "FAC2025-001",
				"Nom Client":     "Dupont SA",
				"Total TTC":      "2400.00",
				"Date":           "10/01/2025",
			},
			UploadedAt: now,
		},
		{
			ID:   uuid.New(),
			Kind: core.KindCheque,
			Name: "cheque_chq001234.json",
			Content: map[string]any{
				"Numéro de Chèque":  "CHQ001234",
				"Montant du Chèque": "1200.00",
				"Nom Client":        "Martin SARL",
				"Date":              "14/01/2025",
			},
			UploadedAt: now,
		},
	}

	for _, doc := range seed {
		if err := documents.Save(ctx, doc); err != nil {
			log.Fatalf("Failed to seed %s document %s: %v", doc.Kind, doc.Name, err)
		}
		log.Printf("Seeded %s document %s", doc.Kind, doc.Name)
	}

	log.Println("Seed data restored successfully.")
}

func entry(account, label, date string, debit, credit float64) map[string]any {
	return map[string]any{
		"n° compte": account,
		"libellé":   label,
		"date":      date,
		"débit":     debit,
		"crédit":    credit,
	}
}

func operation(date, nature string, montant float64, opType string) map[string]any {
	return map[string]any{
		"date":    date,
		"nature":  nature,
		"montant": montant,
		"type":    opType,
	}
}
