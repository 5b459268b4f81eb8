package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"ledger-recon/internal/adapters/cli"
	"ledger-recon/internal/ai"
	"ledger-recon/internal/app"
	"ledger-recon/internal/db"
	"ledger-recon/internal/store"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	var agent ai.AgentService
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set, assisted drafting is disabled")
	} else {
		agent = ai.NewAgent(apiKey)
	}

	svc := app.NewAppService(
		store.NewDocumentStore(pool),
		store.NewAlertStore(pool),
		store.NewSnapshotStore(pool),
		store.NewConfigStore(pool),
		agent,
	)

	if len(os.Args) < 2 {
		log.Fatal("Usage: app <analyze|detect|alerts|alert|status|correct|draft|config|dashboard|report> [args]")
	}
	cli.Run(ctx, svc, os.Args[1:])
}
