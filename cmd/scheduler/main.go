package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"ledger-recon/internal/app"
	"ledger-recon/internal/db"
	"ledger-recon/internal/store"
)

const defaultSchedule = "@every 1h"

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		logger.WithError(err).Fatal("unable to connect to database")
	}
	defer pool.Close()

	svc := app.NewAppService(
		store.NewDocumentStore(pool),
		store.NewAlertStore(pool),
		store.NewSnapshotStore(pool),
		store.NewConfigStore(pool),
		nil,
	)

	schedule := os.Getenv("DETECTION_SCHEDULE")
	if schedule == "" {
		schedule = defaultSchedule
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { runPass(ctx, svc, logger) }); err != nil {
		logger.WithError(err).Fatalf("invalid schedule %q", schedule)
	}

	logger.WithField("schedule", schedule).Info("scheduler started")
	runPass(ctx, svc, logger)
	c.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("scheduler stopping")
	<-c.Stop().Done()
}

func runPass(ctx context.Context, svc app.ApplicationService, logger *logrus.Logger) {
	start := time.Now()
	result, err := svc.RunDetectionPass(ctx)
	if err != nil {
		logger.WithError(err).Error("detection pass failed")
		return
	}
	logger.WithFields(logrus.Fields{
		"document_id": result.GLDocumentID,
		"alerts":      len(result.Alerts),
		"risk":        result.Risk.Score,
		"duration":    time.Since(start).String(),
	}).Info("detection pass completed")
}
