package main

import (
	"context"
	"os"
	"time"

	"github.com/courtsidehq/courtside/internal/app"
	"github.com/courtsidehq/courtside/internal/config"
	"github.com/courtsidehq/courtside/internal/infrastructure/repository/blob"
	"github.com/courtsidehq/courtside/internal/platform/logging"
	"github.com/courtsidehq/courtside/internal/usecase"
)

// One-shot snapshot run for cron and manual backfills. Exits non-zero when
// the scoreboard cannot be fetched or lists no games.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	store, cleanup, err := app.NewSnapshotStore(cfg, logger)
	if err != nil {
		logger.Error("build snapshot store", "error", err)
		os.Exit(1)
	}

	repo := blob.NewSnapshotRepository(store)
	client := app.NewGameDataClient(cfg, logger)
	ingestSvc := usecase.NewIngestService(client, repo, cfg.IngestMaxWorkers, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := ingestSvc.Run(ctx)
	if err != nil {
		_ = cleanup(context.Background())
		logger.Error("ingest run failed", "error", err)
		os.Exit(1)
	}

	if err := cleanup(ctx); err != nil {
		logger.Error("release storage failed", "error", err)
	}

	logger.Info("ingest run finished",
		"date", result.Date,
		"game_count", result.GameCount,
		"degraded_count", result.DegradedCount,
	)
}
