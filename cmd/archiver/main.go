// Package main is the entry point for the assessment archiver. It runs as a
// scheduled one-shot job: drain every assessment older than the retention
// cutoff into zstd-compressed NDJSON files, delete the archived rows, print a
// summary, and exit.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"floodroute/internal/archive"
	"floodroute/internal/config"
	"floodroute/internal/db"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("archiver starting",
		"retention", cfg.Archive.Retention.String(),
		"batch_size", cfg.Archive.BatchSize,
		"output_dir", cfg.Archive.OutputDir,
	)

	// A cancelled run leaves at most one duplicated batch file; the next run
	// resumes from the same cutoff query.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(connectCtx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	archiver := archive.NewArchiver(
		db.NewAssessmentRepository(pool),
		cfg.Archive,
		clockwork.NewRealClock(),
		logger,
	)

	stats, err := archiver.Run(ctx)
	if err != nil {
		return fmt.Errorf("archive run: %w", err)
	}

	logger.Info("archiver finished",
		"archived", stats.Archived,
		"deleted", stats.Deleted,
		"files", len(stats.Files),
		"cutoff", stats.Cutoff.Format(time.RFC3339),
	)
	return nil
}
