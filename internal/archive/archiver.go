// Package archive moves aged risk assessments out of the hot table into
// zstd-compressed NDJSON files. The archiver runs as a scheduled job; each run
// drains everything older than the retention cutoff in bounded batches.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/klauspost/compress/zstd"

	"floodroute/internal/config"
	"floodroute/internal/types"
)

// Store is the persistence contract the archiver drains.
type Store interface {
	ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]types.RiskAssessment, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

// RunStats summarizes one archiver run.
type RunStats struct {
	Archived int
	Deleted  int64
	Files    []string
	Cutoff   time.Time
}

// Archiver drains aged assessments into compressed archive files.
type Archiver struct {
	store  Store
	cfg    config.ArchiveConfig
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewArchiver creates an Archiver.
func NewArchiver(store Store, cfg config.ArchiveConfig, clock clockwork.Clock, logger *slog.Logger) *Archiver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{store: store, cfg: cfg, clock: clock, logger: logger}
}

// Run archives every assessment older than the retention cutoff. Each batch
// is written to its own file before the rows are deleted, so a failure
// between write and delete duplicates data rather than losing it.
func (a *Archiver) Run(ctx context.Context) (*RunStats, error) {
	cutoff := a.clock.Now().UTC().Add(-a.cfg.Retention)
	stats := &RunStats{Cutoff: cutoff}

	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return stats, fmt.Errorf("archive: failed to create output dir: %w", err)
	}

	for seq := 0; ; seq++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		batch, err := a.store.ListOlderThan(ctx, cutoff, a.cfg.BatchSize)
		if err != nil {
			return stats, err
		}
		if len(batch) == 0 {
			break
		}

		path := a.batchPath(seq)
		if err := writeBatch(path, batch); err != nil {
			return stats, err
		}
		stats.Files = append(stats.Files, path)
		stats.Archived += len(batch)

		ids := make([]int64, len(batch))
		for i, row := range batch {
			ids[i] = row.ID
		}
		deleted, err := a.store.DeleteByIDs(ctx, ids)
		if err != nil {
			return stats, err
		}
		stats.Deleted += deleted

		a.logger.InfoContext(ctx, "assessment batch archived",
			"file", path,
			"rows", len(batch),
			"deleted", deleted,
		)

		if len(batch) < a.cfg.BatchSize {
			break
		}
	}

	return stats, nil
}

// batchPath names one archive file after the run timestamp and batch index.
func (a *Archiver) batchPath(seq int) string {
	stamp := a.clock.Now().UTC().Format("20060102-150405")
	return filepath.Join(a.cfg.OutputDir, fmt.Sprintf("assessments-%s-%03d.ndjson.zst", stamp, seq))
}

// writeBatch writes one batch as zstd-compressed NDJSON, one assessment per
// line. The file is fully written and closed before the caller deletes rows.
func writeBatch(path string, batch []types.RiskAssessment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("archive: failed to create %s: %w", path, err)
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("archive: failed to create zstd writer: %w", err)
	}

	enc := json.NewEncoder(zw)
	for _, row := range batch {
		if err := enc.Encode(row); err != nil {
			zw.Close()
			f.Close()
			return fmt.Errorf("archive: failed to encode assessment %d: %w", row.ID, err)
		}
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("archive: failed to flush %s: %w", path, err)
	}
	return f.Close()
}
