// Package maintenance runs periodic background tasks as Go tickers.
// The API binary is already long-running (required for LISTEN/NOTIFY), so
// scheduled work lives here instead of in cron.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/albapepper/swiss-tournament/internal/archive"
)

// SnapshotPrefix is the key prefix for scheduled snapshots.
const SnapshotPrefix = "scheduled"

// Snapshotter exports a standings and pairings snapshot.
type Snapshotter interface {
	Export(ctx context.Context, prefix string) (archive.Result, error)
}

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	SnapshotInterval time.Duration
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, cfg Config, snap Snapshotter, logger *slog.Logger) {
	logger.Info("Maintenance tickers started", "snapshot", cfg.SnapshotInterval)

	if cfg.SnapshotInterval > 0 && snap != nil {
		t := time.NewTicker(cfg.SnapshotInterval)
		defer t.Stop()
		go runLoop(ctx, t.C, func() { snapshot(ctx, snap, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// snapshot exports the current standings. Failures are logged and retried
// on the next tick.
func snapshot(ctx context.Context, snap Snapshotter, logger *slog.Logger) {
	res, err := snap.Export(ctx, SnapshotPrefix)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("Snapshot export failed", "prefix", res.Prefix, "error", err)
		}
		return
	}
	logger.Debug("Snapshot export finished", "summary", res.Summary())
}
