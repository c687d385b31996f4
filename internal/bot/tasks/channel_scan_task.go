package tasks

import (
	"context"
	"fmt"
	"time"
)

// newChannelScanTask creates the scheduled task that runs an ingestion pass
// over the source channel. Re-running over an already-indexed window is
// cheap: the store keeps the first copy of every post.
func newChannelScanTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "channel_scan")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled channel scan...")
		startTime := time.Now()

		scanCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()

		window := deps.Window

		added, total, err := deps.Ingestor.Ingest(scanCtx, window)
		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Scheduled channel scan failed", "error", err, "duration", duration)
			return fmt.Errorf("channel scan failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled channel scan completed",
			"added", added,
			"total", total,
			"window_start", window.Start.Format("2006-01-02"),
			"window_end", window.End.Format("2006-01-02"),
			"duration", duration)
		return nil
	}
}
