package monitor

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"munchwatch/telemetry"
)

// StartPolling runs the poll cycle on a fixed interval, with one immediate
// run at start so a freshly booted process does not wait a full interval.
// Env knob: STREAM_CHECK_INTERVAL (a duration, overrides the configured
// minutes for local testing).
func (m *Monitor) StartPolling(ctx context.Context, interval time.Duration) {
	if v := os.Getenv("STREAM_CHECK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	slog.Info("stream monitor starting", slog.Duration("interval", interval))

	m.runScheduled(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("stream monitor stopped")
			return
		case <-ticker.C:
			m.runScheduled(ctx)
		}
	}
}

func (m *Monitor) runScheduled(ctx context.Context) {
	ctx = telemetry.WithCorrelation(ctx, uuid.NewString())
	res := m.RunCycle(ctx, false)
	logger := telemetry.LoggerWithCorr(ctx).With(slog.String("component", "monitor"))
	if res.Note != "" {
		logger.Info("poll cycle skipped", slog.String("note", res.Note))
		return
	}
	logger.Info("poll cycle complete",
		slog.Int("checked", res.Checked),
		slog.Int("live", len(res.Events)),
		slog.Int("announced", res.Announced),
		slog.Int("errors", res.Errors))
}
