package report

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"munchwatch/telemetry"
)

// StartMonthlyJob checks once per day whether the monthly report is due and,
// on the 1st of a month, generates the previous month's report. A report fires
// at most once per trigger month even though the check runs daily (the check
// also runs once at start, so a process booted on the 1st still reports).
// Env knob: REPORT_CHECK_INTERVAL (a duration, for local testing).
func (g *Generator) StartMonthlyJob(ctx context.Context) {
	interval := 24 * time.Hour
	if v := os.Getenv("REPORT_CHECK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}
	slog.Info("monthly report job starting", slog.Duration("check_interval", interval))

	var lastTrigger time.Time // first day of the month that last fired
	lastTrigger = g.checkDue(ctx, lastTrigger)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("monthly report job stopped")
			return
		case <-ticker.C:
			lastTrigger = g.checkDue(ctx, lastTrigger)
		}
	}
}

// checkDue fires the previous month's report when today is the 1st and this
// trigger month has not fired yet. Returns the updated last-trigger marker.
func (g *Generator) checkDue(ctx context.Context, lastTrigger time.Time) time.Time {
	now := g.now()
	if now.Day() != 1 {
		return lastTrigger
	}
	trigger := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if trigger.Equal(lastTrigger) {
		slog.Info("monthly report already generated for this trigger month",
			slog.String("trigger", trigger.Format("2006-01")))
		return lastTrigger
	}

	// Report covers the month that just ended.
	prev := trigger.AddDate(0, -1, 0)
	ctx = telemetry.WithCorrelation(ctx, uuid.NewString())
	if _, err := g.Generate(ctx, prev.Year(), prev.Month()); err != nil {
		slog.Error("scheduled report generation failed",
			slog.Int("year", prev.Year()),
			slog.String("month", prev.Month().String()),
			slog.Any("err", err))
		return lastTrigger
	}
	return trigger
}
