// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	PollCycles          prometheus.Counter
	ChannelsChecked     prometheus.Counter
	ChannelCheckErrors  prometheus.Counter
	LiveDetected        prometheus.Counter
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
	SessionsAppended    prometheus.Counter
	SessionDuplicates   prometheus.Counter
	AppendErrors        prometheus.Counter
	ResolveSucceeded    prometheus.Counter
	ResolveFailed       prometheus.Counter
	ReportsGenerated    prometheus.Counter

	// Histograms (seconds)
	CycleDuration       prometheus.Observer
	StatusQueryDuration prometheus.Observer

	// Gauges
	TrackedChannelsGauge prometheus.Gauge
	CooldownEntriesGauge prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		PollCycles = promauto.NewCounter(prometheus.CounterOpts{Name: "stream_poll_cycles_total", Help: "Number of poll cycles run"})
		ChannelsChecked = promauto.NewCounter(prometheus.CounterOpts{Name: "stream_channels_checked_total", Help: "Number of per-channel status queries attempted"})
		ChannelCheckErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "stream_channel_check_errors_total", Help: "Number of per-channel status queries that failed"})
		LiveDetected = promauto.NewCounter(prometheus.CounterOpts{Name: "stream_live_detected_total", Help: "Number of keyword-matching live streams detected"})
		NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{Name: "stream_notifications_sent_total", Help: "Number of notifications successfully sent"})
		NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "stream_notifications_failed_total", Help: "Number of notification sends that failed"})
		SessionsAppended = promauto.NewCounter(prometheus.CounterOpts{Name: "stream_sessions_appended_total", Help: "Number of new stream sessions written to the activity log"})
		SessionDuplicates = promauto.NewCounter(prometheus.CounterOpts{Name: "stream_session_duplicates_total", Help: "Number of appends skipped because the session was already logged"})
		AppendErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "stream_append_errors_total", Help: "Number of activity log writes that failed"})
		ResolveSucceeded = promauto.NewCounter(prometheus.CounterOpts{Name: "stream_resolve_succeeded_total", Help: "Number of channel identifier resolutions that succeeded"})
		ResolveFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "stream_resolve_failed_total", Help: "Number of channel identifier resolutions that exhausted all strategies"})
		ReportsGenerated = promauto.NewCounter(prometheus.CounterOpts{Name: "stream_reports_generated_total", Help: "Number of monthly reports generated"})
		CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "stream_poll_cycle_duration_seconds", Help: "Poll cycle duration seconds", Buckets: prometheus.DefBuckets})
		StatusQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "stream_status_query_duration_seconds", Help: "Per-channel status query duration seconds", Buckets: prometheus.DefBuckets})
		TrackedChannelsGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "stream_tracked_channels", Help: "Current number of tracked channels"})
		CooldownEntriesGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "stream_cooldown_entries", Help: "Current number of cooldown entries held in memory"})
	})
}

// SetTrackedChannels records the current tracked-channel count.
func SetTrackedChannels(n int) {
	if TrackedChannelsGauge != nil {
		TrackedChannelsGauge.Set(float64(n))
	}
}

// SetCooldownEntries records the current cooldown map size.
func SetCooldownEntries(n int) {
	if CooldownEntriesGauge != nil {
		CooldownEntriesGauge.Set(float64(n))
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------

type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
