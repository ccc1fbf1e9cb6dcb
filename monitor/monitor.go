// Package monitor runs the poll cycle: it queries live status for every
// tracked channel, applies the keyword filter, coordinates the cooldown
// tracker and activity store, and pushes notifications into the sink.
// Detection, notification, and persistence are deliberately decoupled:
// persistence is exactly-once per session (enforced by the store's identity
// key), notification is at-most-once per cooldown window, and detection
// repeats every cycle the stream stays live.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"munchwatch/activity"
	"munchwatch/config"
	"munchwatch/notify"
	"munchwatch/telemetry"
)

// Event is one qualifying live session detected during a cycle.
type Event struct {
	StreamURL    string
	StartedAt    string
	Title        string
	Platform     config.Platform
	ChannelID    string
	OwnerID      string
	ChannelName  string
	ThumbnailURL string
}

// CycleResult summarizes one poll cycle.
type CycleResult struct {
	Checked   int
	Events    []Event
	Announced int
	Errors    int
	Note      string
}

// Monitor is the poll-cycle orchestrator. Construct once at startup and share;
// cycles are serialized internally so a manual check cannot interleave with
// the scheduled one.
type Monitor struct {
	Providers map[config.Platform]StatusProvider
	Store     *activity.Store
	Sink      notify.Sink
	Channels  *config.Store
	Cooldown  *Cooldown

	Keyword        string
	CooldownWindow time.Duration

	mu  sync.Mutex
	now func() time.Time

	lastMu     sync.Mutex
	lastCycle  time.Time
	lastResult CycleResult
}

// New wires a Monitor from its collaborators.
func New(cfg *config.Config, channels *config.Store, store *activity.Store, sink notify.Sink, providers map[config.Platform]StatusProvider) *Monitor {
	return &Monitor{
		Providers:      providers,
		Store:          store,
		Sink:           sink,
		Channels:       channels,
		Cooldown:       NewCooldown(),
		Keyword:        cfg.Keyword,
		CooldownWindow: cfg.Cooldown,
		now:            time.Now,
	}
}

// RunCycle polls every tracked channel once. Manual cycles bypass the
// cooldown and skip the already-logged dedup check. Per-channel failures are
// logged and skipped; the returned result is a summary, never an exception.
func (m *Monitor) RunCycle(ctx context.Context, manual bool) CycleResult {
	return m.run(ctx, manual, "")
}

// RunCycleForOwner polls only the channels tracked for one owner, with manual
// (cooldown-bypassing) semantics.
func (m *Monitor) RunCycleForOwner(ctx context.Context, ownerID string) CycleResult {
	return m.run(ctx, true, ownerID)
}

func (m *Monitor) run(ctx context.Context, manual bool, ownerID string) CycleResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, span := telemetry.StartSpan(ctx, "monitor", "poll_cycle", attribute.Bool("manual", manual))
	defer span.End()

	logger := telemetry.LoggerWithCorr(ctx).With(slog.String("component", "monitor"), slog.Bool("manual", manual))

	var res CycleResult
	start := time.Now()
	if telemetry.PollCycles != nil {
		telemetry.PollCycles.Inc()
	}

	channels, err := m.Channels.List()
	if err != nil {
		logger.Error("tracked channels unavailable", slog.Any("err", err))
		res.Note = "could not read tracked channels"
		return res
	}
	if ownerID != "" {
		channels = config.ForOwner(channels, ownerID)
		if len(channels) == 0 {
			res.Note = fmt.Sprintf("no channels tracked for owner %s", ownerID)
			return res
		}
	}
	telemetry.SetTrackedChannels(len(channels))
	if len(channels) == 0 {
		logger.Info("no tracked channels configured; nothing to poll")
		res.Note = "no tracked channels configured"
		return res
	}

	for _, ch := range channels {
		if ctx.Err() != nil {
			break
		}
		m.checkChannel(ctx, logger, ch, manual, &res)
	}

	// Persist every candidate event, independent of whether a notification
	// fired: the log is ground truth even when the notify path fails or is
	// suppressed by dedup/cooldown.
	for _, ev := range res.Events {
		added, err := m.Store.Append(ev.OwnerID, ev.Platform, ev.ChannelID, activity.Session{
			StreamURL: ev.StreamURL,
			StartedAt: ev.StartedAt,
			Title:     ev.Title,
		})
		switch {
		case err != nil:
			logger.Warn("session append failed", slog.String("channel", ev.ChannelName), slog.Any("err", err))
			if telemetry.AppendErrors != nil {
				telemetry.AppendErrors.Inc()
			}
			res.Errors++
		case added:
			logger.Info("session recorded", slog.String("channel", ev.ChannelName), slog.String("started_at", ev.StartedAt))
			if telemetry.SessionsAppended != nil {
				telemetry.SessionsAppended.Inc()
			}
		default:
			logger.Debug("session already recorded", slog.String("channel", ev.ChannelName), slog.String("started_at", ev.StartedAt))
			if telemetry.SessionDuplicates != nil {
				telemetry.SessionDuplicates.Inc()
			}
		}
	}

	telemetry.SetCooldownEntries(m.Cooldown.Len())
	if telemetry.CycleDuration != nil {
		telemetry.CycleDuration.Observe(time.Since(start).Seconds())
	}

	m.lastMu.Lock()
	m.lastCycle = m.now()
	m.lastResult = res
	m.lastMu.Unlock()
	return res
}

func (m *Monitor) checkChannel(ctx context.Context, logger *slog.Logger, ch config.TrackedChannel, manual bool, res *CycleResult) {
	provider, ok := m.Providers[ch.Platform]
	if !ok {
		logger.Warn("unsupported platform; skipping channel", slog.String("platform", string(ch.Platform)), slog.String("channel_id", ch.ChannelID))
		res.Errors++
		return
	}
	res.Checked++
	if telemetry.ChannelsChecked != nil {
		telemetry.ChannelsChecked.Inc()
	}

	var status LiveStatus
	var err error
	telemetry.TimeFunc(telemetry.StatusQueryDuration, func() {
		status, err = provider.GetStatus(ctx, ch.ChannelID)
	})
	if err != nil {
		// A single failed query never aborts the cycle; the channel is
		// simply "no result" until the next poll.
		logger.Warn("status query failed", slog.String("platform", string(ch.Platform)), slog.String("channel", ch.ChannelName), slog.Any("err", err))
		if telemetry.ChannelCheckErrors != nil {
			telemetry.ChannelCheckErrors.Inc()
		}
		res.Errors++
		return
	}
	if !status.IsLive {
		return
	}
	if !strings.Contains(strings.ToLower(status.Title), strings.ToLower(m.Keyword)) {
		logger.Debug("live but title does not match keyword", slog.String("channel", ch.ChannelName), slog.String("title", status.Title))
		return
	}

	ev := Event{
		StreamURL:    status.StreamURL,
		StartedAt:    status.StartedAt,
		Title:        status.Title,
		Platform:     ch.Platform,
		ChannelID:    ch.ChannelID,
		OwnerID:      ch.OwnerID,
		ChannelName:  ch.ChannelName,
		ThumbnailURL: status.ThumbnailURL,
	}
	res.Events = append(res.Events, ev)
	if telemetry.LiveDetected != nil {
		telemetry.LiveDetected.Inc()
	}
	logger.Info("qualifying live stream detected", slog.String("channel", ch.ChannelName), slog.String("title", status.Title))

	key := cooldownKey(ch.Platform, ch.ChannelID)
	now := m.now()

	if !manual && m.alreadyLogged(ev) {
		// The process likely restarted while this stream was live. Prime the
		// cooldown so it is not re-announced, but still queue the (no-op)
		// append above.
		logger.Info("session already logged; priming cooldown without announcing", slog.String("channel", ch.ChannelName), slog.String("started_at", ev.StartedAt))
		m.Cooldown.Prime(key, now)
	}

	if !m.Cooldown.ShouldNotify(key, now, m.CooldownWindow, manual) {
		logger.Debug("announcement on cooldown", slog.String("channel", ch.ChannelName))
		return
	}

	if m.Sink == nil {
		logger.Warn("no notification sink configured; skipping announcement", slog.String("channel", ch.ChannelName))
		return
	}
	if err := m.Sink.Publish(ctx, m.buildPayload(ev, manual, now)); err != nil {
		// Do not advance the cooldown: the next eligible cycle retries.
		logger.Warn("notification send failed", slog.String("channel", ch.ChannelName), slog.Any("err", err))
		if telemetry.NotificationsFailed != nil {
			telemetry.NotificationsFailed.Inc()
		}
		res.Errors++
		return
	}
	m.Cooldown.RecordNotified(key, now)
	res.Announced++
	if telemetry.NotificationsSent != nil {
		telemetry.NotificationsSent.Inc()
	}
	logger.Info("announced live stream", slog.String("channel", ch.ChannelName))
}

func (m *Monitor) alreadyLogged(ev Event) bool {
	for _, s := range m.Store.Read(ev.OwnerID, ev.Platform, ev.ChannelID) {
		if s.StreamURL == ev.StreamURL && s.StartedAt == ev.StartedAt {
			return true
		}
	}
	return false
}

func (m *Monitor) buildPayload(ev Event, manual bool, now time.Time) notify.Payload {
	p := notify.Payload{
		Title: fmt.Sprintf("%s just went live!", ev.ChannelName),
		URL:   ev.StreamURL,
		Fields: []notify.Field{
			{Name: "Tracked User", Value: "<@" + ev.OwnerID + ">"},
			{Name: "Title", Value: ev.Title},
			{Name: "Link", Value: ev.StreamURL},
		},
		ThumbnailURL: ev.ThumbnailURL,
	}
	switch ev.Platform {
	case config.PlatformYouTube:
		p.Color = notify.ColorRed
	case config.PlatformTwitch:
		p.Color = notify.ColorPurple
	}
	p.Footer = fmt.Sprintf("Streams this month: %d", m.Store.CountInMonth(ev.OwnerID, ev.Platform, ev.ChannelID, now.Year(), now.Month()))
	if manual {
		p.Content = "**DEBUG ANNOUNCEMENT:**"
		p.Footer += " • Manual check"
	}
	return p
}

// LastCycle returns when the most recent cycle finished and its summary.
func (m *Monitor) LastCycle() (time.Time, CycleResult) {
	m.lastMu.Lock()
	defer m.lastMu.Unlock()
	return m.lastCycle, m.lastResult
}
