// Package report derives monthly aggregates from the activity log and pushes
// them to the report sink. Reporting is read-only consumption of the log; a
// report run never mutates tracked-channel state or session files.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"munchwatch/activity"
	"munchwatch/config"
	"munchwatch/monitor"
	"munchwatch/notify"
	"munchwatch/telemetry"
)

// Discord caps embed descriptions at 4096 characters.
const maxDescriptionLen = 4096

// ChannelCount is one tracked channel's session count for the report month.
type ChannelCount struct {
	Platform config.Platform `json:"platform"`
	Name     string          `json:"name"`
	Count    int             `json:"count"`
}

// OwnerActivity aggregates one owner's tracked channels for the report month.
type OwnerActivity struct {
	OwnerID  string         `json:"ownerId"`
	Name     string         `json:"name"`
	Total    int            `json:"total"`
	Channels []ChannelCount `json:"channels"`
}

// Generator builds and publishes monthly activity reports.
type Generator struct {
	Channels *config.Store
	Store    *activity.Store
	Sink     notify.Sink

	now func() time.Time
}

func New(channels *config.Store, store *activity.Store, sink notify.Sink) *Generator {
	return &Generator{Channels: channels, Store: store, Sink: sink, now: time.Now}
}

// Aggregate computes per-owner per-channel session counts for one calendar
// month, sorted by total descending then owner name ascending. Unreadable
// session files count as zero; they never fail the report.
func (g *Generator) Aggregate(year int, month time.Month) ([]OwnerActivity, error) {
	tracked, err := g.Channels.List()
	if err != nil {
		return nil, fmt.Errorf("read tracked channels: %w", err)
	}

	byOwner := map[string]*OwnerActivity{}
	order := []string{}
	for _, ch := range tracked {
		name := ch.ChannelName
		if name == "" {
			name = ch.ChannelID
		}
		count := g.Store.CountInMonth(ch.OwnerID, ch.Platform, ch.ChannelID, year, month)

		owner, ok := byOwner[ch.OwnerID]
		if !ok {
			owner = &OwnerActivity{OwnerID: ch.OwnerID, Name: ch.OwnerID}
			byOwner[ch.OwnerID] = owner
			order = append(order, ch.OwnerID)
		}
		owner.Channels = append(owner.Channels, ChannelCount{Platform: ch.Platform, Name: name, Count: count})
		owner.Total += count
	}

	out := make([]OwnerActivity, 0, len(order))
	for _, id := range order {
		out = append(out, *byOwner[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// Generate aggregates one month and publishes the result to the report sink.
// With no tracked channels it returns a descriptive message and sends nothing.
func (g *Generator) Generate(ctx context.Context, year int, month time.Month) (string, error) {
	if month < time.January || month > time.December {
		return "", fmt.Errorf("invalid month %d: must be between 1 and 12", month)
	}
	ctx, span := telemetry.StartSpan(ctx, "report", "Generate")
	defer span.End()

	logger := telemetry.LoggerWithCorr(ctx).With(slog.String("component", "report"))
	logger.Info("generating monthly report",
		slog.Int("year", year), slog.String("month", month.String()))

	owners, err := g.Aggregate(year, month)
	if err != nil {
		telemetry.RecordError(span, err)
		return "", err
	}
	if len(owners) == 0 {
		msg := "no channels are currently tracked, nothing to report"
		logger.Info("report skipped", slog.String("reason", msg))
		return msg, nil
	}
	if g.Sink == nil {
		return "", fmt.Errorf("no report sink configured")
	}

	payload := notify.Payload{
		Title:       fmt.Sprintf("Munchy Stream Report: %s %d", month, year),
		Color:       notify.ColorBlue,
		Description: describe(owners),
	}
	if err := g.Sink.Publish(ctx, payload); err != nil {
		telemetry.RecordError(span, err)
		return "", fmt.Errorf("publish report: %w", err)
	}
	if telemetry.ReportsGenerated != nil {
		telemetry.ReportsGenerated.Inc()
	}

	msg := fmt.Sprintf("report for %s %d sent", month, year)
	logger.Info("monthly report sent", slog.Int("owners", len(owners)))
	return msg, nil
}

func describe(owners []OwnerActivity) string {
	var b strings.Builder
	for _, owner := range owners {
		fmt.Fprintf(&b, "<@%s> (%s):\n", owner.OwnerID, owner.Name)
		for _, ch := range owner.Channels {
			fmt.Fprintf(&b, "  • %s - %s: **%d** streams\n", ch.Platform, ch.Name, ch.Count)
		}
		b.WriteString("\n")
	}
	desc := strings.TrimSpace(b.String())
	if desc == "" {
		return "No stream activity found for any tracked users in this period."
	}
	if len(desc) > maxDescriptionLen {
		desc = desc[:maxDescriptionLen-30] + "\n... (report truncated)"
	}
	return desc
}

// OwnerSummary is the month-plus-all-time view of one owner's activity,
// including a best-effort current live status.
type OwnerSummary struct {
	OwnerID          string           `json:"ownerId"`
	Year             int              `json:"year"`
	Month            time.Month       `json:"month"`
	StreamsThisMonth int              `json:"streamsThisMonth"`
	AllTimeStreams   int              `json:"allTimeStreams"`
	IsLive           bool             `json:"isLive"`
	Live             *LiveDetails     `json:"live,omitempty"`
	Channels         []TrackedChannel `json:"channels"`
}

type LiveDetails struct {
	URL         string          `json:"url"`
	Title       string          `json:"title"`
	Platform    config.Platform `json:"platform"`
	ChannelName string          `json:"channelName"`
}

type TrackedChannel struct {
	Platform    config.Platform `json:"platform"`
	ChannelID   string          `json:"channelId"`
	ChannelName string          `json:"channelName"`
}

// OwnerSummaryFor collects one owner's month and all-time counts plus, when
// providers are available, whether any of their channels is live right now.
// Status-query failures degrade to "not live"; counting always completes.
func (g *Generator) OwnerSummaryFor(ctx context.Context, providers map[config.Platform]monitor.StatusProvider, ownerID string, year int, month time.Month) (*OwnerSummary, error) {
	all, err := g.Channels.List()
	if err != nil {
		return nil, fmt.Errorf("read tracked channels: %w", err)
	}
	tracked := config.ForOwner(all, ownerID)
	if len(tracked) == 0 {
		return nil, fmt.Errorf("no channels tracked for owner %s", ownerID)
	}

	sum := &OwnerSummary{OwnerID: ownerID, Year: year, Month: month}
	logger := telemetry.LoggerWithCorr(ctx).With(slog.String("component", "report"))
	for _, ch := range tracked {
		name := ch.ChannelName
		if name == "" {
			name = ch.ChannelID
		}
		sum.Channels = append(sum.Channels, TrackedChannel{Platform: ch.Platform, ChannelID: ch.ChannelID, ChannelName: name})

		sessions := g.Store.Read(ch.OwnerID, ch.Platform, ch.ChannelID)
		sum.AllTimeStreams += len(sessions)
		sum.StreamsThisMonth += activity.CountInMonth(sessions, year, month)

		if sum.IsLive || providers == nil {
			continue
		}
		provider, ok := providers[ch.Platform]
		if !ok {
			continue
		}
		status, err := provider.GetStatus(ctx, ch.ChannelID)
		if err != nil {
			logger.Warn("live status check failed",
				slog.String("platform", string(ch.Platform)),
				slog.String("channel", name),
				slog.Any("err", err))
			continue
		}
		if status.IsLive {
			sum.IsLive = true
			sum.Live = &LiveDetails{
				URL:         status.StreamURL,
				Title:       status.Title,
				Platform:    ch.Platform,
				ChannelName: name,
			}
		}
	}
	return sum, nil
}
