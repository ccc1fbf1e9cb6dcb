package report

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"munchwatch/activity"
	"munchwatch/config"
)

func TestCheckDueFiresOnFirstOfMonth(t *testing.T) {
	sink := &captureSink{}
	g, store := newTestGenerator(t, sink, trackedFor("alice", "alicestream", "AliceStream"))
	seedSessions(t, store, "alice", config.PlatformTwitch, "alicestream", "2026-03-05T18:00:00Z")

	g.now = func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) }

	last := g.checkDue(context.Background(), time.Time{})
	if last.IsZero() {
		t.Fatal("trigger on the 1st should mark the month as fired")
	}
	if len(sink.payloads) != 1 {
		t.Fatalf("payloads = %d, want 1", len(sink.payloads))
	}
	// Fired on April 1st, the report covers March.
	if got := sink.payloads[0].Title; !strings.Contains(got, "March 2026") {
		t.Errorf("title = %q, want previous month", got)
	}

	// Same trigger month again: no second report.
	if again := g.checkDue(context.Background(), last); !again.Equal(last) {
		t.Error("repeated check in the same trigger month should not re-fire")
	}
	if len(sink.payloads) != 1 {
		t.Fatalf("payloads = %d after repeat, want 1", len(sink.payloads))
	}
}

func TestCheckDueSkipsOtherDays(t *testing.T) {
	sink := &captureSink{}
	g, _ := newTestGenerator(t, sink, trackedFor("alice", "alicestream", "AliceStream"))
	g.now = func() time.Time { return time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC) }

	if last := g.checkDue(context.Background(), time.Time{}); !last.IsZero() {
		t.Error("mid-month check should not fire")
	}
	if len(sink.payloads) != 0 {
		t.Fatalf("payloads = %d, want 0", len(sink.payloads))
	}
}

func TestCheckDueJanuaryCoversDecember(t *testing.T) {
	sink := &captureSink{}
	g, store := newTestGenerator(t, sink, trackedFor("alice", "alicestream", "AliceStream"))
	seedSessions(t, store, "alice", config.PlatformTwitch, "alicestream", "2026-12-20T18:00:00Z")

	g.now = func() time.Time { return time.Date(2027, 1, 1, 0, 30, 0, 0, time.UTC) }
	g.checkDue(context.Background(), time.Time{})

	if len(sink.payloads) != 1 {
		t.Fatalf("payloads = %d, want 1", len(sink.payloads))
	}
	if got := sink.payloads[0].Title; !strings.Contains(got, "December 2026") {
		t.Errorf("title = %q, want December of the previous year", got)
	}
	if !strings.Contains(sink.payloads[0].Description, "**1** streams") {
		t.Errorf("description = %q", sink.payloads[0].Description)
	}
}

// Failure keeps the marker clear so the next check on the 1st can retry.
func TestCheckDueFailureDoesNotMarkMonth(t *testing.T) {
	dir := t.TempDir()
	channels := config.NewStore(filepath.Join(dir, "channels.json"))
	if err := channels.Add(trackedFor("alice", "alicestream", "AliceStream")); err != nil {
		t.Fatal(err)
	}
	// No sink configured: Generate fails once tracked channels exist.
	g := New(channels, activity.NewStore(dir), nil)
	g.now = func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) }

	if last := g.checkDue(context.Background(), time.Time{}); !last.IsZero() {
		t.Error("failed generation should leave the trigger marker unset")
	}
}
