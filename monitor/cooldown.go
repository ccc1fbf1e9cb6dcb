package monitor

import (
	"sync"
	"time"

	"munchwatch/config"
)

// Cooldown tracks the last-notified time per streaming-channel identity. It is
// process-lifetime only: the map starts empty on every boot, and an absent
// entry counts as "never notified".
type Cooldown struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func NewCooldown() *Cooldown {
	return &Cooldown{last: make(map[string]time.Time)}
}

func cooldownKey(platform config.Platform, channelID string) string {
	return string(platform) + "_" + channelID
}

// ShouldNotify reports whether a notification for the identity is due. Manual
// checks always pass; otherwise the window since the last notification must
// have fully elapsed.
func (c *Cooldown) ShouldNotify(identity string, now time.Time, window time.Duration, manual bool) bool {
	if manual {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.last[identity]) > window
}

// RecordNotified marks the identity as notified at now. Callers invoke this
// only after a successful send; a failed send must not advance the cooldown.
func (c *Cooldown) RecordNotified(identity string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[identity] = now
}

// Prime sets the timestamp without a notification having been sent. Used when
// a detected live session turns out to be already logged (the process
// restarted mid-stream) so the stream is not immediately re-announced.
func (c *Cooldown) Prime(identity string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[identity] = now
}

// Len returns the number of identities currently tracked.
func (c *Cooldown) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.last)
}
