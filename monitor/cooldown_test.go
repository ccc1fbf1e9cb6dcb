package monitor

import (
	"testing"
	"time"

	"munchwatch/config"
)

func TestCooldownSuppression(t *testing.T) {
	c := NewCooldown()
	key := cooldownKey(config.PlatformTwitch, "somebody")
	window := 15 * time.Minute
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	c.RecordNotified(key, base)

	if c.ShouldNotify(key, base.Add(10*time.Minute), window, false) {
		t.Error("T+10min inside the window should not notify")
	}
	if !c.ShouldNotify(key, base.Add(16*time.Minute), window, false) {
		t.Error("T+16min outside the window should notify")
	}
	if !c.ShouldNotify(key, base.Add(1*time.Minute), window, true) {
		t.Error("manual check should bypass the cooldown")
	}
}

func TestCooldownAbsentEntryEligible(t *testing.T) {
	c := NewCooldown()
	if !c.ShouldNotify(cooldownKey(config.PlatformYouTube, "UCabc"), time.Now(), 15*time.Minute, false) {
		t.Error("a channel never notified should be eligible")
	}
}

func TestCooldownPrime(t *testing.T) {
	c := NewCooldown()
	key := cooldownKey(config.PlatformTwitch, "somebody")
	window := 15 * time.Minute
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	c.Prime(key, base)
	if c.ShouldNotify(key, base.Add(5*time.Minute), window, false) {
		t.Error("primed channel inside the window should not notify")
	}
	if !c.ShouldNotify(key, base.Add(20*time.Minute), window, false) {
		t.Error("primed channel outside the window should notify")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCooldownKeyIsolation(t *testing.T) {
	c := NewCooldown()
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	window := 15 * time.Minute

	c.RecordNotified(cooldownKey(config.PlatformTwitch, "somebody"), base)
	if !c.ShouldNotify(cooldownKey(config.PlatformYouTube, "somebody"), base.Add(time.Minute), window, false) {
		t.Error("cooldown for one platform must not suppress another")
	}
	if !c.ShouldNotify(cooldownKey(config.PlatformTwitch, "someoneelse"), base.Add(time.Minute), window, false) {
		t.Error("cooldown for one channel must not suppress another")
	}
}
