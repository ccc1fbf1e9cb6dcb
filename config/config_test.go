package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"STREAM_CHECK_INTERVAL_MINUTES", "ANNOUNCEMENT_COOLDOWN_MINUTES",
		"STREAM_KEYWORD", "DATA_DIR", "CHANNELS_FILE", "HTTP_ADDR",
		"STREAM_WEBHOOK_URL", "REPORT_WEBHOOK_URL",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PollInterval != 15*time.Minute {
		t.Errorf("poll interval = %v, want 15m", cfg.PollInterval)
	}
	if cfg.Cooldown != 15*time.Minute {
		t.Errorf("cooldown = %v, want 15m", cfg.Cooldown)
	}
	if cfg.Keyword != "munchy" {
		t.Errorf("keyword = %q, want munchy", cfg.Keyword)
	}
	if cfg.DataDir != "data" || cfg.ChannelsFile != "channels.json" {
		t.Errorf("storage defaults: dir=%q file=%q", cfg.DataDir, cfg.ChannelsFile)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("http addr = %q", cfg.HTTPAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STREAM_CHECK_INTERVAL_MINUTES", "5")
	t.Setenv("ANNOUNCEMENT_COOLDOWN_MINUTES", "30")
	t.Setenv("STREAM_KEYWORD", "crunchy")
	t.Setenv("STREAM_WEBHOOK_URL", "https://discord.example/webhooks/1")
	t.Setenv("REPORT_WEBHOOK_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PollInterval != 5*time.Minute {
		t.Errorf("poll interval = %v", cfg.PollInterval)
	}
	if cfg.Cooldown != 30*time.Minute {
		t.Errorf("cooldown = %v", cfg.Cooldown)
	}
	if cfg.Keyword != "crunchy" {
		t.Errorf("keyword = %q", cfg.Keyword)
	}
	// Report webhook falls back to the stream webhook when unset.
	if cfg.ReportWebhookURL != cfg.StreamWebhookURL {
		t.Errorf("report webhook = %q, want fallback to %q", cfg.ReportWebhookURL, cfg.StreamWebhookURL)
	}
}

func TestMinutesEnvGarbage(t *testing.T) {
	t.Setenv("STREAM_CHECK_INTERVAL_MINUTES", "soon")
	if got := minutesEnv("STREAM_CHECK_INTERVAL_MINUTES", 15); got != 15*time.Minute {
		t.Errorf("garbage value should fall back to default, got %v", got)
	}
	t.Setenv("STREAM_CHECK_INTERVAL_MINUTES", "-3")
	if got := minutesEnv("STREAM_CHECK_INTERVAL_MINUTES", 15); got != 15*time.Minute {
		t.Errorf("negative value should fall back to default, got %v", got)
	}
}

func TestValidateHelpers(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateTwitchReady(); err == nil {
		t.Error("missing twitch creds should fail validation")
	}
	if err := cfg.ValidateYouTubeReady(); err == nil {
		t.Error("missing youtube key should fail validation")
	}
	if err := cfg.ValidateChatAnnouncerReady(); err == nil {
		t.Error("missing chat creds should fail validation")
	}

	cfg.TwitchClientID = "id"
	cfg.TwitchClientSecret = "secret"
	cfg.YouTubeAPIKey = "key"
	cfg.TwitchBotUsername = "bot"
	cfg.TwitchBotOAuthToken = "oauth:token"
	cfg.TwitchAnnounceChannel = "somechannel"
	if err := cfg.ValidateTwitchReady(); err != nil {
		t.Errorf("twitch validation: %v", err)
	}
	if err := cfg.ValidateYouTubeReady(); err != nil {
		t.Errorf("youtube validation: %v", err)
	}
	if err := cfg.ValidateChatAnnouncerReady(); err != nil {
		t.Errorf("chat validation: %v", err)
	}
}
