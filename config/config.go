// Package config loads environment variables and provides a typed Config used across
// the service, plus the JSON-file store of tracked channels. It applies sensible
// defaults so the binary can run locally with minimal setup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Platform identifies a supported streaming platform.
type Platform string

const (
	PlatformTwitch  Platform = "Twitch"
	PlatformYouTube Platform = "YouTube"
)

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	return p == PlatformTwitch || p == PlatformYouTube
}

// TrackedChannel is one registered (platform, channel, owner) binding. Created by
// registration and immutable afterwards except for removal.
type TrackedChannel struct {
	Platform          Platform `json:"platform"`
	ChannelID         string   `json:"channelId"`
	ChannelName       string   `json:"channelName"`
	OwnerID           string   `json:"ownerId"`
	OriginalReference string   `json:"originalReference,omitempty"`
}

type Config struct {
	// Twitch (app credentials for Helix status queries)
	TwitchClientID     string
	TwitchClientSecret string

	// Optional Twitch chat announcer
	TwitchBotUsername     string
	TwitchBotOAuthToken   string
	TwitchAnnounceChannel string

	// YouTube Data API
	YouTubeAPIKey string

	// Storage
	DataDir      string
	ChannelsFile string

	// Polling
	PollInterval time.Duration
	Cooldown     time.Duration
	Keyword      string

	// Sinks
	StreamWebhookURL string
	ReportWebhookURL string

	// HTTP
	HTTPAddr string
}

// Load reads environment variables and applies defaults. Missing optional
// variables disable features (e.g., an empty YOUTUBE_API_KEY disables YouTube
// status checks); use the Validate* helpers when a feature is required.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.TwitchClientID = os.Getenv("TWITCH_CLIENT_ID")
	cfg.TwitchClientSecret = os.Getenv("TWITCH_CLIENT_SECRET")
	cfg.TwitchBotUsername = os.Getenv("TWITCH_BOT_USERNAME")
	cfg.TwitchBotOAuthToken = os.Getenv("TWITCH_OAUTH_TOKEN")
	cfg.TwitchAnnounceChannel = os.Getenv("TWITCH_ANNOUNCE_CHANNEL")
	cfg.YouTubeAPIKey = os.Getenv("YOUTUBE_API_KEY")

	cfg.DataDir = os.Getenv("DATA_DIR")
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	cfg.ChannelsFile = os.Getenv("CHANNELS_FILE")
	if cfg.ChannelsFile == "" {
		cfg.ChannelsFile = "channels.json"
	}

	cfg.PollInterval = minutesEnv("STREAM_CHECK_INTERVAL_MINUTES", 15)
	cfg.Cooldown = minutesEnv("ANNOUNCEMENT_COOLDOWN_MINUTES", 15)

	cfg.Keyword = os.Getenv("STREAM_KEYWORD")
	if cfg.Keyword == "" {
		cfg.Keyword = "munchy"
	}

	cfg.StreamWebhookURL = os.Getenv("STREAM_WEBHOOK_URL")
	cfg.ReportWebhookURL = os.Getenv("REPORT_WEBHOOK_URL")
	if cfg.ReportWebhookURL == "" {
		cfg.ReportWebhookURL = cfg.StreamWebhookURL
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	return cfg, nil
}

// minutesEnv reads an integer-minutes env var, falling back to def on absence
// or garbage.
func minutesEnv(key string, def int) time.Duration {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return time.Duration(def) * time.Minute
}

// ValidateTwitchReady checks required fields for Twitch status queries.
func (c *Config) ValidateTwitchReady() error {
	if c.TwitchClientID == "" || c.TwitchClientSecret == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CLIENT_ID, TWITCH_CLIENT_SECRET")
	}
	return nil
}

// ValidateYouTubeReady checks required fields for YouTube status queries and
// identifier resolution.
func (c *Config) ValidateYouTubeReady() error {
	if c.YouTubeAPIKey == "" {
		return fmt.Errorf("missing youtube env: require YOUTUBE_API_KEY")
	}
	return nil
}

// ValidateChatAnnouncerReady checks required fields for the Twitch chat sink.
func (c *Config) ValidateChatAnnouncerReady() error {
	if c.TwitchAnnounceChannel == "" || c.TwitchBotUsername == "" || c.TwitchBotOAuthToken == "" {
		return fmt.Errorf("missing twitch chat env: require TWITCH_ANNOUNCE_CHANNEL, TWITCH_BOT_USERNAME, TWITCH_OAUTH_TOKEN")
	}
	return nil
}
