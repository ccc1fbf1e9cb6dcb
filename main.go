// Command munchwatch is the stream tracker entrypoint. It:
//   - Loads configuration and initializes structured logging.
//   - Builds platform clients for whichever credentials are present
//     (Twitch Helix, YouTube Data API) and notification sinks
//     (Discord-compatible webhook, optional Twitch chat announcer).
//   - Starts background jobs: the poll-cycle scheduler and the daily
//     monthly-report check.
//   - Exposes an HTTP server with /healthz, /status, /metrics, and the
//     tracking/check/report API.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // G108: pprof endpoints enabled only when ENABLE_PPROF=1
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"munchwatch/activity"
	"munchwatch/config"
	"munchwatch/monitor"
	"munchwatch/notify"
	"munchwatch/report"
	"munchwatch/resolver"
	"munchwatch/server"
	"munchwatch/telemetry"
	"munchwatch/twitchapi"
	"munchwatch/youtubeapi"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", map[bool]string{true: "json", false: "text"}[format == "json"]))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("munchwatch", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	channels := config.NewStore(filepath.Join(cfg.DataDir, cfg.ChannelsFile))
	store := activity.NewStore(cfg.DataDir)

	// Platform clients, per available credentials. A missing credential
	// disables that platform's checks rather than failing startup.
	providers := map[config.Platform]monitor.StatusProvider{}
	var helix *twitchapi.HelixClient
	if err := cfg.ValidateTwitchReady(); err == nil {
		helix = &twitchapi.HelixClient{
			AppTokenSource: &twitchapi.TokenSource{
				ClientID:     cfg.TwitchClientID,
				ClientSecret: cfg.TwitchClientSecret,
			},
			ClientID: cfg.TwitchClientID,
		}
		providers[config.PlatformTwitch] = &monitor.TwitchProvider{Helix: helix}

		// Best-effort token fetch so credential problems surface at startup.
		tctx, cancel := context.WithTimeout(ctx, 8*time.Second)
		if tok, err := helix.AppTokenSource.Get(tctx); err != nil {
			slog.Warn("twitch app token fetch failed", slog.Any("err", err))
		} else if len(tok) > 6 {
			slog.Info("twitch app token acquired", slog.String("tail", "***"+tok[len(tok)-6:]))
		}
		cancel()
	} else {
		slog.Info("twitch checks disabled", slog.Any("reason", err))
	}

	var ytSvc *youtubeapi.Service
	if err := cfg.ValidateYouTubeReady(); err == nil {
		ytSvc, err = youtubeapi.New(ctx, cfg.YouTubeAPIKey)
		if err != nil {
			slog.Error("youtube client init failed", slog.Any("err", err))
			os.Exit(1)
		}
		providers[config.PlatformYouTube] = &monitor.YouTubeProvider{Service: ytSvc}
	} else {
		slog.Info("youtube checks disabled", slog.Any("reason", err))
	}

	// Notification sinks
	var sinks notify.Multi
	if cfg.StreamWebhookURL != "" {
		sinks = append(sinks, &notify.WebhookSink{URL: cfg.StreamWebhookURL})
	}
	if err := cfg.ValidateChatAnnouncerReady(); err == nil {
		sinks = append(sinks, &notify.ChatSink{
			Username:   cfg.TwitchBotUsername,
			OAuthToken: cfg.TwitchBotOAuthToken,
			Channel:    cfg.TwitchAnnounceChannel,
		})
	}
	var sink notify.Sink
	if len(sinks) > 0 {
		sink = sinks
	} else {
		slog.Warn("no notification sink configured - live detections will be logged and recorded but not announced")
	}

	mon := monitor.New(cfg, channels, store, sink, providers)

	var reportSink notify.Sink
	if cfg.ReportWebhookURL != "" {
		reportSink = &notify.WebhookSink{URL: cfg.ReportWebhookURL}
	}
	reports := report.New(channels, store, reportSink)

	// Background jobs
	go mon.StartPolling(ctx, cfg.PollInterval)
	go reports.StartMonthlyJob(ctx)

	// Enable pprof profiling endpoints in debug mode (ENABLE_PPROF=1)
	if os.Getenv("ENABLE_PPROF") == "1" {
		pprofAddr := os.Getenv("PPROF_ADDR")
		if pprofAddr == "" {
			pprofAddr = "localhost:6060"
		}
		go func() {
			slog.Info("pprof profiling enabled", slog.String("addr", pprofAddr))
			srv := &http.Server{
				Addr:              pprofAddr,
				Handler:           nil, // default mux exposes /debug/pprof
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("pprof server error", slog.Any("err", err))
			}
		}()
	}

	// HTTP server (health/status/metrics + tracking API)
	handlers := server.NewHandlers(cfg, channels, store, mon, reports, providers)
	if helix != nil {
		handlers.Twitch = helix
	}
	if ytSvc != nil {
		handlers.YouTube = resolver.NewYouTube(ytSvc)
	}
	go func() {
		if err := server.Start(ctx, handlers, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}
