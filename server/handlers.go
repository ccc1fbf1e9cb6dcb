package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"munchwatch/activity"
	"munchwatch/config"
	"munchwatch/monitor"
	"munchwatch/report"
	"munchwatch/resolver"
	"munchwatch/telemetry"
	"munchwatch/twitchapi"
)

// ChannelResolver normalizes a user-supplied channel reference into a
// canonical channel id plus display name.
type ChannelResolver interface {
	Resolve(ctx context.Context, raw string) (*resolver.Identity, error)
}

// TwitchDirectory verifies a Twitch login and yields its display name.
type TwitchDirectory interface {
	GetUser(ctx context.Context, login string) (*twitchapi.User, error)
}

// Handlers bundles the API's collaborators. Nil YouTube or Twitch means the
// corresponding platform's registration is unavailable (credentials missing).
type Handlers struct {
	Cfg       *config.Config
	Channels  *config.Store
	Activity  *activity.Store
	Monitor   *monitor.Monitor
	Reports   *report.Generator
	Providers map[config.Platform]monitor.StatusProvider
	YouTube   ChannelResolver
	Twitch    TwitchDirectory
}

func NewHandlers(cfg *config.Config, channels *config.Store, store *activity.Store, mon *monitor.Monitor, reports *report.Generator, providers map[config.Platform]monitor.StatusProvider) *Handlers {
	return &Handlers{
		Cfg:       cfg,
		Channels:  channels,
		Activity:  store,
		Monitor:   mon,
		Reports:   reports,
		Providers: providers,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// HandleHealthz responds to liveness probes. The process is healthy when the
// tracked-channel store is readable.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Channels.List(); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleStatus reports a monitoring snapshot: tracked-channel count, cooldown
// entries, keyword, and the last completed poll cycle.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	tracked, err := h.Channels.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "tracked channels unreadable: "+err.Error())
		return
	}
	last, res := h.Monitor.LastCycle()
	out := map[string]any{
		"trackedChannels": len(tracked),
		"cooldownEntries": h.Monitor.Cooldown.Len(),
		"keyword":         h.Cfg.Keyword,
		"pollInterval":    h.Cfg.PollInterval.String(),
	}
	if !last.IsZero() {
		out["lastCycleAt"] = last.UTC().Format(time.RFC3339)
		out["lastCycle"] = cycleSummary(res)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleChannels lists tracked channels, optionally filtered by ?owner=.
func (h *Handlers) HandleChannels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	tracked, err := h.Channels.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if owner := r.URL.Query().Get("owner"); owner != "" {
		tracked = config.ForOwner(tracked, owner)
	}
	writeJSON(w, http.StatusOK, map[string]any{"trackedChannels": tracked})
}

type trackRequest struct {
	Platform   string `json:"platform"`
	Identifier string `json:"identifier"`
	OwnerID    string `json:"ownerId"`
}

// HandleTrack registers a channel: the identifier is resolved to a canonical
// id, verified against the platform's directory, and persisted.
func (h *Handlers) HandleTrack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	platform := config.Platform(req.Platform)
	if !platform.Valid() {
		writeError(w, http.StatusBadRequest, "platform must be Twitch or YouTube")
		return
	}
	if strings.TrimSpace(req.Identifier) == "" || strings.TrimSpace(req.OwnerID) == "" {
		writeError(w, http.StatusBadRequest, "identifier and ownerId are required")
		return
	}

	ch := config.TrackedChannel{
		Platform:          platform,
		OwnerID:           req.OwnerID,
		OriginalReference: req.Identifier,
	}
	logger := telemetry.LoggerWithCorr(r.Context()).With(slog.String("component", "http"))

	switch platform {
	case config.PlatformTwitch:
		login, err := resolver.TwitchLogin(req.Identifier)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ch.ChannelID = login
		ch.ChannelName = login
		if h.Twitch != nil {
			user, err := h.Twitch.GetUser(r.Context(), login)
			if err != nil {
				logger.Warn("twitch user lookup failed", slog.String("login", login), slog.Any("err", err))
				writeError(w, http.StatusBadGateway, "twitch lookup failed: "+err.Error())
				return
			}
			if user == nil {
				writeError(w, http.StatusNotFound, "no Twitch channel found for "+login)
				return
			}
			ch.ChannelID = user.Login
			ch.ChannelName = user.DisplayName
		}
	case config.PlatformYouTube:
		if h.YouTube == nil {
			writeError(w, http.StatusServiceUnavailable, "YouTube API is not configured")
			return
		}
		identity, err := h.YouTube.Resolve(r.Context(), req.Identifier)
		switch {
		case errors.Is(err, resolver.ErrInvalidIdentifier):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, resolver.ErrNotFound):
			writeError(w, http.StatusNotFound, "no YouTube channel found for "+req.Identifier)
			return
		case err != nil:
			writeError(w, http.StatusBadGateway, "youtube lookup failed: "+err.Error())
			return
		}
		ch.ChannelID = identity.ChannelID
		ch.ChannelName = identity.ChannelName
	}

	if err := h.Channels.Add(ch); err != nil {
		if errors.Is(err, config.ErrDuplicate) {
			writeError(w, http.StatusConflict, "channel is already tracked for this owner")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("channel tracked",
		slog.String("platform", string(ch.Platform)),
		slog.String("channel_id", ch.ChannelID),
		slog.String("owner", ch.OwnerID))
	writeJSON(w, http.StatusCreated, ch)
}

type untrackRequest struct {
	Platform  string `json:"platform"`
	ChannelID string `json:"channelId"`
	OwnerID   string `json:"ownerId"`
}

// HandleUntrack removes a tracked channel. The activity log is kept; only the
// tracking entry goes away.
func (h *Handlers) HandleUntrack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req untrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	platform := config.Platform(req.Platform)
	if !platform.Valid() || req.ChannelID == "" || req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "platform, channelId, and ownerId are required")
		return
	}
	removed, err := h.Channels.Remove(platform, req.ChannelID, req.OwnerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "channel is not tracked for this owner")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "untracked"})
}

// HandleCheck triggers a manual poll cycle, bypassing the cooldown. With
// ?owner= only that owner's channels are checked.
func (h *Handlers) HandleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var res monitor.CycleResult
	if owner := r.URL.Query().Get("owner"); owner != "" {
		res = h.Monitor.RunCycleForOwner(r.Context(), owner)
	} else {
		res = h.Monitor.RunCycle(r.Context(), true)
	}
	writeJSON(w, http.StatusOK, cycleSummary(res))
}

// HandleReport generates the monthly report on demand. Defaults to the
// previous calendar month; override with ?year= and ?month=.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	prev := time.Now().AddDate(0, -1, 0)
	year := parseIntQuery(r, "year", prev.Year())
	month := time.Month(parseIntQuery(r, "month", int(prev.Month())))

	msg, err := h.Reports.Generate(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// HandleActivity returns one owner's month and all-time counts plus current
// live status. Requires ?owner=; defaults to the current month.
func (h *Handlers) HandleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}
	now := time.Now()
	year := parseIntQuery(r, "year", now.Year())
	month := time.Month(parseIntQuery(r, "month", int(now.Month())))
	if month < time.January || month > time.December {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	sum, err := h.Reports.OwnerSummaryFor(r.Context(), h.Providers, owner, year, month)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func cycleSummary(res monitor.CycleResult) map[string]any {
	out := map[string]any{
		"checked":   res.Checked,
		"live":      len(res.Events),
		"announced": res.Announced,
		"errors":    res.Errors,
	}
	if res.Note != "" {
		out["note"] = res.Note
	}
	return out
}

// parseIntQuery extracts an int parameter from the query string with a default value.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
