// Package activity is the append-only log of detected live sessions. Each
// (ownerId, platform, channelId) triple gets one JSON file holding an array of
// sessions in insertion order; appends are idempotent on the
// (streamUrl, startedAt) pair and reads degrade to an empty log on any failure
// so counting never breaks on a corrupt or missing file.
package activity

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"munchwatch/config"
)

// Session is one recorded live occurrence. StartedAt is kept as the verbatim
// ISO-8601 string the provider returned: session identity is string equality
// on (StreamURL, StartedAt), so normalizing it would change dedup behavior.
type Session struct {
	StreamURL string `json:"streamUrl"`
	StartedAt string `json:"startedAt"`
	Title     string `json:"title"`
}

// Store reads and writes per-triple session logs under Dir.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) logPath(ownerID string, platform config.Platform, channelID string) string {
	return filepath.Join(s.Dir, ownerID, fmt.Sprintf("%s_%s.json", platform, channelID))
}

// Read returns the session log for one triple in insertion order. It never
// fails: a missing, unreadable, or structurally invalid file yields an empty
// log (corruption is logged, not propagated).
func (s *Store) Read(ownerID string, platform config.Platform, channelID string) []Session {
	path := s.logPath(ownerID, platform, channelID)
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("activity log unreadable", slog.String("path", path), slog.Any("err", err))
		}
		return nil
	}
	var sessions []Session
	if err := json.Unmarshal(b, &sessions); err != nil {
		slog.Warn("activity log invalid, treating as empty", slog.String("path", path), slog.Any("err", err))
		return nil
	}
	return sessions
}

// Append records a session for the triple unless an identical
// (streamUrl, startedAt) pair is already logged. It reports whether a new
// record was written. A failed write leaves the previous file untouched and
// returns added=false along with the error.
func (s *Store) Append(ownerID string, platform config.Platform, channelID string, sess Session) (bool, error) {
	if ownerID == "" || channelID == "" || !platform.Valid() {
		return false, fmt.Errorf("invalid activity key: owner=%q platform=%q channel=%q", ownerID, platform, channelID)
	}
	sessions := s.Read(ownerID, platform, channelID)
	for _, existing := range sessions {
		if existing.StreamURL == sess.StreamURL && existing.StartedAt == sess.StartedAt {
			return false, nil
		}
	}
	sessions = append(sessions, sess)

	path := s.logPath(ownerID, platform, channelID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("mkdir activity dir: %w", err)
	}
	b, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode activity log: %w", err)
	}
	// Full-file replace via temp+rename so a crash mid-write cannot corrupt
	// the durable log.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return false, fmt.Errorf("write activity log: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return false, fmt.Errorf("replace activity log: %w", err)
	}
	return true, nil
}

// CountAll returns the all-time session count for one triple.
func (s *Store) CountAll(ownerID string, platform config.Platform, channelID string) int {
	return len(s.Read(ownerID, platform, channelID))
}

// CountInMonth returns how many of the triple's sessions started within the
// given calendar month (first instant through last instant, inclusive).
func (s *Store) CountInMonth(ownerID string, platform config.Platform, channelID string, year int, month time.Month) int {
	return CountInMonth(s.Read(ownerID, platform, channelID), year, month)
}

// CountInMonth counts sessions whose StartedAt falls within the calendar
// month. Sessions with an unparseable timestamp are skipped.
func CountInMonth(sessions []Session, year int, month time.Month) int {
	n := 0
	for _, sess := range sessions {
		t, err := time.Parse(time.RFC3339, sess.StartedAt)
		if err != nil {
			continue
		}
		if t.Year() == year && t.Month() == month {
			n++
		}
	}
	return n
}
