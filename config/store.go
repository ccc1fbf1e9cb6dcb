package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrDuplicate is returned by Add when the same (platform, channelId, ownerId)
// binding is already tracked.
var ErrDuplicate = errors.New("channel already tracked")

// Store persists the tracked-channel list as a JSON file. Writes replace the
// whole file atomically (temp file + rename) so a crash mid-write leaves the
// previous list intact.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

type channelsFile struct {
	TrackedChannels []TrackedChannel `json:"trackedChannels"`
}

// List returns all tracked channels. A missing file yields an empty list.
func (s *Store) List() ([]TrackedChannel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]TrackedChannel, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read channels file: %w", err)
	}
	var f channelsFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse channels file %s: %w", s.path, err)
	}
	return f.TrackedChannels, nil
}

func (s *Store) save(channels []TrackedChannel) error {
	b, err := json.MarshalIndent(channelsFile{TrackedChannels: channels}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode channels file: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir channels dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write channels file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace channels file: %w", err)
	}
	return nil
}

// Add registers a new tracked channel, rejecting duplicates on
// (platform, channelId, ownerId).
func (s *Store) Add(ch TrackedChannel) error {
	if !ch.Platform.Valid() {
		return fmt.Errorf("unsupported platform %q", ch.Platform)
	}
	if ch.ChannelID == "" || ch.OwnerID == "" {
		return errors.New("channelId and ownerId are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	channels, err := s.load()
	if err != nil {
		return err
	}
	for _, c := range channels {
		if c.Platform == ch.Platform && c.ChannelID == ch.ChannelID && c.OwnerID == ch.OwnerID {
			return ErrDuplicate
		}
	}
	return s.save(append(channels, ch))
}

// Remove deletes a tracked channel; it reports whether anything was removed.
func (s *Store) Remove(platform Platform, channelID, ownerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	channels, err := s.load()
	if err != nil {
		return false, err
	}
	kept := channels[:0]
	removed := false
	for _, c := range channels {
		if c.Platform == platform && c.ChannelID == channelID && c.OwnerID == ownerID {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	if !removed {
		return false, nil
	}
	return true, s.save(kept)
}

// ForOwner returns the subset of channels tracked for one owner.
func ForOwner(channels []TrackedChannel, ownerID string) []TrackedChannel {
	var out []TrackedChannel
	for _, c := range channels {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out
}
