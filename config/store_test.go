package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func testChannel() TrackedChannel {
	return TrackedChannel{
		Platform:          PlatformTwitch,
		ChannelID:         "somebody",
		ChannelName:       "Somebody",
		OwnerID:           "owner1",
		OriginalReference: "https://www.twitch.tv/somebody",
	}
}

func TestStoreAddListRemove(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "data", "channels.json"))

	// Missing file reads as empty.
	got, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("fresh store should be empty, got %+v", got)
	}

	if err := s.Add(testChannel()); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err = s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ChannelID != "somebody" {
		t.Fatalf("list after add: %+v", got)
	}

	removed, err := s.Remove(PlatformTwitch, "somebody", "owner1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !removed {
		t.Fatal("remove should report true for an existing channel")
	}
	if got, _ := s.List(); len(got) != 0 {
		t.Fatalf("list after remove: %+v", got)
	}

	removed, err = s.Remove(PlatformTwitch, "somebody", "owner1")
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if removed {
		t.Fatal("removing a missing channel should report false")
	}
}

func TestStoreAddDuplicate(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "channels.json"))
	if err := s.Add(testChannel()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(testChannel()); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}

	// Same channel for a different owner is a distinct binding.
	other := testChannel()
	other.OwnerID = "owner2"
	if err := s.Add(other); err != nil {
		t.Fatalf("add for second owner: %v", err)
	}
}

func TestStoreAddValidation(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "channels.json"))
	bad := testChannel()
	bad.Platform = Platform("MySpace")
	if err := s.Add(bad); err == nil {
		t.Error("unknown platform should be rejected")
	}
	bad = testChannel()
	bad.ChannelID = ""
	if err := s.Add(bad); err == nil {
		t.Error("empty channelId should be rejected")
	}
}

func TestStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	if err := NewStore(path).Add(testChannel()); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := NewStore(path).List()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(got) != 1 || got[0].OriginalReference != "https://www.twitch.tv/somebody" {
		t.Fatalf("reloaded list: %+v", got)
	}
}

func TestForOwner(t *testing.T) {
	a := testChannel()
	b := testChannel()
	b.OwnerID = "owner2"
	c := testChannel()
	c.ChannelID = "another"

	got := ForOwner([]TrackedChannel{a, b, c}, "owner1")
	if len(got) != 2 {
		t.Fatalf("ForOwner = %+v, want 2 channels", got)
	}
	if got := ForOwner([]TrackedChannel{a, b, c}, "nobody"); len(got) != 0 {
		t.Fatalf("unknown owner should yield nothing, got %+v", got)
	}
}
