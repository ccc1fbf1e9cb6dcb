package youtubeapi

import (
	"context"
	"strings"
	"testing"

	"google.golang.org/api/option"

	"munchwatch/testutil"
)

const testChannelID = "UCxxxxxxxxxxxxxxxxxxxxxx"

func newTestService(t *testing.T, mock *testutil.MockYouTubeServer) *Service {
	t.Helper()
	svc, err := New(context.Background(), "test-api-key", option.WithEndpoint(mock.URL))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), ""); err == nil {
		t.Fatal("empty API key should be rejected")
	}
}

func TestLookupByID(t *testing.T) {
	mock := testutil.NewMockYouTubeServer(t)
	svc := newTestService(t, mock)
	mock.MockChannelResponse(testChannelID, "Somebody")

	id, err := svc.LookupByID(context.Background(), testChannelID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if id == nil || id.ChannelID != testChannelID || id.ChannelName != "Somebody" {
		t.Fatalf("identity = %+v", id)
	}
}

func TestLookupByHandleNoMatch(t *testing.T) {
	mock := testutil.NewMockYouTubeServer(t)
	svc := newTestService(t, mock)
	mock.MockEmptyChannelResponse()

	id, err := svc.LookupByHandle(context.Background(), "nosuchhandle")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if id != nil {
		t.Fatalf("no match should be (nil, nil), got %+v", id)
	}
}

func TestLookupByUsernameSendsForUsername(t *testing.T) {
	mock := testutil.NewMockYouTubeServer(t)
	svc := newTestService(t, mock)
	mock.MockChannelResponse(testChannelID, "Somebody")

	if _, err := svc.LookupByUsername(context.Background(), "somebody"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(mock.Requests) != 1 || !strings.Contains(mock.Requests[0], "forUsername=somebody") {
		t.Fatalf("requests = %v", mock.Requests)
	}
}

func TestSearchByText(t *testing.T) {
	mock := testutil.NewMockYouTubeServer(t)
	svc := newTestService(t, mock)
	mock.MockSearchChannelResponse(testChannelID, "Somebody")

	id, err := svc.SearchByText(context.Background(), "somebody streams")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if id == nil || id.ChannelID != testChannelID {
		t.Fatalf("identity = %+v", id)
	}
	if len(mock.Requests) != 1 || !strings.Contains(mock.Requests[0], "type=channel") {
		t.Fatalf("requests = %v", mock.Requests)
	}
}

func TestGetLiveStream(t *testing.T) {
	mock := testutil.NewMockYouTubeServer(t)
	svc := newTestService(t, mock)
	mock.MockSearchLiveResponse("vid123", "Munchy Stream", "2026-03-01T18:00:00Z")

	ls, err := svc.GetLiveStream(context.Background(), testChannelID)
	if err != nil {
		t.Fatalf("get live stream: %v", err)
	}
	if !ls.IsLive {
		t.Fatal("expected IsLive")
	}
	if ls.StreamURL != "https://www.youtube.com/watch?v=vid123" {
		t.Errorf("stream url = %q", ls.StreamURL)
	}
	if ls.Title != "Munchy Stream" || ls.StartedAt != "2026-03-01T18:00:00Z" {
		t.Errorf("live stream = %+v", ls)
	}
	if ls.ThumbnailURL == "" {
		t.Error("expected a thumbnail from the high-res slot")
	}
	if len(mock.Requests) != 1 || !strings.Contains(mock.Requests[0], "eventType=live") {
		t.Fatalf("requests = %v", mock.Requests)
	}
}

func TestGetLiveStreamOffline(t *testing.T) {
	mock := testutil.NewMockYouTubeServer(t)
	svc := newTestService(t, mock)
	mock.MockEmptySearchResponse()

	ls, err := svc.GetLiveStream(context.Background(), testChannelID)
	if err != nil {
		t.Fatalf("get live stream: %v", err)
	}
	if ls.IsLive {
		t.Fatal("offline channel must report IsLive=false")
	}
}
