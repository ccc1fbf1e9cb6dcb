package twitchapi

import (
	"context"
	"net/http"
	"testing"

	"munchwatch/testutil"
)

func newTestClient(t *testing.T, mock *testutil.MockTwitchServer) *HelixClient {
	t.Helper()
	mock.MockOAuthTokenResponse("test-app-token", 3600)
	return &HelixClient{
		AppTokenSource: &TokenSource{
			ClientID:     "cid",
			ClientSecret: "secret",
			TokenURL:     mock.TokenURL(),
		},
		ClientID: "cid",
		BaseURL:  mock.URL,
	}
}

func TestGetUser(t *testing.T) {
	mock := testutil.NewMockTwitchServer(t)
	hc := newTestClient(t, mock)
	mock.MockUserResponse("123", "somebody", "Somebody")

	user, err := hc.GetUser(context.Background(), "somebody")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user == nil || user.ID != "123" || user.Login != "somebody" || user.DisplayName != "Somebody" {
		t.Fatalf("user = %+v", user)
	}
}

func TestGetUserNotFound(t *testing.T) {
	mock := testutil.NewMockTwitchServer(t)
	hc := newTestClient(t, mock)
	mock.MockEmptyUserResponse()

	user, err := hc.GetUser(context.Background(), "nosuchlogin")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user != nil {
		t.Fatalf("no match should be (nil, nil), got %+v", user)
	}
}

func TestGetUserSendsAuthHeaders(t *testing.T) {
	mock := testutil.NewMockTwitchServer(t)
	hc := newTestClient(t, mock)

	var gotAuth, gotClientID string
	mock.Handlers["/users"] = func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotClientID = r.Header.Get("Client-Id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}

	if _, err := hc.GetUser(context.Background(), "somebody"); err != nil {
		t.Fatalf("get user: %v", err)
	}
	if gotAuth != "Bearer test-app-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotClientID != "cid" {
		t.Errorf("Client-Id = %q", gotClientID)
	}
}

func TestGetStreams(t *testing.T) {
	mock := testutil.NewMockTwitchServer(t)
	hc := newTestClient(t, mock)
	mock.MockStreamsResponse([]map[string]interface{}{
		{
			"title":         "Munchy Monday!",
			"started_at":    "2026-03-01T18:00:00Z",
			"user_login":    "somebody",
			"user_name":     "Somebody",
			"thumbnail_url": "https://static-cdn.jtvnw.net/previews-ttv/live_user_somebody-{width}x{height}.jpg",
		},
	})

	streams, err := hc.GetStreams(context.Background(), "somebody")
	if err != nil {
		t.Fatalf("get streams: %v", err)
	}
	if len(streams) != 1 {
		t.Fatalf("streams = %+v", streams)
	}
	st := streams[0]
	if st.Title != "Munchy Monday!" || st.StartedAt != "2026-03-01T18:00:00Z" {
		t.Errorf("stream = %+v", st)
	}
}

func TestGetStreamsOffline(t *testing.T) {
	mock := testutil.NewMockTwitchServer(t)
	hc := newTestClient(t, mock)
	mock.MockStreamsResponse(nil)

	streams, err := hc.GetStreams(context.Background(), "somebody")
	if err != nil {
		t.Fatalf("get streams: %v", err)
	}
	if len(streams) != 0 {
		t.Fatalf("offline channel should yield no streams, got %+v", streams)
	}
}

func TestGetStreamsServerError(t *testing.T) {
	mock := testutil.NewMockTwitchServer(t)
	hc := newTestClient(t, mock)
	mock.Handlers["/streams"] = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}

	if _, err := hc.GetStreams(context.Background(), "somebody"); err == nil {
		t.Fatal("a non-200 response should surface as an error")
	}
}

func TestExpandThumbnail(t *testing.T) {
	in := "https://static-cdn.jtvnw.net/previews-ttv/live_user_somebody-{width}x{height}.jpg"
	want := "https://static-cdn.jtvnw.net/previews-ttv/live_user_somebody-1920x1080.jpg"
	if got := ExpandThumbnail(in); got != want {
		t.Errorf("ExpandThumbnail = %q, want %q", got, want)
	}
	// Untemplated URLs pass through unchanged.
	if got := ExpandThumbnail(want); got != want {
		t.Errorf("ExpandThumbnail(%q) = %q", want, got)
	}
}
