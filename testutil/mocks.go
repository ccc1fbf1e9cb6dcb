// Package testutil provides mock upstream API servers for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// MockTwitchServer mocks the Twitch OAuth and Helix API endpoints.
type MockTwitchServer struct {
	*httptest.Server
	Handlers map[string]http.HandlerFunc
}

// NewMockTwitchServer creates a new mock Twitch API server
func NewMockTwitchServer(t *testing.T) *MockTwitchServer {
	t.Helper()
	m := &MockTwitchServer{
		Handlers: make(map[string]http.HandlerFunc),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := m.Handlers[r.URL.Path]; ok {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(m.Close)
	return m
}

// TokenURL is the mock's OAuth client-credentials endpoint.
func (m *MockTwitchServer) TokenURL() string { return m.URL + "/oauth2/token" }

// MockOAuthTokenResponse adds a handler for the OAuth token endpoint
func (m *MockTwitchServer) MockOAuthTokenResponse(accessToken string, expiresIn int) {
	m.Handlers["/oauth2/token"] = func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"access_token": accessToken,
			"expires_in":   expiresIn,
			"token_type":   "bearer",
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}
}

// MockUserResponse adds a handler for the /users endpoint
func (m *MockTwitchServer) MockUserResponse(userID, login, displayName string) {
	m.Handlers["/users"] = func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"data": []map[string]string{
				{"id": userID, "login": login, "display_name": displayName},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}
}

// MockEmptyUserResponse makes /users return no match.
func (m *MockTwitchServer) MockEmptyUserResponse() {
	m.Handlers["/users"] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}
}

// MockStreamsResponse adds a handler for the /streams endpoint
func (m *MockTwitchServer) MockStreamsResponse(streams []map[string]interface{}) {
	m.Handlers["/streams"] = func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"data": streams,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}
}

// MockYouTubeServer mocks the YouTube Data API v3 channels/search endpoints.
// Route keys are the trailing path segment ("channels", "search") so the mock
// works regardless of how the client joins its base path.
type MockYouTubeServer struct {
	*httptest.Server
	Handlers map[string]http.HandlerFunc
	// Requests records the (segment, raw query) of every call, in order.
	Requests []string
}

// NewMockYouTubeServer creates a new mock YouTube Data API server
func NewMockYouTubeServer(t *testing.T) *MockYouTubeServer {
	t.Helper()
	m := &MockYouTubeServer{
		Handlers: make(map[string]http.HandlerFunc),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		segs := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		key := segs[len(segs)-1]
		m.Requests = append(m.Requests, key+"?"+r.URL.RawQuery)
		if handler, ok := m.Handlers[key]; ok {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(m.Close)
	return m
}

// MockChannelResponse makes /channels return one channel for any lookup.
func (m *MockYouTubeServer) MockChannelResponse(channelID, title string) {
	m.Handlers["channels"] = func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"items": []map[string]interface{}{
				{
					"id":      channelID,
					"snippet": map[string]string{"title": title},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}
}

// MockEmptyChannelResponse makes /channels return no items.
func (m *MockYouTubeServer) MockEmptyChannelResponse() {
	m.Handlers["channels"] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}
}

// MockSearchChannelResponse makes /search return one channel result.
func (m *MockYouTubeServer) MockSearchChannelResponse(channelID, title string) {
	m.Handlers["search"] = func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"items": []map[string]interface{}{
				{
					"id":      map[string]string{"kind": "youtube#channel", "channelId": channelID},
					"snippet": map[string]string{"title": title},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}
}

// MockSearchLiveResponse makes /search return one live video result.
func (m *MockYouTubeServer) MockSearchLiveResponse(videoID, title, publishedAt string) {
	m.Handlers["search"] = func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"items": []map[string]interface{}{
				{
					"id": map[string]string{"kind": "youtube#video", "videoId": videoID},
					"snippet": map[string]interface{}{
						"title":       title,
						"publishedAt": publishedAt,
						"thumbnails": map[string]interface{}{
							"high": map[string]string{"url": "https://i.ytimg.com/vi/" + videoID + "/hqdefault_live.jpg"},
						},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}
}

// MockEmptySearchResponse makes /search return no items.
func (m *MockYouTubeServer) MockEmptySearchResponse() {
	m.Handlers["search"] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}
}
