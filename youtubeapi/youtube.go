// Package youtubeapi wraps the YouTube Data API v3 for channel directory
// lookups (id / handle / legacy username / free-text search) and live-stream
// status queries, authenticated with an API key.
package youtubeapi

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"munchwatch/resolver"
)

// Service is a thin directory + live-status client. It implements
// resolver.Directory.
type Service struct {
	yt *yt.Service
}

// New builds a Service with the given API key. Extra options (e.g. a test
// endpoint) are appended after the key.
func New(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Service, error) {
	if apiKey == "" {
		return nil, errors.New("youtube api key required")
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := yt.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return &Service{yt: svc}, nil
}

func identityFromChannels(resp *yt.ChannelListResponse) *resolver.Identity {
	if resp == nil || len(resp.Items) == 0 {
		return nil
	}
	ch := resp.Items[0]
	if ch.Snippet == nil {
		return nil
	}
	return &resolver.Identity{ChannelID: ch.Id, ChannelName: ch.Snippet.Title}
}

// LookupByID confirms a canonical "UC..." channel ID and fetches its title.
func (s *Service) LookupByID(ctx context.Context, id string) (*resolver.Identity, error) {
	resp, err := s.yt.Channels.List([]string{"snippet"}).Id(id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("channels.list id=%s: %w", id, err)
	}
	return identityFromChannels(resp), nil
}

// LookupByHandle resolves an "@handle" (without the @).
func (s *Service) LookupByHandle(ctx context.Context, handle string) (*resolver.Identity, error) {
	resp, err := s.yt.Channels.List([]string{"snippet"}).ForHandle(handle).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("channels.list forHandle=%s: %w", handle, err)
	}
	return identityFromChannels(resp), nil
}

// LookupByUsername resolves a legacy username or custom-URL name.
func (s *Service) LookupByUsername(ctx context.Context, username string) (*resolver.Identity, error) {
	resp, err := s.yt.Channels.List([]string{"snippet"}).ForUsername(username).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("channels.list forUsername=%s: %w", username, err)
	}
	return identityFromChannels(resp), nil
}

// SearchByText falls back to a generic channel-typed search and takes the
// first result.
func (s *Service) SearchByText(ctx context.Context, query string) (*resolver.Identity, error) {
	resp, err := s.yt.Search.List([]string{"snippet"}).Q(query).Type("channel").MaxResults(1).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search.list q=%s: %w", query, err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}
	item := resp.Items[0]
	if item.Id == nil || item.Snippet == nil {
		return nil, nil
	}
	return &resolver.Identity{ChannelID: item.Id.ChannelId, ChannelName: item.Snippet.Title}, nil
}

// LiveStream is the result of a live-status query.
type LiveStream struct {
	IsLive       bool
	Title        string
	StartedAt    string
	StreamURL    string
	ThumbnailURL string
	VideoID      string
}

// GetLiveStream reports whether the channel currently has a live broadcast.
// An offline channel is an ordinary (IsLive=false) result, not an error.
func (s *Service) GetLiveStream(ctx context.Context, channelID string) (LiveStream, error) {
	resp, err := s.yt.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		EventType("live").
		Type("video").
		Context(ctx).Do()
	if err != nil {
		return LiveStream{}, fmt.Errorf("live search channelId=%s: %w", channelID, err)
	}
	if len(resp.Items) == 0 {
		return LiveStream{}, nil
	}
	item := resp.Items[0]
	if item.Id == nil || item.Snippet == nil {
		return LiveStream{}, nil
	}
	out := LiveStream{
		IsLive:    true,
		Title:     item.Snippet.Title,
		StartedAt: item.Snippet.PublishedAt,
		VideoID:   item.Id.VideoId,
		StreamURL: "https://www.youtube.com/watch?v=" + item.Id.VideoId,
	}
	if t := item.Snippet.Thumbnails; t != nil {
		switch {
		case t.High != nil:
			out.ThumbnailURL = t.High.Url
		case t.Medium != nil:
			out.ThumbnailURL = t.Medium.Url
		case t.Default != nil:
			out.ThumbnailURL = t.Default.Url
		}
	}
	return out, nil
}
