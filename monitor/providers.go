package monitor

import (
	"context"

	"munchwatch/twitchapi"
	"munchwatch/youtubeapi"
)

// LiveStatus is the transient result of one status query. StartedAt carries
// the provider's ISO-8601 timestamp verbatim.
type LiveStatus struct {
	IsLive       bool
	Title        string
	StartedAt    string
	StreamURL    string
	ThumbnailURL string
}

// StatusProvider answers "is this channel live right now" for one platform.
// Offline and not-found are ordinary (IsLive=false) results; errors mean the
// query itself failed and the channel is skipped for this cycle.
type StatusProvider interface {
	GetStatus(ctx context.Context, channelID string) (LiveStatus, error)
}

// TwitchProvider adapts the Helix client. The channel ID is the login name.
type TwitchProvider struct {
	Helix *twitchapi.HelixClient
}

func (p *TwitchProvider) GetStatus(ctx context.Context, login string) (LiveStatus, error) {
	streams, err := p.Helix.GetStreams(ctx, login)
	if err != nil {
		return LiveStatus{}, err
	}
	if len(streams) == 0 {
		return LiveStatus{}, nil
	}
	st := streams[0]
	return LiveStatus{
		IsLive:       true,
		Title:        st.Title,
		StartedAt:    st.StartedAt,
		StreamURL:    "https://www.twitch.tv/" + login,
		ThumbnailURL: twitchapi.ExpandThumbnail(st.ThumbnailURL),
	}, nil
}

// YouTubeProvider adapts the Data API service. The channel ID is the
// canonical "UC..." ID produced by registration.
type YouTubeProvider struct {
	Service *youtubeapi.Service
}

func (p *YouTubeProvider) GetStatus(ctx context.Context, channelID string) (LiveStatus, error) {
	live, err := p.Service.GetLiveStream(ctx, channelID)
	if err != nil {
		return LiveStatus{}, err
	}
	if !live.IsLive {
		return LiveStatus{}, nil
	}
	return LiveStatus{
		IsLive:       true,
		Title:        live.Title,
		StartedAt:    live.StartedAt,
		StreamURL:    live.StreamURL,
		ThumbnailURL: live.ThumbnailURL,
	}, nil
}
