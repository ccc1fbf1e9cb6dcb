// Package notify defines the notification sink the monitor and report jobs
// push formatted events into, with webhook and Twitch-chat implementations.
package notify

import "context"

// Discord-palette colors used to tag platforms in embeds.
const (
	ColorPurple = 0x9B59B6 // Twitch
	ColorRed    = 0xED4245 // YouTube
	ColorBlue   = 0x0099FF // reports
)

// Field is one name/value pair of an embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Payload is a structured message. Sinks decide how much of the structure
// they can render; the chat sink flattens it to one line.
type Payload struct {
	Content      string // optional plain text ahead of the embed
	Title        string
	URL          string
	Description  string
	Fields       []Field
	Color        int
	ThumbnailURL string
	Footer       string
}

// Sink posts a payload to a notification channel.
type Sink interface {
	Publish(ctx context.Context, p Payload) error
}

// Multi fans a payload out to several sinks; the first error is returned
// after all sinks were attempted.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, p Payload) error {
	var first error
	for _, s := range m {
		if err := s.Publish(ctx, p); err != nil && first == nil {
			first = err
		}
	}
	return first
}
