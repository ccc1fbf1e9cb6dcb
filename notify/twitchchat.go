package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"
)

// ChatSink announces payloads as a single line in a Twitch chat channel.
// Connections are short-lived: connect, say, disconnect.
type ChatSink struct {
	Username   string
	OAuthToken string
	Channel    string

	// newClient allows tests to substitute the IRC client.
	newClient func() chatClient
}

type chatClient interface {
	OnConnect(func())
	Join(channels ...string)
	Say(channel, message string)
	Connect() error
	Disconnect() error
}

func (s *ChatSink) client() chatClient {
	if s.newClient != nil {
		return s.newClient()
	}
	return twitch.NewClient(s.Username, s.OAuthToken)
}

// Publish flattens the payload to one chat line and sends it.
func (s *ChatSink) Publish(ctx context.Context, p Payload) error {
	if s.Channel == "" {
		return fmt.Errorf("chat sink: no channel configured")
	}
	line := flatten(p)

	client := s.client()
	done := make(chan error, 1)
	client.OnConnect(func() {
		client.Say(s.Channel, line)
		// Give the outgoing message a moment to flush before disconnecting.
		go func() {
			time.Sleep(time.Second)
			_ = client.Disconnect()
		}()
	})
	client.Join(s.Channel)
	go func() {
		done <- client.Connect()
	}()

	select {
	case <-ctx.Done():
		_ = client.Disconnect()
		return ctx.Err()
	case err := <-done:
		if err != nil && !errors.Is(err, twitch.ErrClientDisconnected) {
			return fmt.Errorf("twitch chat connect: %w", err)
		}
		return nil
	}
}

func flatten(p Payload) string {
	parts := make([]string, 0, 4)
	if p.Content != "" {
		parts = append(parts, p.Content)
	}
	if p.Title != "" {
		parts = append(parts, p.Title)
	}
	if p.URL != "" {
		parts = append(parts, p.URL)
	}
	if p.Footer != "" {
		parts = append(parts, "("+p.Footer+")")
	}
	return strings.Join(parts, " ")
}
