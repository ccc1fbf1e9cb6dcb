package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// WebhookSink posts payloads as Discord-compatible webhook embeds.
type WebhookSink struct {
	URL        string
	HTTPClient *http.Client
}

func (w *WebhookSink) http() *http.Client {
	if w.HTTPClient != nil {
		return w.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

type webhookEmbed struct {
	Title       string           `json:"title,omitempty"`
	URL         string           `json:"url,omitempty"`
	Description string           `json:"description,omitempty"`
	Color       int              `json:"color,omitempty"`
	Fields      []webhookField   `json:"fields,omitempty"`
	Thumbnail   *webhookMediaRef `json:"thumbnail,omitempty"`
	Footer      *webhookFooter   `json:"footer,omitempty"`
	Timestamp   string           `json:"timestamp,omitempty"`
}

type webhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookMediaRef struct {
	URL string `json:"url"`
}

type webhookFooter struct {
	Text string `json:"text"`
}

type webhookBody struct {
	Content string         `json:"content,omitempty"`
	Embeds  []webhookEmbed `json:"embeds"`
}

// Publish sends the payload as a single embed. Any non-2xx response is an
// error; the caller decides whether to retry on a later cycle.
func (w *WebhookSink) Publish(ctx context.Context, p Payload) error {
	if w.URL == "" {
		return fmt.Errorf("webhook sink: no URL configured")
	}
	embed := webhookEmbed{
		Title:       p.Title,
		URL:         p.URL,
		Description: p.Description,
		Color:       p.Color,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, f := range p.Fields {
		embed.Fields = append(embed.Fields, webhookField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if p.ThumbnailURL != "" {
		embed.Thumbnail = &webhookMediaRef{URL: p.ThumbnailURL}
	}
	if p.Footer != "" {
		embed.Footer = &webhookFooter{Text: p.Footer}
	}

	body, err := json.Marshal(webhookBody{Content: p.Content, Embeds: []webhookEmbed{embed}})
	if err != nil {
		return fmt.Errorf("encode webhook body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.http().Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook post: %s: %s", resp.Status, string(b))
	}
	return nil
}
