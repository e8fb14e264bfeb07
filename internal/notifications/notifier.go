package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/b23bb1023/Manhwa-agent/internal/models"
)

const (
	EventNewChapters = "new_chapters"
	EventRefresh     = "refresh"
)

type Message struct {
	Event   string         `json:"event"`
	Title   string         `json:"title"`
	Body    string         `json:"body"`
	Context map[string]any `json:"context,omitempty"`
}

func NewChaptersMessage(record models.SeriesRecord, previous int) Message {
	return Message{
		Event: EventNewChapters,
		Title: record.DisplayTitle(),
		Body:  fmt.Sprintf("Chapter %d is out (was %d, last read %d)", record.LatestAvailable, previous, record.LastRead),
		Context: map[string]any{
			"id":               record.ID,
			"url":              record.URL,
			"latest_available": record.LatestAvailable,
			"previous":         previous,
			"last_read":        record.LastRead,
		},
	}
}

func RefreshMessage() Message {
	return Message{Event: EventRefresh, Title: "refresh"}
}

type Notifier interface {
	Notify(ctx context.Context, message Message) error
}

type NoopNotifier struct{}

func (n NoopNotifier) Notify(_ context.Context, _ Message) error {
	return nil
}

func requireURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("webhook url is required")
	}
	return trimmed, nil
}

// WebhookNotifier POSTs each message as JSON.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(webhookURL string) (*WebhookNotifier, error) {
	trimmed, err := requireURL(webhookURL)
	if err != nil {
		return nil, err
	}
	return &WebhookNotifier{
		url:    trimmed,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (w *WebhookNotifier) Notify(ctx context.Context, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return send(w.client, req, "webhook")
}

// PingNotifier fires a bare GET at an automation endpoint. The message is
// not sent; the request itself is the signal.
type PingNotifier struct {
	url    string
	client *http.Client
}

func NewPingNotifier(pingURL string, timeout time.Duration) (*PingNotifier, error) {
	trimmed, err := requireURL(pingURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	return &PingNotifier{
		url:    trimmed,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (p *PingNotifier) Notify(ctx context.Context, _ Message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	return send(p.client, req, "ping")
}

func send(client *http.Client, req *http.Request, kind string) error {
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s: %w", kind, err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%s returned status %d", kind, res.StatusCode)
	}
	return nil
}

// MultiNotifier delivers to every notifier and joins their errors.
type MultiNotifier struct {
	notifiers []Notifier
}

func NewMultiNotifier(items ...Notifier) *MultiNotifier {
	filtered := make([]Notifier, 0, len(items))
	for _, item := range items {
		if item != nil {
			filtered = append(filtered, item)
		}
	}
	return &MultiNotifier{notifiers: filtered}
}

func (m *MultiNotifier) Notify(ctx context.Context, message Message) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromURL returns a webhook notifier, or a no-op one when url is empty.
func FromURL(webhookURL string) Notifier {
	notifier, err := NewWebhookNotifier(webhookURL)
	if err != nil {
		return NoopNotifier{}
	}
	return notifier
}
