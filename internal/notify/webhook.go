package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Static errors for webhook delivery.
var (
	// ErrWebhookURLRequired is returned when no webhook URL is configured.
	ErrWebhookURLRequired = errors.New("notify: webhook URL is required")
	// ErrWebhookRejected is returned when the listener answers non-2xx.
	ErrWebhookRejected = errors.New("notify: webhook rejected event")
)

// webhookPayload is the wire shape expected by the web application's
// event-emit endpoint. The shared secret authenticates the worker.
type webhookPayload struct {
	JobID           string `json:"jobId"`
	Status          string `json:"status"`
	Secret          string `json:"secret"`
	ErrorMessage    string `json:"errorMessage,omitempty"`
	ProcessedPath   string `json:"processedPath,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

// WebhookNotifier posts job events to an HTTP endpoint.
type WebhookNotifier struct {
	url        string
	secret     string
	httpClient *http.Client
}

// WebhookOption is a function that configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(n *WebhookNotifier) {
		n.httpClient = c
	}
}

// NewWebhookNotifier creates a notifier that posts events to url,
// authenticated with the shared secret.
func NewWebhookNotifier(url, secret string, opts ...WebhookOption) (*WebhookNotifier, error) {
	if url == "" {
		return nil, ErrWebhookURLRequired
	}

	n := &WebhookNotifier{
		url:        url,
		secret:     secret,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Verify interface implementation at compile time.
var _ Notifier = (*WebhookNotifier)(nil)

// Notify posts the event as JSON. A non-2xx response is an error so the
// caller can log it; the caller decides whether to swallow it.
func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	body, err := json.Marshal(webhookPayload{
		JobID:           event.JobID,
		Status:          event.Status,
		Secret:          n.secret,
		ErrorMessage:    event.ErrorMessage,
		ProcessedPath:   event.ProcessedPath,
		DurationSeconds: event.DurationSeconds,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrWebhookRejected, resp.StatusCode)
	}
	return nil
}
