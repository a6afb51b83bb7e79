package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/depotworks/tradedepot/internal/config"
	"github.com/depotworks/tradedepot/pkg/logger"
)

// Webhook posts messages to a Discord-compatible webhook URL
type Webhook struct {
	url        string
	httpClient *http.Client
}

// NewWebhook creates a webhook notifier. An empty URL yields a notifier
// that drops everything, so callers never need a nil check.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url: url,
		httpClient: &http.Client{
			Timeout: config.WebhookTimeout,
		},
	}
}

// webhookPayload is the posted body
type webhookPayload struct {
	Content string `json:"content"`
}

// Notify posts one message without blocking the caller. Errors are
// logged and swallowed; the state that triggered the notification is
// already committed.
func (w *Webhook) Notify(ctx context.Context, message string) {
	if w.url == "" {
		return
	}

	body, err := json.Marshal(webhookPayload{Content: message})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Webhook payload marshal failed")
		return
	}

	// Detach from the caller's context: the HTTP response that caused
	// this notification may already be finished
	go w.deliver(context.WithoutCancel(ctx), body)
}

// deliver posts one payload with its own timeout
func (w *Webhook) deliver(ctx context.Context, body []byte) {
	ctx, cancel := context.WithTimeout(ctx, config.WebhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		logger.Log.Error().Err(err).Msg("Webhook request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		logger.Log.Warn().Int("status", resp.StatusCode).Msg("Webhook rejected notification")
	}
}
