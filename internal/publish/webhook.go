package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// WebhookPublisher posts transform text to per-platform webhook endpoints
// (e.g. a Zapier/n8n automation that owns the platform credentials). It is
// the default Publisher; platform-native clients can replace it.
type WebhookPublisher struct {
	endpoints map[string]string
	client    *http.Client
}

// NewWebhookPublisher creates a publisher from a platform -> URL map.
func NewWebhookPublisher(endpoints map[string]string) *WebhookPublisher {
	return &WebhookPublisher{
		endpoints: endpoints,
		client:    &http.Client{},
	}
}

// webhookPayload is the body posted to the webhook.
type webhookPayload struct {
	ProfileID string `json:"profile_id,omitempty"`
	Platform  string `json:"platform"`
	Text      string `json:"text"`
}

// Publish posts the text to the platform's webhook and interprets the
// response as a Result.
func (w *WebhookPublisher) Publish(ctx context.Context, profile Profile, text string) (*Result, error) {
	endpoint, ok := w.endpoints[normalizeKey(profile.Platform)]
	if !ok {
		return nil, fmt.Errorf("no webhook configured for platform %s", profile.Platform)
	}

	body, err := json.Marshal(webhookPayload{
		ProfileID: profile.ID,
		Platform:  profile.Platform,
		Text:      text,
	})
	if err != nil {
		return nil, fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook call failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Result{
			Success: false,
			Message: fmt.Sprintf("webhook returned status %d: %s", resp.StatusCode, string(respBody)),
		}, nil
	}

	// Webhooks that return a Result-shaped body get it passed through;
	// anything else counts as a plain success.
	var result Result
	if err := json.Unmarshal(respBody, &result); err != nil || (!result.Success && result.Message == "") {
		return &Result{Success: true, Message: "accepted by webhook"}, nil
	}
	return &result, nil
}
