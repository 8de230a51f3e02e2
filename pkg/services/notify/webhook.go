package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const webhookTimeout = 10 * time.Second

// WebhookPusher POSTs a {"text": ...} JSON payload to a configured webhook
// URL under a bounded timeout. The URL is treated as a secret and never
// logged or echoed in errors.
type WebhookPusher struct {
	client *resty.Client
	url    string
}

// NewWebhookPusher validates the URL up front; an empty URL disables the
// channel, an invalid one is an error so misconfiguration surfaces at startup.
func NewWebhookPusher(url string) (*WebhookPusher, error) {
	if url != "" {
		if err := ValidateWebhookURL(url); err != nil {
			return nil, err
		}
	}

	client := resty.New()
	client.SetTimeout(webhookTimeout)

	return &WebhookPusher{client: client, url: url}, nil
}

// ValidateWebhookURL rejects placeholder/template values and anything that
// is not HTTPS.
func ValidateWebhookURL(url string) error {
	if url == "" || strings.HasPrefix(url, "<") {
		return fmt.Errorf("invalid webhook URL")
	}
	if !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("webhook URL must use HTTPS")
	}
	return nil
}

func (w *WebhookPusher) Publish(ctx context.Context, subject, body string) error {
	if w.url == "" {
		return nil
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": strings.TrimSpace(subject + " " + body)}).
		Post(w.url)
	if err != nil {
		// Transport errors echo the full request URL, and the webhook URL is
		// a secret. Drop the cause entirely.
		return fmt.Errorf("failed to push webhook notification")
	}
	if resp.IsError() {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode())
	}
	return nil
}
