package alert

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"finops-alerting/internal/config"
	"finops-alerting/internal/repository"
)

// WebhookNotifier delivers alert notifications as JSON POSTs to the
// destination URL. Any non-2xx response is a delivery error.
type WebhookNotifier struct {
	fallback config.WebhookChannelConfig
	configs  repository.ChannelConfigRepository

	once    sync.Once
	client  *http.Client
	secret  string
	initErr error
}

// WebhookPayload is the wire shape posted to webhook destinations.
type WebhookPayload struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(fallback config.WebhookChannelConfig, configs repository.ChannelConfigRepository) *WebhookNotifier {
	return &WebhookNotifier{fallback: fallback, configs: configs}
}

func (w *WebhookNotifier) init(ctx context.Context) error {
	w.once.Do(func() {
		creds, err := loadChannelCredentials(ctx, w.configs, ChannelWebhook)
		if err != nil {
			w.initErr = err
			return
		}

		timeout := w.fallback.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}

		w.secret = credString(creds, "secret", w.fallback.Secret)
		w.client = &http.Client{Timeout: timeout}
	})
	return w.initErr
}

// Send posts the rendered notification to the destination URL.
func (w *WebhookNotifier) Send(ctx context.Context, address, subject, body string) error {
	if err := w.init(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(WebhookPayload{
		Subject:   subject,
		Body:      body,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, address, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.secret != "" {
		mac := hmac.New(sha256.New, []byte(w.secret))
		mac.Write(payload)
		req.Header.Set("X-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return &DeliveryError{Channel: ChannelWebhook, Address: address, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &DeliveryError{
			Channel:    ChannelWebhook,
			Address:    address,
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("webhook returned status %d", resp.StatusCode),
		}
	}

	return nil
}
