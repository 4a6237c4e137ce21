package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"finops-alerting/internal/config"
	"finops-alerting/internal/repository"
)

// SMSNotifier delivers alert notifications through a JSON HTTP SMS gateway.
type SMSNotifier struct {
	fallback config.SMSChannelConfig
	configs  repository.ChannelConfigRepository

	once     sync.Once
	client   *http.Client
	settings smsSettings
	initErr  error
}

type smsSettings struct {
	APIURL string
	APIKey string
	Sender string
}

type smsRequest struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

type smsResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewSMSNotifier creates a new SMS notifier
func NewSMSNotifier(fallback config.SMSChannelConfig, configs repository.ChannelConfigRepository) *SMSNotifier {
	return &SMSNotifier{fallback: fallback, configs: configs}
}

func (s *SMSNotifier) init(ctx context.Context) error {
	s.once.Do(func() {
		creds, err := loadChannelCredentials(ctx, s.configs, ChannelSMS)
		if err != nil {
			s.initErr = err
			return
		}

		settings := smsSettings{
			APIURL: credString(creds, "api_url", s.fallback.APIURL),
			APIKey: credString(creds, "api_key", s.fallback.APIKey),
			Sender: credString(creds, "sender", s.fallback.Sender),
		}

		if settings.APIURL == "" {
			s.initErr = &ConfigurationError{Channel: ChannelSMS, Reason: "missing SMS gateway URL"}
			return
		}
		if settings.APIKey == "" {
			s.initErr = &ValidationError{Reason: "incomplete SMS credentials: api_key is required"}
			return
		}

		timeout := s.fallback.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}

		s.settings = settings
		s.client = &http.Client{Timeout: timeout}
	})
	return s.initErr
}

// Send delivers one SMS; the subject is ignored, only the body is sent.
func (s *SMSNotifier) Send(ctx context.Context, address, _, body string) error {
	if err := s.init(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(smsRequest{
		To:      address,
		From:    s.settings.Sender,
		Message: body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal SMS request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.settings.APIURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.settings.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return &DeliveryError{Channel: ChannelSMS, Address: address, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		var apiErr smsResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			reason = fmt.Sprintf("%s: %s", reason, apiErr.Message)
		}
		return &DeliveryError{Channel: ChannelSMS, Address: address, StatusCode: resp.StatusCode, Reason: reason}
	}

	return nil
}
