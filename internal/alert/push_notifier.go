package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"finops-alerting/internal/config"
	"finops-alerting/internal/logging"
	"finops-alerting/internal/repository"
)

// PushNotifier delivers alert notifications to registered push endpoints.
// A destination address is either a raw subscription JSON payload or a user
// identifier; the latter fans out across every active subscription of that
// user, and a failure on one subscription must not abort the others.
type PushNotifier struct {
	fallback config.PushChannelConfig
	configs  repository.ChannelConfigRepository
	subs     repository.PushSubscriptionRepository
	logger   *logging.Logger

	once    sync.Once
	client  *http.Client
	token   string
	initErr error
}

type pushSubscription struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

type pushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NewPushNotifier creates a new push notifier
func NewPushNotifier(fallback config.PushChannelConfig, configs repository.ChannelConfigRepository, subs repository.PushSubscriptionRepository, logger *logging.Logger) *PushNotifier {
	return &PushNotifier{
		fallback: fallback,
		configs:  configs,
		subs:     subs,
		logger:   logger.WithComponent("push-notifier"),
	}
}

func (p *PushNotifier) init(ctx context.Context) error {
	p.once.Do(func() {
		creds, err := loadChannelCredentials(ctx, p.configs, ChannelPush)
		if err != nil {
			p.initErr = err
			return
		}

		timeout := p.fallback.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}

		p.token = credString(creds, "auth_token", p.fallback.AuthToken)
		p.client = &http.Client{Timeout: timeout}
	})
	return p.initErr
}

// Send delivers a push notification. A JSON address is treated as a raw
// subscription payload; anything else is resolved as a user identifier.
func (p *PushNotifier) Send(ctx context.Context, address, subject, body string) error {
	if err := p.init(ctx); err != nil {
		return err
	}

	if strings.HasPrefix(strings.TrimSpace(address), "{") {
		sub, err := parsePushSubscription(address)
		if err != nil {
			return err
		}
		return p.sendToEndpoint(ctx, sub.Endpoint, subject, body)
	}

	return p.SendToUser(ctx, address, subject, body)
}

// SendToUser fans out to every active subscription registered for the user.
// The send succeeds when at least one subscription accepted the message.
func (p *PushNotifier) SendToUser(ctx context.Context, userID, subject, body string) error {
	if err := p.init(ctx); err != nil {
		return err
	}
	if p.subs == nil {
		return &ConfigurationError{Channel: ChannelPush, Reason: "no push subscription store configured"}
	}

	subs, err := p.subs.GetActiveSubscriptionsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load push subscriptions for %s: %w", userID, err)
	}
	if len(subs) == 0 {
		return &DeliveryError{Channel: ChannelPush, Address: userID, Reason: "no active push subscriptions"}
	}

	delivered := 0
	var lastErr error
	for _, sub := range subs {
		if err := p.sendToEndpoint(ctx, sub.Endpoint, subject, body); err != nil {
			lastErr = err
			p.logger.WithFields(map[string]interface{}{
				"user_id":         userID,
				"subscription_id": sub.ID,
			}).Error("push subscription delivery failed", err)

			// a gone endpoint will never deliver again
			var deliveryErr *DeliveryError
			if errors.As(err, &deliveryErr) && (deliveryErr.StatusCode == http.StatusNotFound || deliveryErr.StatusCode == http.StatusGone) {
				if err := p.subs.DeactivateSubscription(ctx, sub.ID); err != nil {
					p.logger.Error("failed to deactivate stale subscription", err)
				}
			}
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return lastErr
	}
	return nil
}

func (p *PushNotifier) sendToEndpoint(ctx context.Context, endpoint, subject, body string) error {
	payload, err := json.Marshal(pushMessage{Title: subject, Body: body})
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return &DeliveryError{Channel: ChannelPush, Address: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &DeliveryError{
			Channel:    ChannelPush,
			Address:    endpoint,
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("push service returned status %d", resp.StatusCode),
		}
	}

	return nil
}

func parsePushSubscription(raw string) (*pushSubscription, error) {
	var sub pushSubscription
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return nil, &ValidationError{Reason: "malformed push subscription payload: " + err.Error()}
	}
	if sub.Endpoint == "" {
		return nil, &ValidationError{Reason: "malformed push subscription payload: missing endpoint"}
	}
	return &sub, nil
}
