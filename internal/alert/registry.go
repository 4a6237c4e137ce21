package alert

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"finops-alerting/internal/config"
	"finops-alerting/internal/logging"
	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"

	"gorm.io/gorm"
)

// ChannelRegistry maps each delivery channel to its provider. It is built
// once at startup and passed by reference into the engine; the providers
// themselves defer transport construction to first use.
type ChannelRegistry struct {
	notifiers map[Channel]Notifier
}

// NewChannelRegistry builds providers for all four channels. Stored channel
// configuration takes precedence over the environment fallbacks in cfg.
func NewChannelRegistry(cfg *config.ChannelsConfig, configs repository.ChannelConfigRepository, subs repository.PushSubscriptionRepository, logger *logging.Logger) *ChannelRegistry {
	return &ChannelRegistry{
		notifiers: map[Channel]Notifier{
			ChannelEmail:   NewEmailNotifier(cfg.Email, configs),
			ChannelSMS:     NewSMSNotifier(cfg.SMS, configs),
			ChannelPush:    NewPushNotifier(cfg.Push, configs, subs, logger),
			ChannelWebhook: NewWebhookNotifier(cfg.Webhook, configs),
		},
	}
}

// Notifier returns the provider for a channel
func (r *ChannelRegistry) Notifier(channel Channel) (Notifier, bool) {
	notifier, ok := r.notifiers[channel]
	return notifier, ok
}

// loadChannelCredentials reads the stored configuration row for one channel.
// A missing row means the environment fallbacks apply; a disabled row is a
// configuration error.
func loadChannelCredentials(ctx context.Context, configs repository.ChannelConfigRepository, channel Channel) (models.JSONMap, error) {
	if configs == nil {
		return nil, nil
	}
	row, err := configs.GetChannelConfig(ctx, string(channel))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load %s channel config: %w", channel, err)
	}
	if !row.Enabled {
		return nil, &ConfigurationError{Channel: channel, Reason: "channel is disabled"}
	}
	return row.Credentials, nil
}

func credString(creds models.JSONMap, key, fallback string) string {
	if v, ok := creds[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func credInt(creds models.JSONMap, key string, fallback int) int {
	switch v := creds[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func credBool(creds models.JSONMap, key string, fallback bool) bool {
	switch v := creds[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
