package service

import (
	"context"
	"fmt"

	"finops-alerting/internal/alert"
	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"
)

type ChannelService struct {
	repo *repository.Repository
}

// NewChannelService creates a new channel service
func NewChannelService(repo *repository.Repository) *ChannelService {
	return &ChannelService{
		repo: repo,
	}
}

// GetChannelConfig retrieves the stored configuration for one channel
func (s *ChannelService) GetChannelConfig(ctx context.Context, channel string) (*models.ChannelConfig, error) {
	if _, ok := alert.ParseChannel(channel); !ok {
		return nil, &alert.ValidationError{Reason: fmt.Sprintf("invalid channel: %s", channel)}
	}
	return s.repo.ChannelConfig.GetChannelConfig(ctx, channel)
}

// GetChannelConfigs retrieves all stored channel configurations
func (s *ChannelService) GetChannelConfigs(ctx context.Context) ([]*models.ChannelConfig, error) {
	return s.repo.ChannelConfig.GetChannelConfigs(ctx)
}

// UpsertChannelConfig creates or replaces the configuration for one channel.
// Providers pick the change up on their next construction; a running process
// keeps its already initialized transports.
func (s *ChannelService) UpsertChannelConfig(ctx context.Context, cfg *models.ChannelConfig) error {
	if cfg == nil {
		return &alert.ValidationError{Reason: "channel config cannot be nil"}
	}
	if _, ok := alert.ParseChannel(cfg.Channel); !ok {
		return &alert.ValidationError{Reason: fmt.Sprintf("invalid channel: %s", cfg.Channel)}
	}

	return s.repo.ChannelConfig.UpsertChannelConfig(ctx, cfg)
}

// RegisterPushSubscription stores a push subscription for a user
func (s *ChannelService) RegisterPushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	if sub == nil {
		return &alert.ValidationError{Reason: "push subscription cannot be nil"}
	}
	if sub.UserID == "" {
		return &alert.ValidationError{Reason: "push subscription user ID cannot be empty"}
	}
	if sub.Endpoint == "" {
		return &alert.ValidationError{Reason: "push subscription endpoint cannot be empty"}
	}

	sub.IsActive = true
	return s.repo.PushSubscription.SavePushSubscription(ctx, sub)
}

// DeactivatePushSubscription marks a subscription inactive
func (s *ChannelService) DeactivatePushSubscription(ctx context.Context, id string) error {
	return s.repo.PushSubscription.DeactivateSubscription(ctx, id)
}
