package service

import (
	"context"

	"finops-alerting/internal/alert"
	"finops-alerting/internal/cache"
	"finops-alerting/internal/logging"
	"finops-alerting/internal/repository"
)

// AlertCache is the slice of the Redis client the services need. A nil cache
// turns every lookup into a repository read.
type AlertCache interface {
	Set(ctx context.Context, key string, value interface{}) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

var _ AlertCache = (*cache.RedisClient)(nil)

// Services aggregates all service instances
type Services struct {
	Alert        *AlertService
	Template     *TemplateService
	Notification *NotificationService
	Channel      *ChannelService
}

// NewServices creates a new services instance
func NewServices(repo *repository.Repository, engine *alert.Engine, logger *logging.Logger) *Services {
	return NewServicesWithCache(repo, engine, nil, logger)
}

// NewServicesWithCache creates a new services instance backed by a Redis cache
func NewServicesWithCache(repo *repository.Repository, engine *alert.Engine, cache AlertCache, logger *logging.Logger) *Services {
	return &Services{
		Alert:        NewAlertService(repo, engine, cache, logger),
		Template:     NewTemplateService(repo, engine),
		Notification: NewNotificationService(repo),
		Channel:      NewChannelService(repo),
	}
}
