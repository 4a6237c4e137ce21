package repository

import (
	"context"
	"time"

	"finops-alerting/internal/models"
)

// NotificationFilter represents filtering criteria for audit trail queries
type NotificationFilter struct {
	AlertID   string
	Channel   string
	Delivered *bool
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

// AlertRepository defines data access for alert definitions
type AlertRepository interface {
	// SaveAlert stores a new alert definition with its destinations
	SaveAlert(ctx context.Context, alert *models.Alert) error

	// GetAlertByID retrieves an alert with its destinations by ID
	GetAlertByID(ctx context.Context, id string) (*models.Alert, error)

	// GetAlertByCode retrieves an alert with its destinations by unique code
	GetAlertByCode(ctx context.Context, code string) (*models.Alert, error)

	// GetAlerts retrieves all alert definitions
	GetAlerts(ctx context.Context) ([]*models.Alert, error)

	// UpdateAlert updates an existing alert definition
	UpdateAlert(ctx context.Context, alert *models.Alert) error

	// DeleteAlert deletes an alert definition by ID
	DeleteAlert(ctx context.Context, id string) error
}

// TemplateRepository defines data access for message templates
type TemplateRepository interface {
	// SaveTemplate stores a new template
	SaveTemplate(ctx context.Context, template *models.Template) error

	// GetTemplateByCode retrieves a template by unique code
	GetTemplateByCode(ctx context.Context, code string) (*models.Template, error)

	// GetTemplates retrieves all templates
	GetTemplates(ctx context.Context) ([]*models.Template, error)

	// UpdateTemplate updates an existing template
	UpdateTemplate(ctx context.Context, template *models.Template) error

	// DeleteTemplate deletes a template by ID
	DeleteTemplate(ctx context.Context, id string) error
}

// ChannelConfigRepository defines data access for provider configuration
type ChannelConfigRepository interface {
	// GetChannelConfig retrieves the configuration row for one channel
	GetChannelConfig(ctx context.Context, channel string) (*models.ChannelConfig, error)

	// GetChannelConfigs retrieves all channel configuration rows
	GetChannelConfigs(ctx context.Context) ([]*models.ChannelConfig, error)

	// UpsertChannelConfig creates or replaces the configuration for one channel
	UpsertChannelConfig(ctx context.Context, cfg *models.ChannelConfig) error
}

// NotificationRepository defines data access for the delivery audit trail.
// Rows are append-only; there is deliberately no update operation.
type NotificationRepository interface {
	// SaveNotification appends one delivery record
	SaveNotification(ctx context.Context, notification *models.Notification) error

	// GetNotifications retrieves delivery records matching the filter
	GetNotifications(ctx context.Context, filter NotificationFilter) ([]*models.Notification, error)

	// CountNotifications returns the total count of records matching the filter
	CountNotifications(ctx context.Context, filter NotificationFilter) (int64, error)
}

// PushSubscriptionRepository defines data access for push subscriptions
type PushSubscriptionRepository interface {
	// SavePushSubscription stores a new subscription
	SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error

	// GetActiveSubscriptionsByUser retrieves all active subscriptions of a user
	GetActiveSubscriptionsByUser(ctx context.Context, userID string) ([]*models.PushSubscription, error)

	// DeactivateSubscription marks a subscription inactive
	DeactivateSubscription(ctx context.Context, id string) error
}

// Repository aggregates all repository interfaces
type Repository struct {
	Alert            AlertRepository
	Template         TemplateRepository
	ChannelConfig    ChannelConfigRepository
	Notification     NotificationRepository
	PushSubscription PushSubscriptionRepository
}
