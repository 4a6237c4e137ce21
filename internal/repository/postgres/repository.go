package postgres

import (
	"finops-alerting/internal/repository"

	"gorm.io/gorm"
)

// NewRepository creates the full PostgreSQL-backed repository set
func NewRepository(db *gorm.DB) *repository.Repository {
	return &repository.Repository{
		Alert:            NewAlertRepository(db),
		Template:         NewTemplateRepository(db),
		ChannelConfig:    NewChannelConfigRepository(db),
		Notification:     NewNotificationRepository(db),
		PushSubscription: NewPushSubscriptionRepository(db),
	}
}
