package postgres

import (
	"context"

	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"

	"gorm.io/gorm"
)

type pushSubscriptionRepository struct {
	db *gorm.DB
}

// NewPushSubscriptionRepository creates a new PostgreSQL push subscription repository
func NewPushSubscriptionRepository(db *gorm.DB) repository.PushSubscriptionRepository {
	return &pushSubscriptionRepository{db: db}
}

func (r *pushSubscriptionRepository) SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *pushSubscriptionRepository) GetActiveSubscriptionsByUser(ctx context.Context, userID string) ([]*models.PushSubscription, error) {
	var subs []*models.PushSubscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&subs).Error
	return subs, err
}

func (r *pushSubscriptionRepository) DeactivateSubscription(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.PushSubscription{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
