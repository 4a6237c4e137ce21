package postgres

import (
	"context"

	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"

	"gorm.io/gorm"
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new PostgreSQL notification repository
func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) SaveNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) GetNotifications(ctx context.Context, filter repository.NotificationFilter) ([]*models.Notification, error) {
	var notifications []*models.Notification
	query := r.applyFilter(r.db.WithContext(ctx), filter)

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	err := query.Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountNotifications(ctx context.Context, filter repository.NotificationFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Notification{}), filter).Count(&count).Error
	return count, err
}

func (r *notificationRepository) applyFilter(query *gorm.DB, filter repository.NotificationFilter) *gorm.DB {
	if filter.AlertID != "" {
		query = query.Where("alert_id = ?", filter.AlertID)
	}
	if filter.Channel != "" {
		query = query.Where("channel = ?", filter.Channel)
	}
	if filter.Delivered != nil {
		query = query.Where("delivered = ?", *filter.Delivered)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}
	return query
}
