package service

import (
	"context"

	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"
)

// NotificationList is one page of the delivery audit trail.
type NotificationList struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
	Limit         int                    `json:"limit"`
	Offset        int                    `json:"offset"`
}

type NotificationService struct {
	repo *repository.Repository
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo *repository.Repository) *NotificationService {
	return &NotificationService{
		repo: repo,
	}
}

// GetNotifications retrieves one page of delivery records matching the filter
func (s *NotificationService) GetNotifications(ctx context.Context, filter repository.NotificationFilter) (*NotificationList, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}

	notifications, err := s.repo.Notification.GetNotifications(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Notification.CountNotifications(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &NotificationList{
		Notifications: notifications,
		Total:         total,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	}, nil
}
