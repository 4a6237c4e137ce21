package postgres

import (
	"context"

	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"

	"gorm.io/gorm"
)

type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new PostgreSQL alert repository
func NewAlertRepository(db *gorm.DB) repository.AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) SaveAlert(ctx context.Context, alert *models.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *alertRepository) GetAlertByID(ctx context.Context, id string) (*models.Alert, error) {
	var alert models.Alert
	err := r.db.WithContext(ctx).Preload("Destinations").First(&alert, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepository) GetAlertByCode(ctx context.Context, code string) (*models.Alert, error) {
	var alert models.Alert
	err := r.db.WithContext(ctx).Preload("Destinations").First(&alert, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepository) GetAlerts(ctx context.Context) ([]*models.Alert, error) {
	var alerts []*models.Alert
	err := r.db.WithContext(ctx).Preload("Destinations").Order("created_at DESC").Find(&alerts).Error
	return alerts, err
}

func (r *alertRepository) UpdateAlert(ctx context.Context, alert *models.Alert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

func (r *alertRepository) DeleteAlert(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.AlertDestination{}, "alert_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Alert{}, "id = ?", id).Error
	})
}
