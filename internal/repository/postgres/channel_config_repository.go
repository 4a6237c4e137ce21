package postgres

import (
	"context"

	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type channelConfigRepository struct {
	db *gorm.DB
}

// NewChannelConfigRepository creates a new PostgreSQL channel config repository
func NewChannelConfigRepository(db *gorm.DB) repository.ChannelConfigRepository {
	return &channelConfigRepository{db: db}
}

func (r *channelConfigRepository) GetChannelConfig(ctx context.Context, channel string) (*models.ChannelConfig, error) {
	var cfg models.ChannelConfig
	err := r.db.WithContext(ctx).First(&cfg, "channel = ?", channel).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *channelConfigRepository) GetChannelConfigs(ctx context.Context) ([]*models.ChannelConfig, error) {
	var configs []*models.ChannelConfig
	err := r.db.WithContext(ctx).Order("channel ASC").Find(&configs).Error
	return configs, err
}

func (r *channelConfigRepository) UpsertChannelConfig(ctx context.Context, cfg *models.ChannelConfig) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "credentials", "updated_at"}),
	}).Create(cfg).Error
}
