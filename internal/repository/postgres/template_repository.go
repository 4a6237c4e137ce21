package postgres

import (
	"context"

	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"

	"gorm.io/gorm"
)

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new PostgreSQL template repository
func NewTemplateRepository(db *gorm.DB) repository.TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) SaveTemplate(ctx context.Context, template *models.Template) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *templateRepository) GetTemplateByCode(ctx context.Context, code string) (*models.Template, error) {
	var template models.Template
	err := r.db.WithContext(ctx).First(&template, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) GetTemplates(ctx context.Context) ([]*models.Template, error) {
	var templates []*models.Template
	err := r.db.WithContext(ctx).Order("code ASC").Find(&templates).Error
	return templates, err
}

func (r *templateRepository) UpdateTemplate(ctx context.Context, template *models.Template) error {
	return r.db.WithContext(ctx).Save(template).Error
}

func (r *templateRepository) DeleteTemplate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Template{}, "id = ?", id).Error
}
