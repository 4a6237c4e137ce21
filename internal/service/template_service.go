package service

import (
	"context"
	"fmt"

	"finops-alerting/internal/alert"
	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"
)

type TemplateService struct {
	repo   *repository.Repository
	engine *alert.Engine
}

// NewTemplateService creates a new template service
func NewTemplateService(repo *repository.Repository, engine *alert.Engine) *TemplateService {
	return &TemplateService{
		repo:   repo,
		engine: engine,
	}
}

// CreateTemplate creates a new message template
func (s *TemplateService) CreateTemplate(ctx context.Context, template *models.Template) error {
	if err := s.validateTemplate(template); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	return s.repo.Template.SaveTemplate(ctx, template)
}

// GetTemplateByCode retrieves a template by its unique code
func (s *TemplateService) GetTemplateByCode(ctx context.Context, code string) (*models.Template, error) {
	return s.repo.Template.GetTemplateByCode(ctx, code)
}

// GetTemplates retrieves all templates
func (s *TemplateService) GetTemplates(ctx context.Context) ([]*models.Template, error) {
	return s.repo.Template.GetTemplates(ctx)
}

// UpdateTemplate updates an existing template
func (s *TemplateService) UpdateTemplate(ctx context.Context, template *models.Template) error {
	if err := s.validateTemplate(template); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	return s.repo.Template.UpdateTemplate(ctx, template)
}

// DeleteTemplate deletes a template by ID
func (s *TemplateService) DeleteTemplate(ctx context.Context, id string) error {
	return s.repo.Template.DeleteTemplate(ctx, id)
}

// Preview renders the stored template against the given variables without
// dispatching anything
func (s *TemplateService) Preview(ctx context.Context, code string, variables map[string]string) (subject, body string, err error) {
	return s.engine.Renderer().RenderFromCode(ctx, code, variables)
}

// validateTemplate validates a message template
func (s *TemplateService) validateTemplate(template *models.Template) error {
	if template == nil {
		return &alert.ValidationError{Reason: "template cannot be nil"}
	}

	if template.Code == "" {
		return &alert.ValidationError{Reason: "template code cannot be empty"}
	}

	if template.Body == "" {
		return &alert.ValidationError{Reason: "template body cannot be empty"}
	}

	return nil
}
