package alert

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"finops-alerting/internal/repository"

	"gorm.io/gorm"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Render substitutes every {{key}} placeholder with its value from variables.
// Keys are case-sensitive and whitespace inside the braces is tolerated.
// Placeholders without a matching variable are left verbatim; rendering
// never fails on missing keys.
func Render(template string, variables map[string]string) string {
	if template == "" || len(variables) == 0 {
		return template
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := variables[key]; ok {
			return value
		}
		return match
	})
}

// TemplateRenderer renders stored templates loaded by code.
type TemplateRenderer struct {
	templates repository.TemplateRepository
}

// NewTemplateRenderer creates a renderer backed by the template store
func NewTemplateRenderer(templates repository.TemplateRepository) *TemplateRenderer {
	return &TemplateRenderer{templates: templates}
}

// RenderFromCode loads the template with the given code and renders its
// subject (when present) and body against the variable map.
func (r *TemplateRenderer) RenderFromCode(ctx context.Context, code string, variables map[string]string) (subject, body string, err error) {
	template, err := r.templates.GetTemplateByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", &NotFoundError{Resource: "template", Key: code}
		}
		return "", "", fmt.Errorf("load template %s: %w", code, err)
	}

	if template.Subject != nil {
		subject = Render(*template.Subject, variables)
	}
	return subject, Render(template.Body, variables), nil
}
