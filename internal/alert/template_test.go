package alert

import (
	"context"
	"testing"

	"finops-alerting/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name      string
		template  string
		variables map[string]string
		expected  string
	}{
		{
			name:      "Simple substitution",
			template:  "Bonjour {{nom}}",
			variables: map[string]string{"nom": "Awa"},
			expected:  "Bonjour Awa",
		},
		{
			name:      "Missing key left verbatim",
			template:  "Bonjour {{nom}}",
			variables: map[string]string{},
			expected:  "Bonjour {{nom}}",
		},
		{
			name:      "Whitespace around key tolerated",
			template:  "Solde: {{ solde }} {{devise}}",
			variables: map[string]string{"solde": "12500", "devise": "FCFA"},
			expected:  "Solde: 12500 FCFA",
		},
		{
			name:      "Case sensitive keys",
			template:  "{{Nom}} et {{nom}}",
			variables: map[string]string{"nom": "Awa"},
			expected:  "{{Nom}} et Awa",
		},
		{
			name:      "Repeated placeholder",
			template:  "{{code}} / {{code}}",
			variables: map[string]string{"code": "M-2024-018"},
			expected:  "M-2024-018 / M-2024-018",
		},
		{
			name:      "No placeholders",
			template:  "static body",
			variables: map[string]string{"nom": "Awa"},
			expected:  "static body",
		},
		{
			name:      "Empty template",
			template:  "",
			variables: map[string]string{"nom": "Awa"},
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.template, tt.variables))
		})
	}
}

func TestTemplateRenderer_RenderFromCode(t *testing.T) {
	subject := "Alerte {{type}}"
	stored := &models.Template{
		ID:      "tpl-1",
		Code:    "SEUIL_DEPASSE",
		Subject: &subject,
		Body:    "Le marché {{marche}} a dépassé le seuil de {{seuil}}",
	}

	mockTemplates := &MockTemplateRepository{}
	mockTemplates.On("GetTemplateByCode", mock.Anything, "SEUIL_DEPASSE").Return(stored, nil)

	renderer := NewTemplateRenderer(mockTemplates)
	gotSubject, gotBody, err := renderer.RenderFromCode(context.Background(), "SEUIL_DEPASSE", map[string]string{
		"type":   "budget",
		"marche": "Route RN4",
		"seuil":  "80%",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Alerte budget", gotSubject)
	assert.Equal(t, "Le marché Route RN4 a dépassé le seuil de 80%", gotBody)
	mockTemplates.AssertExpectations(t)
}

func TestTemplateRenderer_RenderFromCode_NotFound(t *testing.T) {
	mockTemplates := &MockTemplateRepository{}
	mockTemplates.On("GetTemplateByCode", mock.Anything, "ABSENT").Return(nil, gorm.ErrRecordNotFound)

	renderer := NewTemplateRenderer(mockTemplates)
	_, _, err := renderer.RenderFromCode(context.Background(), "ABSENT", nil)

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "template", notFound.Resource)
	assert.Equal(t, "ABSENT", notFound.Key)
}

func TestTemplateRenderer_RenderFromCode_NoSubject(t *testing.T) {
	stored := &models.Template{
		ID:   "tpl-2",
		Code: "SMS_RELANCE",
		Body: "Relance: {{message}}",
	}

	mockTemplates := &MockTemplateRepository{}
	mockTemplates.On("GetTemplateByCode", mock.Anything, "SMS_RELANCE").Return(stored, nil)

	renderer := NewTemplateRenderer(mockTemplates)
	subject, body, err := renderer.RenderFromCode(context.Background(), "SMS_RELANCE", map[string]string{"message": "paiement attendu"})

	assert.NoError(t, err)
	assert.Empty(t, subject)
	assert.Equal(t, "Relance: paiement attendu", body)
}
