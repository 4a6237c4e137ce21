package alert

import (
	"context"
	"testing"

	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func newTestEngine(alerts *MockAlertRepository, notifications *MockNotificationRepository, registry NotifierRegistry) *Engine {
	repo := &repository.Repository{
		Alert:        alerts,
		Template:     &MockTemplateRepository{},
		Notification: notifications,
	}
	return NewEngine(repo, registry, testLogger())
}

func TestEvaluateRules_ThresholdMap_InclusiveBoundary(t *testing.T) {
	a := &models.Alert{
		ID:         "a-1",
		Code:       "BUDGET_80",
		IsActive:   true,
		Thresholds: models.FloatMap{"consommation": 80},
	}

	mockAlerts := &MockAlertRepository{}
	mockAlerts.On("GetAlertByCode", mock.Anything, "BUDGET_80").Return(a, nil)
	engine := newTestEngine(mockAlerts, &MockNotificationRepository{}, stubRegistry{})

	tests := []struct {
		name     string
		value    float64
		expected bool
	}{
		{"At threshold fires", 80, true},
		{"Above threshold fires", 95, true},
		{"Just below does not fire", 79, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fired, err := engine.EvaluateRules(context.Background(), "BUDGET_80", Context{"consommation": tt.value})
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, fired)
		})
	}
}

func TestEvaluateRules_ThresholdMap_AnyKeyFires(t *testing.T) {
	a := &models.Alert{
		ID:       "a-2",
		Code:     "MULTI",
		IsActive: true,
		Thresholds: models.FloatMap{
			"engagement": 1000000,
			"paiement":   500000,
		},
	}

	mockAlerts := &MockAlertRepository{}
	mockAlerts.On("GetAlertByCode", mock.Anything, "MULTI").Return(a, nil)
	engine := newTestEngine(mockAlerts, &MockNotificationRepository{}, stubRegistry{})

	// only one of the two thresholds is met
	fired, err := engine.EvaluateRules(context.Background(), "MULTI", Context{
		"engagement": 100.0,
		"paiement":   600000.0,
	})

	assert.NoError(t, err)
	assert.True(t, fired)
}

func TestEvaluateRules_LowBalanceRule(t *testing.T) {
	a := &models.Alert{
		ID:       "a-3",
		Code:     "SOLDE_BAS",
		IsActive: true,
		Rule: models.JSONMap{
			"type":     "threshold",
			"field":    "solde",
			"operator": "<",
			"value":    100000,
		},
	}

	mockAlerts := &MockAlertRepository{}
	mockAlerts.On("GetAlertByCode", mock.Anything, "SOLDE_BAS").Return(a, nil)
	engine := newTestEngine(mockAlerts, &MockNotificationRepository{}, stubRegistry{})

	tests := []struct {
		name     string
		solde    float64
		expected bool
	}{
		{"Below threshold fires", 99999, true},
		{"At threshold does not fire", 100000, false},
		{"Above threshold does not fire", 250000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fired, err := engine.EvaluateRules(context.Background(), "SOLDE_BAS", Context{"solde": tt.solde})
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, fired)
		})
	}
}

func TestEvaluateRules_NoRuleAlwaysFires(t *testing.T) {
	a := &models.Alert{ID: "a-4", Code: "INFO", IsActive: true}

	mockAlerts := &MockAlertRepository{}
	mockAlerts.On("GetAlertByCode", mock.Anything, "INFO").Return(a, nil)
	engine := newTestEngine(mockAlerts, &MockNotificationRepository{}, stubRegistry{})

	fired, err := engine.EvaluateRules(context.Background(), "INFO", Context{})
	assert.NoError(t, err)
	assert.True(t, fired)
}

func TestEvaluateRules_MissingOrInactiveAlert(t *testing.T) {
	inactive := &models.Alert{ID: "a-5", Code: "OFF", IsActive: false}

	mockAlerts := &MockAlertRepository{}
	mockAlerts.On("GetAlertByCode", mock.Anything, "OFF").Return(inactive, nil)
	mockAlerts.On("GetAlertByCode", mock.Anything, "GHOST").Return(nil, gorm.ErrRecordNotFound)
	engine := newTestEngine(mockAlerts, &MockNotificationRepository{}, stubRegistry{})

	fired, err := engine.EvaluateRules(context.Background(), "OFF", Context{})
	assert.NoError(t, err)
	assert.False(t, fired)

	fired, err = engine.EvaluateRules(context.Background(), "GHOST", Context{})
	assert.NoError(t, err)
	assert.False(t, fired)
}

func TestEvaluateRules_CustomPredicate(t *testing.T) {
	a := &models.Alert{
		ID:       "a-6",
		Code:     "CUSTOM",
		IsActive: true,
		Rule: models.JSONMap{
			"type":      "custom",
			"predicate": "weekend_payment",
		},
	}

	mockAlerts := &MockAlertRepository{}
	mockAlerts.On("GetAlertByCode", mock.Anything, "CUSTOM").Return(a, nil)
	engine := newTestEngine(mockAlerts, &MockNotificationRepository{}, stubRegistry{})

	engine.Predicates().Register("weekend_payment", func(ctx Context) bool {
		day, _ := ctx.String("day")
		return day == "samedi" || day == "dimanche"
	})

	fired, err := engine.EvaluateRules(context.Background(), "CUSTOM", Context{"day": "samedi"})
	assert.NoError(t, err)
	assert.True(t, fired)

	fired, err = engine.EvaluateRules(context.Background(), "CUSTOM", Context{"day": "mardi"})
	assert.NoError(t, err)
	assert.False(t, fired)
}

func TestEvaluateRules_UnknownPredicateIsError(t *testing.T) {
	a := &models.Alert{
		ID:       "a-7",
		Code:     "BROKEN",
		IsActive: true,
		Rule: models.JSONMap{
			"type":      "custom",
			"predicate": "does_not_exist",
		},
	}

	mockAlerts := &MockAlertRepository{}
	mockAlerts.On("GetAlertByCode", mock.Anything, "BROKEN").Return(a, nil)
	engine := newTestEngine(mockAlerts, &MockNotificationRepository{}, stubRegistry{})

	_, err := engine.EvaluateRules(context.Background(), "BROKEN", Context{})
	assert.Error(t, err)
}

func TestEvaluateRules_MissingContextField(t *testing.T) {
	a := &models.Alert{
		ID:       "a-8",
		Code:     "SOLDE_BAS",
		IsActive: true,
		Rule: models.JSONMap{
			"type":     "threshold",
			"field":    "solde",
			"operator": "<",
			"value":    100000,
		},
	}

	fired, err := evaluateAlert(a, Context{"autre": 5.0}, NewPredicateRegistry())
	assert.NoError(t, err)
	assert.False(t, fired)
}
