package service

import (
	"context"
	"encoding/json"
	"testing"

	"finops-alerting/internal/alert"
	"finops-alerting/internal/cache"
	"finops-alerting/internal/logging"
	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAlertRepository for testing
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) SaveAlert(ctx context.Context, a *models.Alert) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAlertRepository) GetAlertByID(ctx context.Context, id string) (*models.Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Alert), args.Error(1)
}

func (m *MockAlertRepository) GetAlertByCode(ctx context.Context, code string) (*models.Alert, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Alert), args.Error(1)
}

func (m *MockAlertRepository) GetAlerts(ctx context.Context) ([]*models.Alert, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Alert), args.Error(1)
}

func (m *MockAlertRepository) UpdateAlert(ctx context.Context, a *models.Alert) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAlertRepository) DeleteAlert(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeCache is an in-memory AlertCache for read-through tests
type fakeCache struct {
	entries map[string][]byte
	sets    int
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	c.sets++
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.entries, key)
		c.deletes = append(c.deletes, key)
	}
	return nil
}

type noopRegistry struct{}

func (noopRegistry) Notifier(channel alert.Channel) (alert.Notifier, bool) {
	return nil, false
}

func serviceLogger() *logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{Level: logging.FATAL, Component: "test", Output: "stderr"})
}

func newAlertService(alerts *MockAlertRepository, c AlertCache) *AlertService {
	repo := &repository.Repository{Alert: alerts}
	engine := alert.NewEngine(repo, noopRegistry{}, serviceLogger())
	return NewAlertService(repo, engine, c, serviceLogger())
}

func TestAlertService_CreateAlert(t *testing.T) {
	mockAlerts := &MockAlertRepository{}
	mockAlerts.On("SaveAlert", mock.Anything, mock.Anything).Return(nil)

	svc := newAlertService(mockAlerts, nil)

	a := &models.Alert{
		Code:    "BUDGET_DEPASSE",
		Libelle: "Budget dépassé",
		Destinations: []models.AlertDestination{
			{Channel: "email", Address: "daf@example.com", IsActive: true},
		},
		IsActive: true,
	}

	err := svc.CreateAlert(context.Background(), a)

	assert.NoError(t, err)
	mockAlerts.AssertCalled(t, "SaveAlert", mock.Anything, a)
}

func TestAlertService_CreateAlert_Validation(t *testing.T) {
	svc := newAlertService(&MockAlertRepository{}, nil)
	ctx := context.Background()

	err := svc.CreateAlert(ctx, &models.Alert{Libelle: "sans code"})
	assert.ErrorContains(t, err, "code")

	err = svc.CreateAlert(ctx, &models.Alert{Code: "X"})
	assert.ErrorContains(t, err, "libelle")

	err = svc.CreateAlert(ctx, &models.Alert{
		Code:    "X",
		Libelle: "x",
		Destinations: []models.AlertDestination{
			{Channel: "pigeon", Address: "roof"},
		},
	})
	assert.ErrorContains(t, err, "invalid destination channel")

	err = svc.CreateAlert(ctx, &models.Alert{
		Code:    "X",
		Libelle: "x",
		Rule:    models.JSONMap{"type": "threshold", "field": "solde", "operator": ">"},
	})
	assert.ErrorContains(t, err, "operator")
}

func TestAlertService_GetAlertByCode_ReadThrough(t *testing.T) {
	a := &models.Alert{ID: "a-1", Code: "TRESO", Libelle: "Trésorerie", IsActive: true}

	mockAlerts := &MockAlertRepository{}
	mockAlerts.On("GetAlertByCode", mock.Anything, "TRESO").Return(a, nil)

	c := newFakeCache()
	svc := newAlertService(mockAlerts, c)
	ctx := context.Background()

	first, err := svc.GetAlertByCode(ctx, "TRESO")
	require.NoError(t, err)
	assert.Equal(t, "a-1", first.ID)
	assert.Equal(t, 1, c.sets)

	// second read is served from the cache
	second, err := svc.GetAlertByCode(ctx, "TRESO")
	require.NoError(t, err)
	assert.Equal(t, "a-1", second.ID)
	mockAlerts.AssertNumberOfCalls(t, "GetAlertByCode", 1)
}

func TestAlertService_UpdateAlert_InvalidatesCache(t *testing.T) {
	mockAlerts := &MockAlertRepository{}
	mockAlerts.On("UpdateAlert", mock.Anything, mock.Anything).Return(nil)

	c := newFakeCache()
	svc := newAlertService(mockAlerts, c)

	err := svc.UpdateAlert(context.Background(), &models.Alert{Code: "TRESO", Libelle: "Trésorerie"})

	require.NoError(t, err)
	assert.Contains(t, c.deletes, "alert:code:TRESO")
}

func TestAlertService_DeleteAlert_InvalidatesCache(t *testing.T) {
	a := &models.Alert{ID: "a-1", Code: "TRESO", Libelle: "Trésorerie"}

	mockAlerts := &MockAlertRepository{}
	mockAlerts.On("GetAlertByID", mock.Anything, "a-1").Return(a, nil)
	mockAlerts.On("DeleteAlert", mock.Anything, "a-1").Return(nil)

	c := newFakeCache()
	svc := newAlertService(mockAlerts, c)

	err := svc.DeleteAlert(context.Background(), "a-1")

	require.NoError(t, err)
	assert.Contains(t, c.deletes, "alert:code:TRESO")
}
