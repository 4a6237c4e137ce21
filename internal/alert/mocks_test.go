package alert

import (
	"context"

	"finops-alerting/internal/logging"
	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"

	"github.com/stretchr/testify/mock"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{Level: logging.FATAL, Component: "test", Output: "stderr"})
}

// MockAlertRepository for testing
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) SaveAlert(ctx context.Context, alert *models.Alert) error {
	args := m.Called(ctx, alert)
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

func (m *MockAlertRepository) UpdateAlert(ctx context.Context, alert *models.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepository) DeleteAlert(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTemplateRepository for testing
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) SaveTemplate(ctx context.Context, template *models.Template) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) GetTemplateByCode(ctx context.Context, code string) (*models.Template, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Template), args.Error(1)
}

func (m *MockTemplateRepository) GetTemplates(ctx context.Context) ([]*models.Template, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Template), args.Error(1)
}

func (m *MockTemplateRepository) UpdateTemplate(ctx context.Context, template *models.Template) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) DeleteTemplate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockNotificationRepository records saved notifications for inspection
type MockNotificationRepository struct {
	mock.Mock
	Saved []*models.Notification
}

func (m *MockNotificationRepository) SaveNotification(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	if args.Error(0) == nil {
		m.Saved = append(m.Saved, notification)
	}
	return args.Error(0)
}

func (m *MockNotificationRepository) GetNotifications(ctx context.Context, filter repository.NotificationFilter) ([]*models.Notification, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountNotifications(ctx context.Context, filter repository.NotificationFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockPushSubscriptionRepository for testing
type MockPushSubscriptionRepository struct {
	mock.Mock
}

func (m *MockPushSubscriptionRepository) SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockPushSubscriptionRepository) GetActiveSubscriptionsByUser(ctx context.Context, userID string) ([]*models.PushSubscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PushSubscription), args.Error(1)
}

func (m *MockPushSubscriptionRepository) DeactivateSubscription(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockChannelConfigRepository for testing
type MockChannelConfigRepository struct {
	mock.Mock
}

func (m *MockChannelConfigRepository) GetChannelConfig(ctx context.Context, channel string) (*models.ChannelConfig, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChannelConfig), args.Error(1)
}

func (m *MockChannelConfigRepository) GetChannelConfigs(ctx context.Context) ([]*models.ChannelConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.ChannelConfig), args.Error(1)
}

func (m *MockChannelConfigRepository) UpsertChannelConfig(ctx context.Context, cfg *models.ChannelConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// stubNotifier is a scriptable provider for engine tests
type stubNotifier struct {
	err     error
	failFor map[string]error
	sends   []stubSend
}

type stubSend struct {
	Address string
	Subject string
	Body    string
}

func (s *stubNotifier) Send(ctx context.Context, address, subject, body string) error {
	s.sends = append(s.sends, stubSend{Address: address, Subject: subject, Body: body})
	if err, ok := s.failFor[address]; ok {
		return err
	}
	return s.err
}

// stubRegistry maps channels to stub providers
type stubRegistry map[Channel]Notifier

func (r stubRegistry) Notifier(channel Channel) (Notifier, bool) {
	n, ok := r[channel]
	return n, ok
}
