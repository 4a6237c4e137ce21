package service

import (
	"context"
	"errors"
	"fmt"

	"finops-alerting/internal/alert"
	"finops-alerting/internal/cache"
	"finops-alerting/internal/logging"
	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"
)

type AlertService struct {
	repo   *repository.Repository
	engine *alert.Engine
	cache  AlertCache
	logger *logging.Logger
}

// NewAlertService creates a new alert service
func NewAlertService(repo *repository.Repository, engine *alert.Engine, cache AlertCache, logger *logging.Logger) *AlertService {
	return &AlertService{
		repo:   repo,
		engine: engine,
		cache:  cache,
		logger: logger.WithComponent("alert-service"),
	}
}

// GetEngine returns the alert engine instance
func (s *AlertService) GetEngine() *alert.Engine {
	return s.engine
}

// CreateAlert creates a new alert definition
func (s *AlertService) CreateAlert(ctx context.Context, a *models.Alert) error {
	if err := s.validateAlert(a); err != nil {
		return fmt.Errorf("invalid alert: %w", err)
	}

	if err := s.repo.Alert.SaveAlert(ctx, a); err != nil {
		return err
	}

	s.invalidate(ctx, a.Code)
	return nil
}

// GetAlert retrieves an alert definition by ID
func (s *AlertService) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	return s.repo.Alert.GetAlertByID(ctx, id)
}

// GetAlertByCode retrieves an alert definition by its unique code, reading
// through the cache when one is configured.
func (s *AlertService) GetAlertByCode(ctx context.Context, code string) (*models.Alert, error) {
	if s.cache != nil {
		var cached models.Alert
		err := s.cache.Get(ctx, alertCacheKey(code), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WithField("code", code).Warn("alert cache read failed, falling back to database")
		}
	}

	a, err := s.repo.Alert.GetAlertByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, alertCacheKey(code), a); err != nil {
			s.logger.WithField("code", code).Warn("alert cache write failed")
		}
	}
	return a, nil
}

// GetAlerts retrieves all alert definitions
func (s *AlertService) GetAlerts(ctx context.Context) ([]*models.Alert, error) {
	return s.repo.Alert.GetAlerts(ctx)
}

// UpdateAlert updates an existing alert definition
func (s *AlertService) UpdateAlert(ctx context.Context, a *models.Alert) error {
	if err := s.validateAlert(a); err != nil {
		return fmt.Errorf("invalid alert: %w", err)
	}

	if err := s.repo.Alert.UpdateAlert(ctx, a); err != nil {
		return err
	}

	s.invalidate(ctx, a.Code)
	return nil
}

// DeleteAlert deletes an alert definition and its destinations
func (s *AlertService) DeleteAlert(ctx context.Context, id string) error {
	a, err := s.repo.Alert.GetAlertByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Alert.DeleteAlert(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, a.Code)
	return nil
}

// Trigger dispatches an alert by ID with an explicit payload
func (s *AlertService) Trigger(ctx context.Context, alertID string, payload alert.Payload) error {
	return s.engine.TriggerAlert(ctx, alertID, payload)
}

// TriggerByCode evaluates the alert's rules against the context and
// dispatches when they fire
func (s *AlertService) TriggerByCode(ctx context.Context, code string, actx alert.Context, overrides *alert.Payload) error {
	return s.engine.TriggerByCode(ctx, code, actx, overrides)
}

// TestAlert sends a test notification to every destination of the alert and
// reports a per-channel outcome without touching the audit trail.
func (s *AlertService) TestAlert(ctx context.Context, id string) (map[string]string, error) {
	a, err := s.repo.Alert.GetAlertByID(ctx, id)
	if err != nil {
		return nil, err
	}

	subject := "Test : " + a.Libelle
	body := "Ceci est une notification de test pour l'alerte " + a.Code + "."

	results := make(map[string]string)
	for _, d := range a.Destinations {
		if !d.IsActive {
			continue
		}
		channel, ok := alert.ParseChannel(d.Channel)
		if !ok {
			results[d.Channel] = "Unknown channel"
			continue
		}
		notifier, ok := s.engine.Registry().Notifier(channel)
		if !ok {
			results[d.Channel] = "Notifier not configured"
			continue
		}
		if err := notifier.Send(ctx, d.Address, subject, body); err != nil {
			results[d.Channel] = fmt.Sprintf("Failed: %v", err)
		} else {
			results[d.Channel] = "Success"
		}
	}

	return results, nil
}

// validateAlert validates an alert definition
func (s *AlertService) validateAlert(a *models.Alert) error {
	if a == nil {
		return &alert.ValidationError{Reason: "alert cannot be nil"}
	}

	if a.Code == "" {
		return &alert.ValidationError{Reason: "alert code cannot be empty"}
	}

	if a.Libelle == "" {
		return &alert.ValidationError{Reason: "alert libelle cannot be empty"}
	}

	for _, d := range a.Destinations {
		if _, ok := alert.ParseChannel(d.Channel); !ok {
			return &alert.ValidationError{Reason: fmt.Sprintf("invalid destination channel: %s", d.Channel)}
		}
		if d.Address == "" {
			return &alert.ValidationError{Reason: fmt.Sprintf("destination address cannot be empty for channel %s", d.Channel)}
		}
	}

	if err := alert.ValidateRule(a.Rule); err != nil {
		return err
	}

	return nil
}

func (s *AlertService) invalidate(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, alertCacheKey(code)); err != nil {
		s.logger.WithField("code", code).Warn("alert cache invalidation failed")
	}
}

func alertCacheKey(code string) string {
	return "alert:code:" + code
}
