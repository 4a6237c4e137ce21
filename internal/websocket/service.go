package websocket

import (
	"context"
	"time"

	"finops-alerting/internal/logging"
	"finops-alerting/internal/models"
)

// Service exposes the real-time delivery feed. It subscribes to the alert
// engine's delivery hook and mirrors every audit record to connected clients.
type Service struct {
	hub    *Hub
	logger *logging.Logger
}

// NewService creates a new delivery feed service
func NewService(logger *logging.Logger) *Service {
	return &Service{
		hub:    NewHub(logger),
		logger: logger.WithComponent("ws-service"),
	}
}

// Start starts the hub loop
func (s *Service) Start(ctx context.Context) error {
	go s.hub.Run()
	return nil
}

// Stop shuts the hub down
func (s *Service) Stop() error {
	s.hub.Shutdown()
	return nil
}

// Hub returns the hub for HTTP handler registration
func (s *Service) Hub() *Hub {
	return s.hub
}

// BroadcastDelivery mirrors one delivery record to the feed. Wire it into the
// engine with OnDelivery.
func (s *Service) BroadcastDelivery(record *models.Notification) {
	data := map[string]interface{}{
		"id":        record.ID,
		"alertId":   record.AlertID,
		"channel":   record.Channel,
		"address":   record.Address,
		"subject":   record.Subject,
		"delivered": record.Delivered,
	}
	if record.DeliveredAt != nil {
		data["deliveredAt"] = record.DeliveredAt.Format(time.RFC3339)
	}
	if record.Error != "" {
		data["error"] = record.Error
	}
	if record.ContractID != nil {
		data["contractId"] = *record.ContractID
	}

	if err := s.hub.Broadcast("delivery", data); err != nil {
		s.logger.Error("failed to broadcast delivery record", err)
	}
}

// ConnectionStats returns feed connection statistics
func (s *Service) ConnectionStats() map[string]interface{} {
	return map[string]interface{}{
		"connectedClients": s.hub.ClientCount(),
		"hubStatus":        "running",
	}
}
