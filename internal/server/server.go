package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"finops-alerting/internal/alert"
	"finops-alerting/internal/cache"
	"finops-alerting/internal/config"
	"finops-alerting/internal/database"
	"finops-alerting/internal/logging"
	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"
	"finops-alerting/internal/repository/postgres"
	"finops-alerting/internal/service"
	"finops-alerting/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	config    *config.Config
	router    *gin.Engine
	logger    *logging.Logger
	db        *database.DB
	cache     *cache.RedisClient
	engine    *alert.Engine
	services  *service.Services
	wsService *websocket.Service
}

// New creates a new server instance
func New(cfg *config.Config, logger *logging.Logger) *Server {
	return &Server{
		config: cfg,
		router: gin.Default(),
		logger: logger.WithComponent("server"),
	}
}

// Router returns the gin router for testing purposes
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start wires the stack together, starts the HTTP listener and blocks until
// an interrupt triggers a graceful shutdown.
func (s *Server) Start() error {
	db, err := database.New(&s.config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	s.db = db

	repo := postgres.NewRepository(db.DB)

	// Redis is optional; without it alert lookups hit the database directly
	redisCache, err := cache.New(&s.config.Redis)
	if err != nil {
		s.logger.Warnf("Redis unavailable, continuing without cache: %v", err)
	} else {
		s.cache = redisCache
	}

	registry := alert.NewChannelRegistry(&s.config.Channels, repo.ChannelConfig, repo.PushSubscription, s.logger)
	s.engine = alert.NewEngine(repo, registry, s.logger)

	s.wsService = websocket.NewService(s.logger)
	if err := s.wsService.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start delivery feed: %w", err)
	}
	s.engine.OnDelivery(s.wsService.BroadcastDelivery)

	if s.cache != nil {
		s.services = service.NewServicesWithCache(repo, s.engine, s.cache, s.logger)
	} else {
		s.services = service.NewServices(repo, s.engine, s.logger)
	}

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		s.logger.Infof("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", err)
	}

	if err := s.wsService.Stop(); err != nil {
		s.logger.Error("Error stopping delivery feed", err)
	}

	if err := s.db.Close(); err != nil {
		s.logger.Error("Error closing database", err)
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Error("Error closing Redis", err)
		}
	}

	s.logger.Info("Server exited")
	return nil
}

// SetupRoutes configures the API routes (public for testing)
func (s *Server) SetupRoutes() {
	s.setupRoutes()
}

func (s *Server) setupRoutes() {
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		// Alert definition endpoints
		v1.POST("/alerts", s.handleCreateAlert)
		v1.GET("/alerts", s.handleGetAlerts)
		v1.GET("/alerts/:id", s.handleGetAlert)
		v1.PUT("/alerts/:id", s.handleUpdateAlert)
		v1.DELETE("/alerts/:id", s.handleDeleteAlert)
		v1.POST("/alerts/:id/trigger", s.handleTriggerAlert)
		v1.POST("/alerts/:id/test", s.handleTestAlert)
		v1.POST("/triggers", s.handleTriggerByCode)

		// Template endpoints
		v1.POST("/templates", s.handleCreateTemplate)
		v1.GET("/templates", s.handleGetTemplates)
		v1.GET("/templates/:code", s.handleGetTemplate)
		v1.PUT("/templates/:code", s.handleUpdateTemplate)
		v1.DELETE("/templates/:code", s.handleDeleteTemplate)
		v1.POST("/templates/:code/preview", s.handlePreviewTemplate)

		// Channel configuration endpoints
		v1.GET("/channels", s.handleGetChannels)
		v1.GET("/channel-configs", s.handleGetChannelConfigs)
		v1.PUT("/channel-configs/:channel", s.handleUpsertChannelConfig)

		// Delivery audit trail
		v1.GET("/notifications", s.handleGetNotifications)

		// Push subscriptions
		v1.POST("/push-subscriptions", s.handleRegisterPushSubscription)
		v1.DELETE("/push-subscriptions/:id", s.handleDeactivatePushSubscription)
	}

	// Real-time delivery feed
	s.router.GET("/ws", func(c *gin.Context) {
		s.wsService.Hub().ServeWS(c.Writer, c.Request)
	})
	s.router.GET("/ws/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.wsService.ConnectionStats())
	})
}

// Request/Response structures

// DestinationRequest is one delivery target in an alert definition
type DestinationRequest struct {
	Channel  string `json:"channel" binding:"required"`
	Address  string `json:"address" binding:"required"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// AlertRequest represents the request body for creating/updating alerts
type AlertRequest struct {
	Code         string               `json:"code" binding:"required"`
	Libelle      string               `json:"libelle" binding:"required"`
	Rule         models.JSONMap       `json:"rule,omitempty"`
	Thresholds   models.FloatMap      `json:"thresholds,omitempty"`
	Destinations []DestinationRequest `json:"destinations"`
	IsActive     *bool                `json:"is_active,omitempty"`
}

// TriggerRequest represents an explicit dispatch of one alert
type TriggerRequest struct {
	Subject      string                 `json:"subject,omitempty"`
	Body         string                 `json:"body,omitempty"`
	Variables    map[string]string      `json:"variables,omitempty"`
	ContractID   string                 `json:"contract_id,omitempty"`
	Destinations []DestinationRequest   `json:"destinations,omitempty"`
	Format       map[string]interface{} `json:"format,omitempty"`
}

// TriggerByCodeRequest represents a rule-evaluated trigger
type TriggerByCodeRequest struct {
	Code      string                 `json:"code" binding:"required"`
	Context   map[string]interface{} `json:"context"`
	Overrides *TriggerRequest        `json:"overrides,omitempty"`
}

// TemplateRequest represents the request body for creating/updating templates
type TemplateRequest struct {
	Code    string  `json:"code" binding:"required"`
	Subject *string `json:"subject,omitempty"`
	Body    string  `json:"body" binding:"required"`
}

// ChannelConfigRequest represents stored provider configuration
type ChannelConfigRequest struct {
	Enabled     bool           `json:"enabled"`
	Credentials models.JSONMap `json:"credentials"`
}

// PushSubscriptionRequest represents a push subscription registration
type PushSubscriptionRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Endpoint string `json:"endpoint" binding:"required"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// API handlers

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := s.db.Health(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	cacheStatus := "disabled"
	if s.cache != nil {
		cacheStatus = "healthy"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}

// handleCreateAlert handles POST /api/v1/alerts
func (s *Server) handleCreateAlert(c *gin.Context) {
	ctx := c.Request.Context()

	var req AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	a := req.toModel()
	if err := s.services.Alert.CreateAlert(ctx, a); err != nil {
		s.sendServiceError(c, "ALERT_CREATION_FAILED", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Alert created successfully",
		"alert":   a,
	})
}

// handleGetAlerts handles GET /api/v1/alerts
func (s *Server) handleGetAlerts(c *gin.Context) {
	ctx := c.Request.Context()

	alerts, err := s.services.Alert.GetAlerts(ctx)
	if err != nil {
		s.sendErrorResponse(c, http.StatusInternalServerError, "ALERTS_FETCH_FAILED",
			fmt.Sprintf("Failed to fetch alerts: %v", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"alerts":  alerts,
		"total":   len(alerts),
	})
}

// handleGetAlert handles GET /api/v1/alerts/:id
func (s *Server) handleGetAlert(c *gin.Context) {
	ctx := c.Request.Context()

	a, err := s.services.Alert.GetAlert(ctx, c.Param("id"))
	if err != nil {
		s.sendErrorResponse(c, http.StatusNotFound, "ALERT_NOT_FOUND",
			fmt.Sprintf("Alert not found: %v", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"alert":   a,
	})
}

// handleUpdateAlert handles PUT /api/v1/alerts/:id
func (s *Server) handleUpdateAlert(c *gin.Context) {
	ctx := c.Request.Context()

	var req AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	existing, err := s.services.Alert.GetAlert(ctx, c.Param("id"))
	if err != nil {
		s.sendErrorResponse(c, http.StatusNotFound, "ALERT_NOT_FOUND",
			fmt.Sprintf("Alert not found: %v", err))
		return
	}

	updated := req.toModel()
	updated.ID = existing.ID
	if err := s.services.Alert.UpdateAlert(ctx, updated); err != nil {
		s.sendServiceError(c, "ALERT_UPDATE_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Alert updated successfully",
		"alert":   updated,
	})
}

// handleDeleteAlert handles DELETE /api/v1/alerts/:id
func (s *Server) handleDeleteAlert(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.services.Alert.DeleteAlert(ctx, c.Param("id")); err != nil {
		s.sendServiceError(c, "ALERT_DELETION_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Alert deleted successfully",
	})
}

// handleTriggerAlert handles POST /api/v1/alerts/:id/trigger
func (s *Server) handleTriggerAlert(c *gin.Context) {
	ctx := c.Request.Context()

	var req TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	payload, err := req.toPayload()
	if err != nil {
		s.sendErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if err := s.services.Alert.Trigger(ctx, c.Param("id"), payload); err != nil {
		s.sendServiceError(c, "ALERT_TRIGGER_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Alert dispatched",
	})
}

// handleTriggerByCode handles POST /api/v1/triggers
func (s *Server) handleTriggerByCode(c *gin.Context) {
	ctx := c.Request.Context()

	var req TriggerByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	var overrides *alert.Payload
	if req.Overrides != nil {
		payload, err := req.Overrides.toPayload()
		if err != nil {
			s.sendErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		overrides = &payload
	}

	if err := s.services.Alert.TriggerByCode(ctx, req.Code, alert.Context(req.Context), overrides); err != nil {
		s.sendServiceError(c, "ALERT_TRIGGER_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Trigger evaluated",
	})
}

// handleTestAlert handles POST /api/v1/alerts/:id/test
func (s *Server) handleTestAlert(c *gin.Context) {
	ctx := c.Request.Context()

	results, err := s.services.Alert.TestAlert(ctx, c.Param("id"))
	if err != nil {
		s.sendServiceError(c, "ALERT_TEST_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Test notifications sent",
		"results": results,
	})
}

// Template handlers

// handleCreateTemplate handles POST /api/v1/templates
func (s *Server) handleCreateTemplate(c *gin.Context) {
	ctx := c.Request.Context()

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	template := &models.Template{
		Code:    req.Code,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if err := s.services.Template.CreateTemplate(ctx, template); err != nil {
		s.sendServiceError(c, "TEMPLATE_CREATION_FAILED", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Template created successfully",
		"template": template,
	})
}

// handleGetTemplates handles GET /api/v1/templates
func (s *Server) handleGetTemplates(c *gin.Context) {
	ctx := c.Request.Context()

	templates, err := s.services.Template.GetTemplates(ctx)
	if err != nil {
		s.sendErrorResponse(c, http.StatusInternalServerError, "TEMPLATES_FETCH_FAILED",
			fmt.Sprintf("Failed to fetch templates: %v", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"templates": templates,
		"total":     len(templates),
	})
}

// handleGetTemplate handles GET /api/v1/templates/:code
func (s *Server) handleGetTemplate(c *gin.Context) {
	ctx := c.Request.Context()

	template, err := s.services.Template.GetTemplateByCode(ctx, c.Param("code"))
	if err != nil {
		s.sendErrorResponse(c, http.StatusNotFound, "TEMPLATE_NOT_FOUND",
			fmt.Sprintf("Template not found: %v", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"template": template,
	})
}

// handleUpdateTemplate handles PUT /api/v1/templates/:code
func (s *Server) handleUpdateTemplate(c *gin.Context) {
	ctx := c.Request.Context()

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	existing, err := s.services.Template.GetTemplateByCode(ctx, c.Param("code"))
	if err != nil {
		s.sendErrorResponse(c, http.StatusNotFound, "TEMPLATE_NOT_FOUND",
			fmt.Sprintf("Template not found: %v", err))
		return
	}

	existing.Subject = req.Subject
	existing.Body = req.Body
	if err := s.services.Template.UpdateTemplate(ctx, existing); err != nil {
		s.sendServiceError(c, "TEMPLATE_UPDATE_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Template updated successfully",
		"template": existing,
	})
}

// handleDeleteTemplate handles DELETE /api/v1/templates/:code
func (s *Server) handleDeleteTemplate(c *gin.Context) {
	ctx := c.Request.Context()

	template, err := s.services.Template.GetTemplateByCode(ctx, c.Param("code"))
	if err != nil {
		s.sendErrorResponse(c, http.StatusNotFound, "TEMPLATE_NOT_FOUND",
			fmt.Sprintf("Template not found: %v", err))
		return
	}

	if err := s.services.Template.DeleteTemplate(ctx, template.ID); err != nil {
		s.sendServiceError(c, "TEMPLATE_DELETION_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Template deleted successfully",
	})
}

// handlePreviewTemplate handles POST /api/v1/templates/:code/preview
func (s *Server) handlePreviewTemplate(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		Variables map[string]string `json:"variables"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	subject, body, err := s.services.Template.Preview(ctx, c.Param("code"), req.Variables)
	if err != nil {
		s.sendServiceError(c, "TEMPLATE_PREVIEW_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"subject": subject,
		"body":    body,
	})
}

// Channel handlers

// handleGetChannels handles GET /api/v1/channels
func (s *Server) handleGetChannels(c *gin.Context) {
	channels := make([]string, 0, len(alert.Channels))
	for _, channel := range alert.Channels {
		channels = append(channels, string(channel))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"channels": channels,
	})
}

// handleGetChannelConfigs handles GET /api/v1/channel-configs
func (s *Server) handleGetChannelConfigs(c *gin.Context) {
	ctx := c.Request.Context()

	configs, err := s.services.Channel.GetChannelConfigs(ctx)
	if err != nil {
		s.sendErrorResponse(c, http.StatusInternalServerError, "CHANNEL_CONFIGS_FETCH_FAILED",
			fmt.Sprintf("Failed to fetch channel configs: %v", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"configs": configs,
	})
}

// handleUpsertChannelConfig handles PUT /api/v1/channel-configs/:channel
func (s *Server) handleUpsertChannelConfig(c *gin.Context) {
	ctx := c.Request.Context()

	var req ChannelConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	cfg := &models.ChannelConfig{
		Channel:     c.Param("channel"),
		Enabled:     req.Enabled,
		Credentials: req.Credentials,
	}
	if err := s.services.Channel.UpsertChannelConfig(ctx, cfg); err != nil {
		s.sendServiceError(c, "CHANNEL_CONFIG_UPSERT_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Channel configuration saved",
		"config":  cfg,
	})
}

// Notification handlers

// handleGetNotifications handles GET /api/v1/notifications
func (s *Server) handleGetNotifications(c *gin.Context) {
	ctx := c.Request.Context()

	filter, err := s.parseNotificationsQuery(c)
	if err != nil {
		s.sendErrorResponse(c, http.StatusBadRequest, "INVALID_QUERY_PARAMS", err.Error())
		return
	}

	page, err := s.services.Notification.GetNotifications(ctx, filter)
	if err != nil {
		s.sendErrorResponse(c, http.StatusInternalServerError, "NOTIFICATIONS_QUERY_FAILED",
			fmt.Sprintf("Failed to query notifications: %v", err))
		return
	}

	c.JSON(http.StatusOK, page)
}

// Push subscription handlers

// handleRegisterPushSubscription handles POST /api/v1/push-subscriptions
func (s *Server) handleRegisterPushSubscription(c *gin.Context) {
	ctx := c.Request.Context()

	var req PushSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	sub := &models.PushSubscription{
		UserID:   req.UserID,
		Endpoint: req.Endpoint,
		P256dh:   req.P256dh,
		Auth:     req.Auth,
	}
	if err := s.services.Channel.RegisterPushSubscription(ctx, sub); err != nil {
		s.sendServiceError(c, "PUSH_SUBSCRIPTION_FAILED", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"message":      "Push subscription registered",
		"subscription": sub,
	})
}

// handleDeactivatePushSubscription handles DELETE /api/v1/push-subscriptions/:id
func (s *Server) handleDeactivatePushSubscription(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.services.Channel.DeactivatePushSubscription(ctx, c.Param("id")); err != nil {
		s.sendServiceError(c, "PUSH_SUBSCRIPTION_DEACTIVATION_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Push subscription deactivated",
	})
}

// Helper functions

func (req *AlertRequest) toModel() *models.Alert {
	a := &models.Alert{
		Code:       req.Code,
		Libelle:    req.Libelle,
		Rule:       req.Rule,
		Thresholds: req.Thresholds,
		IsActive:   true,
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}

	for _, d := range req.Destinations {
		dest := models.AlertDestination{
			Channel:  d.Channel,
			Address:  d.Address,
			IsActive: true,
		}
		if d.IsActive != nil {
			dest.IsActive = *d.IsActive
		}
		a.Destinations = append(a.Destinations, dest)
	}
	return a
}

func (req *TriggerRequest) toPayload() (alert.Payload, error) {
	payload := alert.Payload{
		Subject:    req.Subject,
		Body:       req.Body,
		Variables:  req.Variables,
		ContractID: req.ContractID,
	}

	for _, d := range req.Destinations {
		channel, ok := alert.ParseChannel(d.Channel)
		if !ok {
			return payload, fmt.Errorf("invalid destination channel: %s", d.Channel)
		}
		payload.Destinations = append(payload.Destinations, alert.Destination{
			Channel: channel,
			Address: d.Address,
		})
	}

	if req.Format != nil {
		payload.Format = alert.Context(req.Format).ToFormatContext()
	}

	return payload, nil
}

// parseNotificationsQuery parses query parameters for the audit trail
func (s *Server) parseNotificationsQuery(c *gin.Context) (repository.NotificationFilter, error) {
	var filter repository.NotificationFilter

	filter.AlertID = c.Query("alert_id")
	filter.Channel = c.Query("channel")

	if deliveredStr := c.Query("delivered"); deliveredStr != "" {
		delivered, err := strconv.ParseBool(deliveredStr)
		if err != nil {
			return filter, fmt.Errorf("invalid delivered format: %v", err)
		}
		filter.Delivered = &delivered
	}

	if startTimeStr := c.Query("start_time"); startTimeStr != "" {
		startTime, err := time.Parse(time.RFC3339, startTimeStr)
		if err != nil {
			return filter, fmt.Errorf("invalid start_time format: %v", err)
		}
		filter.StartTime = &startTime
	}

	if endTimeStr := c.Query("end_time"); endTimeStr != "" {
		endTime, err := time.Parse(time.RFC3339, endTimeStr)
		if err != nil {
			return filter, fmt.Errorf("invalid end_time format: %v", err)
		}
		filter.EndTime = &endTime
	}

	page := 1
	if pageStr := c.Query("page"); pageStr != "" {
		var err error
		page, err = strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return filter, fmt.Errorf("invalid page number: %s", pageStr)
		}
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 500 {
			return filter, fmt.Errorf("invalid limit (must be 1-500): %s", limitStr)
		}
	}

	filter.Limit = limit
	filter.Offset = (page - 1) * limit
	return filter, nil
}

// sendServiceError maps domain errors to HTTP status codes
func (s *Server) sendServiceError(c *gin.Context, errorCode string, err error) {
	var notFound *alert.NotFoundError
	var validation *alert.ValidationError
	var configuration *alert.ConfigurationError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound) || errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.As(err, &configuration):
		status = http.StatusUnprocessableEntity
	}

	s.sendErrorResponse(c, status, errorCode, err.Error())
}

// sendErrorResponse sends a standardized error response
func (s *Server) sendErrorResponse(c *gin.Context, statusCode int, errorCode, message string) {
	response := ErrorResponse{
		Error:   errorCode,
		Message: message,
		Code:    statusCode,
	}
	c.JSON(statusCode, response)
}
