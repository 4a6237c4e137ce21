package alert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"finops-alerting/internal/logging"
	"finops-alerting/internal/models"
	"finops-alerting/internal/repository"

	"gorm.io/gorm"
)

// DeliveryHook observes every persisted delivery record, success or failure.
type DeliveryHook func(record *models.Notification)

// Engine is the trigger orchestrator: it evaluates rules, resolves
// destinations, renders bodies, dispatches to providers and writes the
// delivery audit trail.
type Engine struct {
	repo       *repository.Repository
	registry   NotifierRegistry
	renderer   *TemplateRenderer
	predicates *PredicateRegistry
	logger     *logging.Logger

	mu    sync.RWMutex
	hooks []DeliveryHook
}

// NewEngine creates a new alert engine
func NewEngine(repo *repository.Repository, registry NotifierRegistry, logger *logging.Logger) *Engine {
	return &Engine{
		repo:       repo,
		registry:   registry,
		renderer:   NewTemplateRenderer(repo.Template),
		predicates: NewPredicateRegistry(),
		logger:     logger.WithComponent("alert-engine"),
	}
}

// Predicates returns the custom rule predicate registry
func (e *Engine) Predicates() *PredicateRegistry {
	return e.predicates
}

// Registry returns the channel provider registry
func (e *Engine) Registry() NotifierRegistry {
	return e.registry
}

// Renderer returns the stored template renderer
func (e *Engine) Renderer() *TemplateRenderer {
	return e.renderer
}

// OnDelivery registers a hook called after every persisted delivery record
func (e *Engine) OnDelivery(hook DeliveryHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, hook)
}

// EvaluateRules decides whether the alert identified by code fires for the
// given context. A missing or inactive alert never fires.
func (e *Engine) EvaluateRules(ctx context.Context, code string, actx Context) (bool, error) {
	a, err := e.repo.Alert.GetAlertByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load alert %s: %w", code, err)
	}
	if !a.IsActive {
		return false, nil
	}
	return evaluateAlert(a, actx, e.predicates)
}

// TriggerByCode loads the alert, evaluates its rules against the context
// and dispatches when they fire. A missing or inactive alert, or rules that
// do not fire, is a silent no-op producing no delivery record. Overrides, if
// given, are merged over the generated payload.
func (e *Engine) TriggerByCode(ctx context.Context, code string, actx Context, overrides *Payload) error {
	a, err := e.repo.Alert.GetAlertByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			e.logger.Warnf("trigger for unknown alert code %q ignored", code)
			return nil
		}
		return fmt.Errorf("load alert %s: %w", code, err)
	}
	if !a.IsActive {
		return nil
	}

	fire, err := evaluateAlert(a, actx, e.predicates)
	if err != nil {
		return fmt.Errorf("evaluate rules for alert %s: %w", code, err)
	}
	if !fire {
		e.logger.WithField("code", code).Debug("alert rules did not fire")
		return nil
	}

	payload := buildPayload(a, actx)
	if overrides != nil {
		mergePayload(&payload, *overrides)
	}

	return e.TriggerAlert(ctx, a.ID, payload)
}

// TriggerAlert resolves the destinations of the alert and dispatches the
// payload to each, writing one delivery record per destination. A missing or
// inactive alert here is a configuration problem and returns an error.
func (e *Engine) TriggerAlert(ctx context.Context, alertID string, payload Payload) error {
	a, err := e.repo.Alert.GetAlertByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "alert", Key: alertID}
		}
		return fmt.Errorf("load alert %s: %w", alertID, err)
	}
	if !a.IsActive {
		return &ConfigurationError{Reason: fmt.Sprintf("alert %s is inactive", a.Code)}
	}

	destinations := e.resolveDestinations(a, payload)
	if len(destinations) == 0 {
		e.logger.WithField("code", a.Code).Warn("alert fired with no resolvable destinations")
		return nil
	}

	for _, dest := range destinations {
		// each destination gets its own failure boundary; only a failure to
		// persist the audit record escapes the loop
		if err := e.dispatch(ctx, a, payload, dest); err != nil {
			return err
		}
	}
	return nil
}

// resolveDestinations returns the delivery targets for one trigger. Payload
// destinations, when supplied, bypass the stored configuration entirely.
func (e *Engine) resolveDestinations(a *models.Alert, payload Payload) []Destination {
	if len(payload.Destinations) > 0 {
		return payload.Destinations
	}

	var destinations []Destination
	for _, d := range a.Destinations {
		if !d.IsActive {
			continue
		}
		channel, ok := ParseChannel(d.Channel)
		if !ok {
			e.logger.WithFields(map[string]interface{}{
				"code":    a.Code,
				"channel": d.Channel,
			}).Warn("dropping destination with unknown channel")
			continue
		}
		destinations = append(destinations, Destination{Channel: channel, Address: d.Address})
	}
	return destinations
}

func (e *Engine) dispatch(ctx context.Context, a *models.Alert, payload Payload, dest Destination) error {
	// body tracks the last completed pipeline stage so the audit row records
	// whatever had been produced when a later stage failed
	body := payload.Body
	if body == "" && payload.Format != nil {
		if dest.Channel == ChannelEmail {
			body = BuildBodyHTML(*payload.Format)
		} else {
			body = BuildBodyPlain(*payload.Format)
		}
	}
	body = Render(body, payload.Variables)
	subject := Render(payload.Subject, payload.Variables)

	var sendErr error
	notifier, ok := e.registry.Notifier(dest.Channel)
	if !ok {
		sendErr = &ConfigurationError{Channel: dest.Channel, Reason: "no provider registered"}
	} else {
		sendErr = e.send(ctx, notifier, dest, subject, body)
	}

	record := &models.Notification{
		AlertID: a.ID,
		Channel: string(dest.Channel),
		Address: dest.Address,
		Subject: subject,
		Body:    body,
	}
	if payload.ContractID != "" {
		contractID := payload.ContractID
		record.ContractID = &contractID
	}

	if sendErr != nil {
		record.Delivered = false
		record.Error = sendErr.Error()
		e.logger.WithFields(map[string]interface{}{
			"code":    a.Code,
			"channel": dest.Channel,
			"address": dest.Address,
		}).Error("alert delivery failed", sendErr)
	} else {
		now := time.Now()
		record.Delivered = true
		record.DeliveredAt = &now
	}

	if err := e.repo.Notification.SaveNotification(ctx, record); err != nil {
		return fmt.Errorf("save delivery record for alert %s: %w", a.Code, err)
	}

	e.emit(record)
	return nil
}

// send invokes the provider behind a recover guard so a panicking provider
// cannot break the per-destination isolation contract.
func (e *Engine) send(ctx context.Context, notifier Notifier, dest Destination, subject, body string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return notifier.Send(ctx, dest.Address, subject, body)
}

func (e *Engine) emit(record *models.Notification) {
	e.mu.RLock()
	hooks := make([]DeliveryHook, len(e.hooks))
	copy(hooks, e.hooks)
	e.mu.RUnlock()

	for _, hook := range hooks {
		hook(record)
	}
}

// buildPayload derives the default dispatch payload from the alert
// definition and the trigger context.
func buildPayload(a *models.Alert, actx Context) Payload {
	payload := Payload{
		AlertCode: a.Code,
		Subject:   a.Libelle,
		Variables: make(map[string]string, len(actx)),
		Format:    buildFormatContext(a, actx),
	}

	for key, value := range actx {
		payload.Variables[key] = formatValue(value)
	}
	if contractID, ok := actx.String("contractId"); ok {
		payload.ContractID = contractID
	}

	return payload
}

func buildFormatContext(a *models.Alert, actx Context) *FormatContext {
	fc := actx.ToFormatContext()
	if fc.Label == "" {
		fc.Label = a.Libelle
	}
	return fc
}

// mergePayload overlays caller overrides onto the generated payload.
func mergePayload(dst *Payload, overrides Payload) {
	if overrides.Subject != "" {
		dst.Subject = overrides.Subject
	}
	if overrides.Body != "" {
		dst.Body = overrides.Body
	}
	if overrides.ContractID != "" {
		dst.ContractID = overrides.ContractID
	}
	if len(overrides.Destinations) > 0 {
		dst.Destinations = overrides.Destinations
	}
	if overrides.Format != nil {
		dst.Format = overrides.Format
	}
	for key, value := range overrides.Variables {
		if dst.Variables == nil {
			dst.Variables = make(map[string]string)
		}
		dst.Variables[key] = value
	}
}
