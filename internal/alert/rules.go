package alert

import (
	"encoding/json"
	"fmt"
	"sync"

	"finops-alerting/internal/models"
)

// PredicateFunc evaluates a custom rule against the trigger context. It must
// be pure: no I/O, no mutation of the context.
type PredicateFunc func(ctx Context) bool

// PredicateRegistry holds named predicate functions resolved by id at
// evaluation time. Rules reference predicates by name; configuration never
// carries executable code.
type PredicateRegistry struct {
	mu         sync.RWMutex
	predicates map[string]PredicateFunc
}

// NewPredicateRegistry creates an empty predicate registry
func NewPredicateRegistry() *PredicateRegistry {
	return &PredicateRegistry{predicates: make(map[string]PredicateFunc)}
}

// Register adds or replaces a named predicate
func (r *PredicateRegistry) Register(id string, fn PredicateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predicates[id] = fn
}

// Get resolves a predicate by id
func (r *PredicateRegistry) Get(id string) (PredicateFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.predicates[id]
	return fn, ok
}

const (
	ruleTypeThreshold = "threshold"
	ruleTypeCustom    = "custom"
)

// ruleSpec is the tagged shape stored in the alert's jsonb rule column.
type ruleSpec struct {
	Type      string  `json:"type"`
	Field     string  `json:"field"`
	Operator  string  `json:"operator"`
	Value     float64 `json:"value"`
	Predicate string  `json:"predicate"`
}

// ValidateRule checks that a stored rule document has a recognized shape.
// A nil rule is valid; the alert then falls back to thresholds or fires
// unconditionally.
func ValidateRule(rule models.JSONMap) error {
	if rule == nil {
		return nil
	}
	raw, err := json.Marshal(rule)
	if err != nil {
		return &ValidationError{Reason: "rule is not a JSON document: " + err.Error()}
	}
	var spec ruleSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return &ValidationError{Reason: "malformed rule document: " + err.Error()}
	}

	switch spec.Type {
	case ruleTypeThreshold:
		if spec.Field == "" {
			return &ValidationError{Reason: "threshold rule requires a field"}
		}
		if spec.Operator != "<" {
			return &ValidationError{Reason: fmt.Sprintf("unsupported rule operator %q", spec.Operator)}
		}
	case ruleTypeCustom:
		if spec.Predicate == "" {
			return &ValidationError{Reason: "custom rule requires a predicate name"}
		}
	default:
		return &ValidationError{Reason: fmt.Sprintf("unknown rule type %q", spec.Type)}
	}
	return nil
}

// evaluateAlert decides whether an alert fires for the given context.
// An alert with neither a rule nor thresholds always fires. A malformed
// rule or an unknown predicate is a configuration error and propagates.
func evaluateAlert(a *models.Alert, actx Context, predicates *PredicateRegistry) (bool, error) {
	if a.Rule != nil {
		raw, err := json.Marshal(a.Rule)
		if err != nil {
			return false, fmt.Errorf("marshal rule for alert %s: %w", a.Code, err)
		}
		var spec ruleSpec
		if err := json.Unmarshal(raw, &spec); err != nil {
			return false, fmt.Errorf("parse rule for alert %s: %w", a.Code, err)
		}

		switch spec.Type {
		case ruleTypeThreshold:
			if spec.Operator != "<" {
				return false, &ConfigurationError{Reason: fmt.Sprintf("alert %s: unsupported rule operator %q", a.Code, spec.Operator)}
			}
			value, ok := actx.Float(spec.Field)
			if !ok {
				return false, nil
			}
			return value < spec.Value, nil
		case ruleTypeCustom:
			fn, ok := predicates.Get(spec.Predicate)
			if !ok {
				return false, &ConfigurationError{Reason: fmt.Sprintf("alert %s: unknown predicate %q", a.Code, spec.Predicate)}
			}
			return fn(actx), nil
		default:
			return false, &ConfigurationError{Reason: fmt.Sprintf("alert %s: unknown rule type %q", a.Code, spec.Type)}
		}
	}

	if len(a.Thresholds) > 0 {
		// fires on the first key whose context value meets or exceeds its
		// threshold; not all thresholds need to pass
		for key, threshold := range a.Thresholds {
			if value, ok := actx.Float(key); ok && value >= threshold {
				return true, nil
			}
		}
		return false, nil
	}

	return true, nil
}
