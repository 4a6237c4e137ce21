package alert

import "fmt"

// ConfigurationError signals a disabled channel, missing credentials or a
// broken alert definition. Raised outside the per-destination loop it
// propagates; raised inside it is recorded on the delivery record.
type ConfigurationError struct {
	Channel Channel
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Channel != "" {
		return fmt.Sprintf("channel %s: %s", e.Channel, e.Reason)
	}
	return e.Reason
}

// NotFoundError signals an unknown alert or template identifier.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// ValidationError signals a malformed delivery input, such as a bad push
// subscription payload or incomplete SMS credentials.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// DeliveryError signals that a provider rejected the send.
type DeliveryError struct {
	Channel    Channel
	Address    string
	StatusCode int
	Reason     string
	Err        error
}

func (e *DeliveryError) Error() string {
	msg := fmt.Sprintf("delivery via %s to %s failed", e.Channel, e.Address)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
