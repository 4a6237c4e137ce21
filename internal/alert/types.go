package alert

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Channel is a delivery mechanism for alert notifications.
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelSMS     Channel = "sms"
	ChannelPush    Channel = "push"
	ChannelWebhook Channel = "webhook"
)

// Channels lists every supported delivery channel.
var Channels = []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelWebhook}

// ParseChannel maps a stored channel value to the closed enum.
func ParseChannel(s string) (Channel, bool) {
	switch Channel(s) {
	case ChannelEmail, ChannelSMS, ChannelPush, ChannelWebhook:
		return Channel(s), true
	}
	return "", false
}

// Destination is one (channel, address) delivery target.
type Destination struct {
	Channel Channel `json:"channel"`
	Address string  `json:"address"`
}

// Context is the open string-keyed map of business values a trigger carries.
// Recognized keys feed the format context; everything else passes through as
// a template variable.
type Context map[string]interface{}

// Float reads a numeric context value, tolerating the types JSON decoding
// and callers commonly produce.
func (c Context) Float(key string) (float64, bool) {
	v, ok := c[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String reads a string context value.
func (c Context) String(key string) (string, bool) {
	v, ok := c[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Time reads a time context value, accepting time.Time or a date string.
func (c Context) Time(key string) (time.Time, bool) {
	v, ok := c[key]
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// FormatContext is the structured subset of a trigger context used to build
// human-readable message bodies. Nil pointer fields contribute nothing to
// the rendered output.
type FormatContext struct {
	Label        string     `json:"label,omitempty"`
	Message      string     `json:"message,omitempty"`
	ContractRef  string     `json:"contract_ref,omitempty"`
	ContractName string     `json:"contract_name,omitempty"`
	CurrencyCode string     `json:"currency_code,omitempty"`
	Amount       *float64   `json:"amount,omitempty"`
	Balance      *float64   `json:"balance,omitempty"`
	Threshold    *float64   `json:"threshold,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
}

// ToFormatContext extracts the recognized formatting keys from the context.
func (c Context) ToFormatContext() *FormatContext {
	fc := &FormatContext{}
	if label, ok := c.String("label"); ok {
		fc.Label = label
	}
	if message, ok := c.String("message"); ok {
		fc.Message = message
	}
	if ref, ok := c.String("contractCode"); ok {
		fc.ContractRef = ref
	}
	if name, ok := c.String("contractLabel"); ok {
		fc.ContractName = name
	}
	if currency, ok := c.String("currencyCode"); ok {
		fc.CurrencyCode = currency
	}
	if amount, ok := c.Float("amount"); ok {
		fc.Amount = &amount
	}
	if balance, ok := c.Float("balance"); ok {
		fc.Balance = &balance
	}
	if threshold, ok := c.Float("threshold"); ok {
		fc.Threshold = &threshold
	}
	if deadline, ok := c.Time("deadline"); ok {
		fc.Deadline = &deadline
	}
	return fc
}

// Payload is the ephemeral trigger payload built for one dispatch.
type Payload struct {
	AlertCode    string            `json:"alert_code"`
	Subject      string            `json:"subject,omitempty"`
	Body         string            `json:"body"`
	Variables    map[string]string `json:"variables,omitempty"`
	Destinations []Destination     `json:"destinations,omitempty"`
	ContractID   string            `json:"contract_id,omitempty"`
	Format       *FormatContext    `json:"format_context,omitempty"`
}

// Notifier is the uniform send capability every delivery provider exposes.
type Notifier interface {
	Send(ctx context.Context, address, subject, body string) error
}

// UserNotifier is implemented by providers that can fan out to every
// registered endpoint of one user.
type UserNotifier interface {
	SendToUser(ctx context.Context, userID, subject, body string) error
}

// NotifierRegistry resolves the provider for a channel.
type NotifierRegistry interface {
	Notifier(channel Channel) (Notifier, bool)
}

// formatValue stringifies a context value for template substitution.
func formatValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("02/01/2006")
	default:
		return fmt.Sprintf("%v", v)
	}
}
