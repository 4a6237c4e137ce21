package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"finops-alerting/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMSNotifier_Send(t *testing.T) {
	var received smsRequest
	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	notifier := NewSMSNotifier(config.SMSChannelConfig{
		APIURL: server.URL,
		APIKey: "key-123",
		Sender: "FINOPS",
	}, nil)

	err := notifier.Send(context.Background(), "+221771234567", "ignoré", "Solde sous le seuil")

	require.NoError(t, err)
	assert.Equal(t, "Bearer key-123", authorization)
	assert.Equal(t, "+221771234567", received.To)
	assert.Equal(t, "FINOPS", received.From)
	assert.Equal(t, "Solde sous le seuil", received.Message)
}

func TestSMSNotifier_GatewayErrorIncludesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(smsResponse{Status: "error", Message: "invalid recipient"})
	}))
	defer server.Close()

	notifier := NewSMSNotifier(config.SMSChannelConfig{APIURL: server.URL, APIKey: "k"}, nil)

	err := notifier.Send(context.Background(), "+221000000000", "", "b")

	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, http.StatusBadGateway, deliveryErr.StatusCode)
	assert.Contains(t, deliveryErr.Error(), "invalid recipient")
}

func TestSMSNotifier_MissingGatewayURL(t *testing.T) {
	notifier := NewSMSNotifier(config.SMSChannelConfig{APIKey: "k"}, nil)

	err := notifier.Send(context.Background(), "+221771234567", "", "b")

	var configErr *ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, ChannelSMS, configErr.Channel)
}

func TestSMSNotifier_MissingAPIKey(t *testing.T) {
	notifier := NewSMSNotifier(config.SMSChannelConfig{APIURL: "http://gateway.invalid"}, nil)

	err := notifier.Send(context.Background(), "+221771234567", "", "b")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Error(), "api_key")
}

func TestSMSNotifier_InitErrorIsSticky(t *testing.T) {
	notifier := NewSMSNotifier(config.SMSChannelConfig{}, nil)

	first := notifier.Send(context.Background(), "+221771234567", "", "b")
	second := notifier.Send(context.Background(), "+221771234567", "", "b")

	assert.Equal(t, first, second)
}
