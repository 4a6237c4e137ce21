package alert

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finops-alerting/internal/config"
	"finops-alerting/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotifier_Send(t *testing.T) {
	var received WebhookPayload
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(config.WebhookChannelConfig{Timeout: 5 * time.Second}, nil)

	err := notifier.Send(context.Background(), server.URL, "Alerte budget", "Consommation à 85%")

	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "Alerte budget", received.Subject)
	assert.Equal(t, "Consommation à 85%", received.Body)

	_, err = time.Parse(time.RFC3339, received.Timestamp)
	assert.NoError(t, err)
}

func TestWebhookNotifier_SignsWithSecret(t *testing.T) {
	var signature string
	var rawBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signature = r.Header.Get("X-Signature-256")
		rawBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(config.WebhookChannelConfig{Secret: "s3cret"}, nil)

	err := notifier.Send(context.Background(), server.URL, "s", "b")
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(rawBody)
	assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), signature)
}

func TestWebhookNotifier_NonSuccessStatusIsDeliveryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(config.WebhookChannelConfig{}, nil)

	err := notifier.Send(context.Background(), server.URL, "s", "b")

	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, ChannelWebhook, deliveryErr.Channel)
	assert.Equal(t, http.StatusInternalServerError, deliveryErr.StatusCode)
}

func TestWebhookNotifier_StoredSecretOverridesFallback(t *testing.T) {
	var signature string
	var rawBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signature = r.Header.Get("X-Signature-256")
		rawBody, _ = io.ReadAll(r.Body)
	}))
	defer server.Close()

	configs := &MockChannelConfigRepository{}
	configs.On("GetChannelConfig", mock.Anything, "webhook").Return(&models.ChannelConfig{
		Channel:     "webhook",
		Enabled:     true,
		Credentials: models.JSONMap{"secret": "stored"},
	}, nil)

	notifier := NewWebhookNotifier(config.WebhookChannelConfig{Secret: "fallback"}, configs)

	err := notifier.Send(context.Background(), server.URL, "s", "b")
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("stored"))
	mac.Write(rawBody)
	assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), signature)
	configs.AssertNumberOfCalls(t, "GetChannelConfig", 1)
}

func TestWebhookNotifier_DisabledChannelFailsFast(t *testing.T) {
	configs := &MockChannelConfigRepository{}
	configs.On("GetChannelConfig", mock.Anything, "webhook").Return(&models.ChannelConfig{
		Channel: "webhook",
		Enabled: false,
	}, nil)

	notifier := NewWebhookNotifier(config.WebhookChannelConfig{}, configs)

	err := notifier.Send(context.Background(), "http://unused.invalid", "s", "b")

	var configErr *ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, ChannelWebhook, configErr.Channel)
}
