package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"finops-alerting/internal/alert"
	"finops-alerting/internal/config"

	"github.com/gorilla/mux"
)

// Demo run: renders a treasury alert body, then delivers it to a local
// webhook sink so the full dispatch path can be watched without a database
// or an external provider.
func main() {
	fmt.Println("=== Financial Alerting - Dispatch Demo ===")

	sink := startWebhookSink("127.0.0.1:8089")
	defer sink.Shutdown(context.Background())

	// 1. Template rendering
	fmt.Println("\n1. Template rendering:")
	body := alert.Render(
		"Bonjour {{responsable}}, le solde du marché {{marche}} est passé sous le seuil.",
		map[string]string{
			"responsable": "Awa",
			"marche":      "Route Nationale 4",
		},
	)
	fmt.Printf("   %s\n", body)

	// 2. Amount formatting
	fmt.Println("\n2. Amount formatting:")
	for _, example := range []struct {
		amount   float64
		currency string
	}{
		{1234567, "XOF"},
		{1234.5, "EUR"},
		{999999.99, "USD"},
	} {
		fmt.Printf("   %.2f %s -> %s\n", example.amount, example.currency,
			alert.FormatAmount(example.amount, example.currency))
	}

	// 3. Structured body generation
	fmt.Println("\n3. Structured body:")
	balance := 42000.0
	threshold := 100000.0
	deadline := time.Now().AddDate(0, 1, 0)
	fc := alert.FormatContext{
		Label:        "Alerte trésorerie basse",
		ContractName: "Route Nationale 4",
		ContractRef:  "RN4-2025",
		Balance:      &balance,
		Threshold:    &threshold,
		Deadline:     &deadline,
	}
	fmt.Println(alert.BuildBodyPlain(fc))

	// 4. Webhook delivery to the local sink
	fmt.Println("\n4. Webhook delivery:")
	notifier := alert.NewWebhookNotifier(config.WebhookChannelConfig{
		Secret:  "demo-secret",
		Timeout: 5 * time.Second,
	}, nil)

	err := notifier.Send(context.Background(),
		"http://127.0.0.1:8089/hooks/finance", fc.Label, alert.BuildBodyPlain(fc))
	if err != nil {
		log.Fatalf("webhook delivery failed: %v", err)
	}

	// give the sink handler time to print
	time.Sleep(100 * time.Millisecond)
	fmt.Println("\nDemo complete.")
}

// startWebhookSink runs a local receiver that prints every alert it gets.
func startWebhookSink(addr string) *http.Server {
	router := mux.NewRouter()
	router.HandleFunc("/hooks/finance", func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var payload alert.WebhookPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		fmt.Printf("   sink received: subject=%q signature=%s\n",
			payload.Subject, r.Header.Get("X-Signature-256")[:23]+"...")
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPost)

	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("webhook sink failed: %v", err)
		}
	}()

	// wait for the listener to come up
	time.Sleep(50 * time.Millisecond)
	return srv
}
