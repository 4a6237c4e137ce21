package alert

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		expected string
	}{
		{"Base currency no decimals", 1234567, "XOF", "1 234 567 FCFA"},
		{"Euro two decimals", 1234.5, "EUR", "1 234,50 €"},
		{"Dollar", 999999.99, "USD", "999 999,99 $"},
		{"Small base amount", 500, "XOF", "500 FCFA"},
		{"Unknown code falls back to raw code", 1500, "CHF", "1 500,00 CHF"},
		{"Negative amount", -12500, "XOF", "-12 500 FCFA"},
		{"Rounding", 1234.567, "EUR", "1 234,57 €"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAmount(tt.amount, tt.currency))
		})
	}
}

func TestBuildBodyPlain(t *testing.T) {
	amount := 2500000.0
	balance := 400000.0
	deadline := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	fc := FormatContext{
		Label:        "Dépassement de seuil",
		Message:      "Le seuil d'engagement est dépassé",
		ContractRef:  "M-2026-042",
		ContractName: "Réhabilitation RN4",
		Amount:       &amount,
		Balance:      &balance,
		Deadline:     &deadline,
	}

	body := BuildBodyPlain(fc)
	lines := strings.Split(body, "\n")

	assert.Equal(t, []string{
		"Le seuil d'engagement est dépassé",
		"Marché : Réhabilitation RN4 (M-2026-042)",
		"Montant : 2 500 000 FCFA",
		"Solde actuel : 400 000 FCFA",
		"Échéance : 30/09/2026",
	}, lines)
}

func TestBuildBodyPlain_OmitsAbsentFields(t *testing.T) {
	fc := FormatContext{Label: "Alerte trésorerie"}

	body := BuildBodyPlain(fc)

	assert.Equal(t, "Alerte trésorerie", body)
	assert.NotContains(t, body, "Montant")
	assert.NotContains(t, body, "Solde")
	assert.NotContains(t, body, "Seuil")
	assert.NotContains(t, body, "Échéance")
}

func TestBuildBodyPlain_MessageFallsBackToLabel(t *testing.T) {
	threshold := 1000000.0
	fc := FormatContext{Label: "Seuil budget", Threshold: &threshold, CurrencyCode: "EUR"}

	body := BuildBodyPlain(fc)

	assert.Equal(t, "Seuil budget\nSeuil : 1 000 000,00 €", body)
}

func TestBuildBodyHTML_EscapesUserText(t *testing.T) {
	fc := FormatContext{
		Label:       `<script>alert("x")</script>`,
		Message:     `Montant & solde <b>critique</b>`,
		ContractRef: `"M-01"`,
	}

	body := BuildBodyHTML(fc)

	assert.Contains(t, body, "&lt;script&gt;")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&amp; solde &lt;b&gt;")
	assert.Contains(t, body, "&#34;M-01&#34;")
}

func TestBuildBodyHTML_RowsPresent(t *testing.T) {
	amount := 75000.5
	fc := FormatContext{
		Label:        "Paiement en attente",
		Amount:       &amount,
		CurrencyCode: "EUR",
	}

	body := BuildBodyHTML(fc)

	assert.Contains(t, body, "Paiement en attente")
	assert.Contains(t, body, "Montant")
	assert.Contains(t, body, "75 000,50 €")
	assert.NotContains(t, body, "Solde actuel")
}
