package alert

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// BaseCurrency is the platform's accounting currency; amounts in it are
// displayed without decimals.
const BaseCurrency = "XOF"

var currencySymbols = map[string]string{
	"XOF": "FCFA",
	"XAF": "FCFA",
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"MAD": "DH",
	"NGN": "₦",
}

// FormatAmount renders a monetary amount with space-grouped thousands and a
// comma decimal separator, followed by the display symbol of the currency.
// Unknown currency codes fall back to the raw code.
func FormatAmount(amount float64, currencyCode string) string {
	decimals := 2
	if currencyCode == BaseCurrency {
		decimals = 0
	}

	symbol, ok := currencySymbols[currencyCode]
	if !ok {
		symbol = currencyCode
	}

	return groupDigits(amount, decimals) + " " + symbol
}

func groupDigits(amount float64, decimals int) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	formatted := strconv.FormatFloat(amount, 'f', decimals, 64)
	intPart := formatted
	fracPart := ""
	if i := strings.IndexByte(formatted, '.'); i >= 0 {
		intPart, fracPart = formatted[:i], formatted[i+1:]
	}

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(' ')
		}
		grouped.WriteRune(digit)
	}

	result := grouped.String()
	if fracPart != "" {
		result += "," + fracPart
	}
	if negative {
		result = "-" + result
	}
	return result
}

// BuildBodyPlain renders a format context as the plain-text body used for
// SMS, push and webhook deliveries. Absent fields contribute no line at all.
func BuildBodyPlain(fc FormatContext) string {
	currency := fc.CurrencyCode
	if currency == "" {
		currency = BaseCurrency
	}

	var lines []string
	if intro := introLine(fc); intro != "" {
		lines = append(lines, intro)
	}
	if ref := contractLine(fc); ref != "" {
		lines = append(lines, "Marché : "+ref)
	}
	if fc.Amount != nil {
		lines = append(lines, "Montant : "+FormatAmount(*fc.Amount, currency))
	}
	if fc.Balance != nil {
		lines = append(lines, "Solde actuel : "+FormatAmount(*fc.Balance, currency))
	}
	if fc.Threshold != nil {
		lines = append(lines, "Seuil : "+FormatAmount(*fc.Threshold, currency))
	}
	if fc.Deadline != nil {
		lines = append(lines, "Échéance : "+fc.Deadline.Format("02/01/2006"))
	}

	return strings.Join(lines, "\n")
}

// BuildBodyHTML renders a format context as the styled HTML body used for
// email deliveries. All user-supplied text is HTML-escaped before
// interpolation.
func BuildBodyHTML(fc FormatContext) string {
	currency := fc.CurrencyCode
	if currency == "" {
		currency = BaseCurrency
	}

	type row struct{ label, value string }
	var rows []row
	if ref := contractLine(fc); ref != "" {
		rows = append(rows, row{"Marché", html.EscapeString(ref)})
	}
	if fc.Amount != nil {
		rows = append(rows, row{"Montant", html.EscapeString(FormatAmount(*fc.Amount, currency))})
	}
	if fc.Balance != nil {
		rows = append(rows, row{"Solde actuel", html.EscapeString(FormatAmount(*fc.Balance, currency))})
	}
	if fc.Threshold != nil {
		rows = append(rows, row{"Seuil", html.EscapeString(FormatAmount(*fc.Threshold, currency))})
	}
	if fc.Deadline != nil {
		rows = append(rows, row{"Échéance", fc.Deadline.Format("02/01/2006")})
	}

	var rowsHTML strings.Builder
	for _, r := range rows {
		rowsHTML.WriteString(fmt.Sprintf(`
            <tr>
                <td style="padding: 8px 12px; font-weight: bold; color: #333; border-bottom: 1px solid #eee;">%s</td>
                <td style="padding: 8px 12px; color: #555; border-bottom: 1px solid #eee;">%s</td>
            </tr>`, r.label, r.value))
	}

	header := html.EscapeString(fc.Label)
	if header == "" {
		header = "Alerte"
	}

	introHTML := ""
	if fc.Message != "" {
		introHTML = fmt.Sprintf(`
        <p style="color: #333; margin: 16px 0;">%s</p>`, html.EscapeString(fc.Message))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; margin: 20px;">
    <div style="border: 1px solid #ddd; border-radius: 5px; max-width: 600px;">
        <div style="background-color: #1a3a6b; color: white; padding: 12px 20px; border-radius: 5px 5px 0 0;">
            <h2 style="margin: 0; font-size: 18px;">%s</h2>
        </div>
        <div style="padding: 4px 20px 20px 20px;">%s
        <table style="width: 100%%; border-collapse: collapse; margin-top: 12px;">%s
        </table>
        </div>
    </div>
</body>
</html>`, header, introHTML, rowsHTML.String())
}

func introLine(fc FormatContext) string {
	if fc.Message != "" {
		return fc.Message
	}
	return fc.Label
}

func contractLine(fc FormatContext) string {
	switch {
	case fc.ContractName != "" && fc.ContractRef != "":
		return fc.ContractName + " (" + fc.ContractRef + ")"
	case fc.ContractName != "":
		return fc.ContractName
	default:
		return fc.ContractRef
	}
}
