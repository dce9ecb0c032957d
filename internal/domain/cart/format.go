package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol is prefixed to displayed prices
const CurrencySymbol = "S/."

// FormatPrice renders an amount for display.
// Example: 1234.5 -> "S/. 1,234.50"
func FormatPrice(d decimal.Decimal) string {
	return CurrencySymbol + " " + formatAmount(d)
}

func formatAmount(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	parts := strings.Split(d.StringFixed(2), ".")
	intPart := parts[0]
	decPart := "00"
	if len(parts) > 1 {
		decPart = parts[1]
	}

	var result strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}

	return sign + result.String() + "." + decPart
}
