// Package money formats rupiah amounts for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Format renders amount as rupiah with dot-grouped thousands, e.g. Rp10.000.
// A fractional part, which only appears on discounts, uses a comma separator.
func Format(amount decimal.Decimal) string {
	var b strings.Builder
	if amount.IsNegative() {
		b.WriteByte('-')
		amount = amount.Neg()
	}
	b.WriteString("Rp")

	whole, frac, _ := strings.Cut(amount.String(), ".")
	writeGrouped(&b, whole)
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatInt renders an integer amount in the smallest currency unit.
func FormatInt(amount int64) string {
	return Format(decimal.NewFromInt(amount))
}

// Percent renders a rate in [0,1] as a whole percentage without the sign,
// e.g. 0.1 becomes "10".
func Percent(rate decimal.Decimal) string {
	return rate.Mul(hundred).String()
}

func writeGrouped(b *strings.Builder, digits string) {
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
}
