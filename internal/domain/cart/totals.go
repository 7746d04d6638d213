package cart

import "github.com/shopspring/decimal"

// Totals holds the money figures derived from a cart.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Totals computes subtotal = Σ price × quantity, discount = subtotal × rate
// and total = subtotal − discount. Arithmetic is exact.
func (c *Cart) Totals() Totals {
	return ComputeTotals(c.Lines(), c.discount.Rate)
}

// ComputeTotals applies rate to the given lines.
func ComputeTotals(lines []Line, rate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	discount := subtotal.Mul(rate)
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}
