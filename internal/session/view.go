package session

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/panel-storefront/internal/domain/cart"
	"github.com/xenking/panel-storefront/internal/money"
)

// LineView is one cart row as displayed.
type LineView struct {
	ProductID string
	Name      string
	Price     int64
	PriceText string
	Quantity  int
	Total     decimal.Decimal
	TotalText string
}

// CartView is the displayed cart, derived in full from a cart.Cart.
type CartView struct {
	Lines        []LineView
	Count        int
	Empty        bool
	Totals       cart.Totals
	SubtotalText string
	DiscountText string
	TotalText    string
	Rate         decimal.Decimal
	CouponCode   string
}

// RenderCart derives the cart view from c. It never reuses a previous view.
func RenderCart(c *cart.Cart) CartView {
	lines := c.Lines()
	totals := cart.ComputeTotals(lines, c.Discount().Rate)

	v := CartView{
		Lines:        make([]LineView, len(lines)),
		Count:        c.Count(),
		Empty:        len(lines) == 0,
		Totals:       totals,
		SubtotalText: money.Format(totals.Subtotal),
		DiscountText: money.Format(totals.Discount),
		TotalText:    money.Format(totals.Total),
		Rate:         c.Discount().Rate,
		CouponCode:   c.Discount().Code,
	}
	for i, l := range lines {
		v.Lines[i] = LineView{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			PriceText: money.FormatInt(l.Price),
			Quantity:  l.Quantity,
			Total:     l.Total(),
			TotalText: money.Format(l.Total()),
		}
	}
	return v
}
