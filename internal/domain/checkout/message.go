// Package checkout composes the order summary handed to the messaging channel.
package checkout

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/panel-storefront/internal/domain/cart"
	"github.com/xenking/panel-storefront/internal/money"
)

// Sentinel errors for order composition.
var (
	ErrMissingName = errors.New("customer name required")
	ErrEmptyCart   = errors.New("cart is empty")
)

const (
	greeting = "Halo, saya ingin memesan Panel Pterodactyl:"
	closing  = "Mohon info lebih lanjut mengenai pembayaran. Terima kasih!"
)

// Order is the input of Compose.
type Order struct {
	CustomerName string
	Lines        []cart.Line
	Totals       cart.Totals
	CouponCode   string
}

// Compose builds the human-readable order message. The output depends only on
// its input: lines appear in the given order.
func Compose(o Order) (string, error) {
	name := strings.TrimSpace(o.CustomerName)
	if name == "" {
		return "", ErrMissingName
	}
	if len(o.Lines) == 0 {
		return "", ErrEmptyCart
	}

	var b strings.Builder
	b.WriteString(greeting)
	b.WriteString("\n\n")
	b.WriteString("Nama: *" + name + "*\n\n")
	b.WriteString("*Detail Pesanan:*\n")
	for _, l := range o.Lines {
		b.WriteString("➤ ")
		b.WriteString(l.Name)
		b.WriteString(" (")
		b.WriteString(money.FormatInt(l.Price))
		b.WriteString(" x ")
		b.WriteString(strconv.Itoa(l.Quantity))
		b.WriteString(") = ")
		b.WriteString(money.Format(l.Total()))
		b.WriteByte('\n')
	}

	b.WriteString("\n*Ringkasan Pembayaran:*\n")
	b.WriteString("Subtotal: " + money.Format(o.Totals.Subtotal) + "\n")
	b.WriteString("Diskon: " + money.Format(o.Totals.Discount) + "\n")
	b.WriteString("*Total: " + money.Format(o.Totals.Total) + "*\n\n")

	if code := strings.TrimSpace(o.CouponCode); code != "" {
		b.WriteString("Kode Kupon: " + code + "\n\n")
	}

	b.WriteString(closing)
	return b.String(), nil
}
