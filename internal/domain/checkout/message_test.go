package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/panel-storefront/internal/domain/cart"
)

func sampleLines() []cart.Line {
	return []cart.Line{
		{ProductID: "a", Name: "Panel 1GB", Price: 10000, Quantity: 2},
		{ProductID: "b", Name: "Panel 2GB", Price: 5000, Quantity: 1},
	}
}

func TestCompose(t *testing.T) {
	lines := sampleLines()
	totals := cart.ComputeTotals(lines, decimal.RequireFromString("0.1"))

	msg, err := Compose(Order{
		CustomerName: "  Budi ",
		Lines:        lines,
		Totals:       totals,
		CouponCode:   "PREMIUM10",
	})
	require.NoError(t, err)

	want := "Halo, saya ingin memesan Panel Pterodactyl:\n\n" +
		"Nama: *Budi*\n\n" +
		"*Detail Pesanan:*\n" +
		"➤ Panel 1GB (Rp10.000 x 2) = Rp20.000\n" +
		"➤ Panel 2GB (Rp5.000 x 1) = Rp5.000\n" +
		"\n*Ringkasan Pembayaran:*\n" +
		"Subtotal: Rp25.000\n" +
		"Diskon: Rp2.500\n" +
		"*Total: Rp22.500*\n\n" +
		"Kode Kupon: PREMIUM10\n\n" +
		"Mohon info lebih lanjut mengenai pembayaran. Terima kasih!"
	assert.Equal(t, want, msg)
}

func TestCompose_NoCouponLine(t *testing.T) {
	lines := sampleLines()
	msg, err := Compose(Order{
		CustomerName: "Budi",
		Lines:        lines,
		Totals:       cart.ComputeTotals(lines, decimal.Zero),
	})
	require.NoError(t, err)
	assert.NotContains(t, msg, "Kode Kupon")
	assert.Contains(t, msg, "Diskon: Rp0\n")
}

func TestCompose_Deterministic(t *testing.T) {
	lines := sampleLines()
	o := Order{CustomerName: "Budi", Lines: lines, Totals: cart.ComputeTotals(lines, decimal.Zero)}

	first, err := Compose(o)
	require.NoError(t, err)
	for range 20 {
		got, err := Compose(o)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestCompose_Errors(t *testing.T) {
	tests := []struct {
		name    string
		order   Order
		wantErr error
	}{
		{
			name:    "empty name with items",
			order:   Order{CustomerName: "", Lines: sampleLines()},
			wantErr: ErrMissingName,
		},
		{
			name:    "whitespace name",
			order:   Order{CustomerName: " \t ", Lines: sampleLines()},
			wantErr: ErrMissingName,
		},
		{
			name:    "empty cart",
			order:   Order{CustomerName: "Budi"},
			wantErr: ErrEmptyCart,
		},
		{
			name:    "missing name wins over empty cart",
			order:   Order{},
			wantErr: ErrMissingName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Compose(tt.order)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, msg)
		})
	}
}

func TestSinkFunc(t *testing.T) {
	var got string
	sink := SinkFunc(func(_ context.Context, message string) (Delivery, error) {
		got = message
		return Delivery{URL: "https://example.test"}, nil
	})

	d, err := sink.Deliver(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, "https://example.test", d.URL)
}
