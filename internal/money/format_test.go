package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		want   string
	}{
		{name: "zero", amount: decimal.Zero, want: "Rp0"},
		{name: "below a thousand", amount: decimal.NewFromInt(999), want: "Rp999"},
		{name: "thousand", amount: decimal.NewFromInt(1000), want: "Rp1.000"},
		{name: "ten thousand", amount: decimal.NewFromInt(10000), want: "Rp10.000"},
		{name: "millions", amount: decimal.NewFromInt(1234567), want: "Rp1.234.567"},
		{name: "fractional discount", amount: decimal.RequireFromString("1234.5"), want: "Rp1.234,5"},
		{name: "negative", amount: decimal.NewFromInt(-2500), want: "-Rp2.500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.amount))
		})
	}
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "Rp22.500", FormatInt(22500))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "10", Percent(decimal.RequireFromString("0.1")))
	assert.Equal(t, "20", Percent(decimal.RequireFromString("0.20")))
	assert.Equal(t, "12.5", Percent(decimal.RequireFromString("0.125")))
	assert.Equal(t, "0", Percent(decimal.Zero))
}
