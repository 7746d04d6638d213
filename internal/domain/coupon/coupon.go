package coupon

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyCoupon is returned when the entered code is blank.
	ErrEmptyCoupon = errors.New("coupon code is empty")
	// ErrInvalidCoupon is returned when a coupon code is not found.
	ErrInvalidCoupon = errors.New("invalid coupon code")
	// ErrRateOutOfRange is returned for rules whose rate is outside [0,1].
	ErrRateOutOfRange = errors.New("discount rate out of range")
)

var one = decimal.NewFromInt(1)

// Rule maps a canonical (uppercase) code to the fraction of the subtotal it
// takes off.
type Rule struct {
	Code        string
	Rate        decimal.Decimal
	Description string
}

// Validate checks the rule's code and rate.
func (r Rule) Validate() error {
	if r.Code == "" || r.Code != Normalize(r.Code) {
		return errors.Errorf("coupon code %q is not canonical", r.Code)
	}
	if r.Rate.IsNegative() || r.Rate.GreaterThan(one) {
		return errors.Wrapf(ErrRateOutOfRange, "coupon %s rate %s", r.Code, r.Rate)
	}
	return nil
}

// Normalize trims whitespace and uppercases a customer-entered code.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Repository provides lookup of coupon rules by their canonical code.
// FindByCode returns ErrInvalidCoupon when no rule matches.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
}
