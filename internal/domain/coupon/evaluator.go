package coupon

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Discounter receives the outcome of a coupon evaluation.
type Discounter interface {
	SetDiscount(rate decimal.Decimal, code string)
}

// Evaluator validates customer-entered codes against a Repository.
type Evaluator struct {
	repo Repository
}

// NewEvaluator creates an Evaluator backed by the given Repository.
func NewEvaluator(repo Repository) *Evaluator {
	return &Evaluator{repo: repo}
}

// Apply normalizes raw and applies the matching rule to d.
//
// Blank input returns ErrEmptyCoupon and leaves d untouched. A known code sets
// its rate. An unknown code resets the rate to zero, so a previously applied
// coupon is dropped, and returns ErrInvalidCoupon. Lookup failures other than
// ErrInvalidCoupon leave d untouched.
func (e *Evaluator) Apply(ctx context.Context, raw string, d Discounter) (*Rule, error) {
	code := Normalize(raw)
	if code == "" {
		return nil, ErrEmptyCoupon
	}

	rule, err := e.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCoupon) {
			d.SetDiscount(decimal.Zero, code)
			return nil, ErrInvalidCoupon
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	d.SetDiscount(rule.Rate, rule.Code)
	return rule, nil
}
