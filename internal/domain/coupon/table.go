package coupon

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var _ Repository = (*Table)(nil)

// Table is an immutable in-memory coupon lookup.
type Table struct {
	rules map[string]Rule
}

// NewTable builds a table from rules. Codes must be canonical and unique.
func NewTable(rules ...Rule) (*Table, error) {
	t := &Table{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.rules[r.Code]; dup {
			return nil, errors.Errorf("duplicate coupon code %s", r.Code)
		}
		t.rules[r.Code] = r
	}
	return t, nil
}

// DefaultRules are the storefront's built-in coupons.
func DefaultRules() []Rule {
	return []Rule{
		{Code: "DINZID", Rate: decimal.RequireFromString("0.2"), Description: "Diskon 20%"},
		{Code: "YOIMIYA", Rate: decimal.RequireFromString("0.1"), Description: "Diskon 10%"},
		{Code: "PREMIUM10", Rate: decimal.RequireFromString("0.1"), Description: "Diskon 10%"},
	}
}

// DefaultTable returns a table holding DefaultRules.
func DefaultTable() *Table {
	t, err := NewTable(DefaultRules()...)
	if err != nil {
		panic(err)
	}
	return t
}

// FindByCode looks up a canonical code.
func (t *Table) FindByCode(_ context.Context, code string) (*Rule, error) {
	r, ok := t.rules[code]
	if !ok {
		return nil, ErrInvalidCoupon
	}
	return &r, nil
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.rules)
}
