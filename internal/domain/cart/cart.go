// Package cart holds the in-memory shopping cart and its discount state.
//
// A Cart is the single source of truth for money computations: every total
// shown to the customer is derived from it through Totals and never stored.
// A Cart is not safe for concurrent use; callers serialize access per session.
package cart

import (
	"github.com/shopspring/decimal"
)

// ChangeKind identifies what a cart mutation did.
type ChangeKind int

const (
	// Added means a line was created or its quantity incremented by Add.
	Added ChangeKind = iota + 1
	// Removed means a line was deleted, explicitly or by dropping to zero.
	Removed
	// Updated means a line's quantity changed and the line remains.
	Updated
	// Cleared means every line was removed and the discount reset.
	Cleared
	// Discounted means the discount state changed.
	Discounted
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Updated:
		return "updated"
	case Cleared:
		return "cleared"
	case Discounted:
		return "discounted"
	default:
		return "unknown"
	}
}

// Change describes a single cart mutation.
type Change struct {
	Kind ChangeKind
	// Line is a copy of the affected line. Zero for Cleared and Discounted.
	Line Line
}

// Listener is notified after every cart mutation.
type Listener func(Change)

// Line is one product's entry in the cart. Name and Price are copied from the
// catalog when the line is first created and do not follow later changes.
type Line struct {
	ProductID string
	Name      string
	Price     int64
	Quantity  int
}

// Total returns Price × Quantity.
func (l Line) Total() decimal.Decimal {
	return decimal.NewFromInt(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Discount is the rate applied uniformly to the cart subtotal, together with
// the code the customer last entered.
type Discount struct {
	Rate decimal.Decimal
	Code string
}

// Cart maps product identifiers to lines. Lines keep their insertion order so
// listings and composed messages are deterministic.
type Cart struct {
	lines    map[string]*Line
	order    []string
	discount Discount
	listener Listener
}

// New creates an empty cart. listener may be nil.
func New(listener Listener) *Cart {
	return &Cart{
		lines:    make(map[string]*Line),
		discount: Discount{Rate: decimal.Zero},
		listener: listener,
	}
}

// Add increments the quantity of an existing line or inserts a new line with
// quantity 1. The name and price of an existing line are left unchanged.
func (c *Cart) Add(id, name string, price int64) {
	l, ok := c.lines[id]
	if ok {
		l.Quantity++
	} else {
		l = &Line{ProductID: id, Name: name, Price: price, Quantity: 1}
		c.lines[id] = l
		c.order = append(c.order, id)
	}
	c.notify(Change{Kind: Added, Line: *l})
}

// Remove deletes the line for id. It reports whether a line was present; only
// a present line produces a notification.
func (c *Cart) Remove(id string) bool {
	l, ok := c.lines[id]
	if !ok {
		return false
	}
	delete(c.lines, id)
	for i, key := range c.order {
		if key == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.notify(Change{Kind: Removed, Line: *l})
	return true
}

// Adjust changes the quantity of the line for id by delta. A resulting
// quantity of zero or less removes the line. Unknown ids are ignored.
// The returned kind is Updated, Removed, or zero when nothing changed.
func (c *Cart) Adjust(id string, delta int) ChangeKind {
	l, ok := c.lines[id]
	if !ok {
		return 0
	}
	if l.Quantity+delta <= 0 {
		c.Remove(id)
		return Removed
	}
	l.Quantity += delta
	c.notify(Change{Kind: Updated, Line: *l})
	return Updated
}

// Clear empties the cart and resets the discount.
func (c *Cart) Clear() {
	c.lines = make(map[string]*Line)
	c.order = nil
	c.discount = Discount{Rate: decimal.Zero}
	c.notify(Change{Kind: Cleared})
}

// SetDiscount replaces the discount state. The rate must be within [0,1].
func (c *Cart) SetDiscount(rate decimal.Decimal, code string) {
	c.discount = Discount{Rate: rate, Code: code}
	c.notify(Change{Kind: Discounted})
}

// Discount returns the current discount state.
func (c *Cart) Discount() Discount {
	return c.discount
}

// Line returns a copy of the line for id.
func (c *Cart) Line(id string) (Line, bool) {
	l, ok := c.lines[id]
	if !ok {
		return Line{}, false
	}
	return *l, true
}

// Lines returns copies of all lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Count returns the total quantity across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) notify(ch Change) {
	if c.listener != nil {
		c.listener(ch)
	}
}
