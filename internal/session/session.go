// Package session holds per-visitor storefront state and the operations
// triggered by visitor actions.
package session

import (
	"sync"
	"time"

	"github.com/xenking/panel-storefront/internal/domain/cart"
	"github.com/xenking/panel-storefront/internal/domain/product"
)

// Notification is the transient message shown after an action. The zero
// value means nothing is shown.
type Notification struct {
	Message string
	// Alert marks messages styled as warnings, which includes every failure.
	Alert bool
	// Err classifies failures; nil for informational messages.
	Err error
}

// IsError reports whether the notification describes a failure.
func (n Notification) IsError() bool { return n.Err != nil }

// IsAlert reports whether the notification is styled as a warning.
func (n Notification) IsAlert() bool { return n.Alert || n.Err != nil }

// Empty reports whether there is nothing to show.
func (n Notification) Empty() bool { return n.Message == "" }

// Session is the state of one visitor: the cart, the coupon input, the
// product currently shown in detail and a pending notification.
// All access goes through its methods or the Service, which serialize on mu.
type Session struct {
	ID string

	mu          sync.Mutex
	cart        *cart.Cart
	view        CartView
	couponInput string
	detail      *product.Product
	flash       Notification
	lastSeen    time.Time
}

func newSession(id string, now time.Time) *Session {
	s := &Session{ID: id, lastSeen: now}
	s.cart = cart.New(func(cart.Change) {
		s.view = RenderCart(s.cart)
	})
	s.view = RenderCart(s.cart)
	return s
}

// State is a consistent copy of a session for rendering.
type State struct {
	Cart        CartView
	CouponInput string
	Detail      *product.Product
	Notice      Notification
}

// EmptyState is the state of a visitor without a session.
func EmptyState() State {
	return State{Cart: RenderCart(cart.New(nil))}
}

// State returns the current state without consuming the pending notification.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// TakeState returns the current state and clears the pending notification.
func (s *Session) TakeState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state()
	s.flash = Notification{}
	return st
}

// Flash stores n to be shown by the next TakeState. An empty n keeps the
// pending notification.
func (s *Session) Flash(n Notification) {
	if n.Empty() {
		return
	}
	s.mu.Lock()
	s.flash = n
	s.mu.Unlock()
}

// Cart returns the current cart view.
func (s *Session) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Session) state() State {
	st := State{
		Cart:        s.view,
		CouponInput: s.couponInput,
		Notice:      s.flash,
	}
	if s.detail != nil {
		d := *s.detail
		st.Detail = &d
	}
	return st
}
