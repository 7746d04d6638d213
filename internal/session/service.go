package session

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/panel-storefront/internal/catalog"
	"github.com/xenking/panel-storefront/internal/domain/cart"
	"github.com/xenking/panel-storefront/internal/domain/checkout"
	"github.com/xenking/panel-storefront/internal/domain/coupon"
	"github.com/xenking/panel-storefront/internal/domain/product"
	"github.com/xenking/panel-storefront/internal/money"
)

// Notification texts shown to visitors.
const (
	msgAdded          = "%s telah ditambahkan ke keranjang"
	msgRemoved        = "Produk telah dihapus dari keranjang"
	msgEnterCoupon    = "Masukkan kode kupon"
	msgCouponApplied  = "Kupon berhasil diterapkan! Diskon %s%%"
	msgCouponInvalid  = "Kode kupon tidak valid"
	msgCouponFailed   = "Kupon tidak dapat diperiksa, coba lagi"
	msgEnterName      = "Masukkan nama penerima"
	msgCartEmpty      = "Keranjang belanja kosong"
	msgCleared        = "Keranjang telah dikosongkan"
	msgCatalogFailed  = "Gagal memuat produk, coba lagi"
	msgDeliveryFailed = "Pesanan gagal dikirim, coba lagi"
)

// Catalog is the part of the catalog loader the service needs.
type Catalog interface {
	Find(ctx context.Context, id string) (product.Product, error)
	Render(filter product.Category) []catalog.Card
}

var _ Catalog = (*catalog.Loader)(nil)

// Service implements the visitor actions on a Session.
type Service struct {
	catalog Catalog
	coupons *coupon.Evaluator
	sink    checkout.Sink
	metrics *metrics
}

// NewService creates a Service. A nil meter provider disables metrics.
func NewService(cat Catalog, coupons *coupon.Evaluator, sink checkout.Sink, mp metric.MeterProvider) (*Service, error) {
	m, err := newMetrics(mp)
	if err != nil {
		return nil, errors.Wrap(err, "create metrics")
	}
	return &Service{
		catalog: cat,
		coupons: coupons,
		sink:    sink,
		metrics: m,
	}, nil
}

// Products renders the catalog cards for filter.
func (svc *Service) Products(filter product.Category) []catalog.Card {
	return svc.catalog.Render(filter)
}

// Product resolves a product for the detail view without touching a session.
func (svc *Service) Product(ctx context.Context, id string) (product.Product, error) {
	return svc.catalog.Find(ctx, id)
}

// AddToCart adds one unit of the catalog product id. Name and price come
// from the catalog. Unknown ids are a logged no-op.
func (svc *Service) AddToCart(ctx context.Context, s *Session, id string) Notification {
	p, err := svc.catalog.Find(ctx, id)
	if err != nil {
		return svc.lookupFailed(ctx, id, err)
	}

	s.mu.Lock()
	s.cart.Add(p.ID, p.Name, p.Price)
	s.mu.Unlock()

	svc.metrics.cartChanged(ctx, cart.Added.String())
	return Notification{Message: fmt.Sprintf(msgAdded, p.Name)}
}

// ShowDetail resolves id and remembers it as the product in detail. Unknown
// ids are a logged no-op and leave the previous detail in place.
func (svc *Service) ShowDetail(ctx context.Context, s *Session, id string) (product.Product, Notification, bool) {
	p, err := svc.catalog.Find(ctx, id)
	if err != nil {
		return product.Product{}, svc.lookupFailed(ctx, id, err), false
	}

	s.mu.Lock()
	s.detail = &p
	s.mu.Unlock()
	return p, Notification{}, true
}

// CloseDetail forgets the product in detail.
func (svc *Service) CloseDetail(s *Session) {
	s.mu.Lock()
	s.detail = nil
	s.mu.Unlock()
}

// AddFromDetail re-resolves the product in detail against the catalog, adds
// it to the cart and closes the detail. Without a product in detail, or when
// it has left the catalog, nothing happens.
func (svc *Service) AddFromDetail(ctx context.Context, s *Session) Notification {
	s.mu.Lock()
	var id string
	if s.detail != nil {
		id = s.detail.ID
	}
	s.mu.Unlock()

	if id == "" {
		return Notification{}
	}
	n := svc.AddToCart(ctx, s, id)
	if !n.IsError() && !n.Empty() {
		svc.CloseDetail(s)
	}
	return n
}

// Increase adds one unit to the line for id.
func (svc *Service) Increase(ctx context.Context, s *Session, id string) Notification {
	return svc.adjust(ctx, s, id, 1)
}

// Decrease removes one unit from the line for id, dropping the line at zero.
func (svc *Service) Decrease(ctx context.Context, s *Session, id string) Notification {
	return svc.adjust(ctx, s, id, -1)
}

func (svc *Service) adjust(ctx context.Context, s *Session, id string, delta int) Notification {
	s.mu.Lock()
	kind := s.cart.Adjust(id, delta)
	s.mu.Unlock()

	switch kind {
	case cart.Removed:
		svc.metrics.cartChanged(ctx, kind.String())
		return Notification{Message: msgRemoved, Alert: true}
	case cart.Updated:
		svc.metrics.cartChanged(ctx, kind.String())
	}
	return Notification{}
}

// Remove deletes the line for id. Absent lines are ignored silently.
func (svc *Service) Remove(ctx context.Context, s *Session, id string) Notification {
	s.mu.Lock()
	removed := s.cart.Remove(id)
	s.mu.Unlock()

	if !removed {
		return Notification{}
	}
	svc.metrics.cartChanged(ctx, cart.Removed.String())
	return Notification{Message: msgRemoved, Alert: true}
}

// Clear empties the cart, resets the discount and the coupon input.
func (svc *Service) Clear(ctx context.Context, s *Session) Notification {
	s.mu.Lock()
	s.cart.Clear()
	s.couponInput = ""
	s.mu.Unlock()

	svc.metrics.cartChanged(ctx, cart.Cleared.String())
	return Notification{Message: msgCleared, Alert: true}
}

// ApplyCoupon evaluates raw and updates the cart discount.
func (svc *Service) ApplyCoupon(ctx context.Context, s *Session, raw string) Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.couponInput = raw
	rule, err := svc.coupons.Apply(ctx, raw, s.cart)
	switch {
	case err == nil:
		svc.metrics.couponApplied(ctx, "applied")
		return Notification{Message: fmt.Sprintf(msgCouponApplied, money.Percent(rule.Rate))}
	case errors.Is(err, coupon.ErrEmptyCoupon):
		svc.metrics.couponApplied(ctx, "empty")
		return Notification{Message: msgEnterCoupon, Err: err}
	case errors.Is(err, coupon.ErrInvalidCoupon):
		svc.metrics.couponApplied(ctx, "invalid")
		return Notification{Message: msgCouponInvalid, Err: err}
	default:
		svc.metrics.couponApplied(ctx, "error")
		zctx.From(ctx).Error("Coupon lookup failed", zap.Error(err))
		return Notification{Message: msgCouponFailed, Err: err}
	}
}

// CheckoutResult is the outcome of a successful checkout.
type CheckoutResult struct {
	Message  string
	Delivery checkout.Delivery
}

// Checkout composes the order message for the session cart and hands it to
// the sink. The cart is left as is.
func (svc *Service) Checkout(ctx context.Context, s *Session, name string) (CheckoutResult, Notification) {
	s.mu.Lock()
	msg, err := checkout.Compose(checkout.Order{
		CustomerName: name,
		Lines:        s.cart.Lines(),
		Totals:       s.cart.Totals(),
		CouponCode:   coupon.Normalize(s.couponInput),
	})
	s.mu.Unlock()

	switch {
	case errors.Is(err, checkout.ErrMissingName):
		svc.metrics.checkout(ctx, "missing_name")
		return CheckoutResult{}, Notification{Message: msgEnterName, Err: err}
	case errors.Is(err, checkout.ErrEmptyCart):
		svc.metrics.checkout(ctx, "empty_cart")
		return CheckoutResult{}, Notification{Message: msgCartEmpty, Err: err}
	case err != nil:
		return CheckoutResult{}, Notification{Message: msgDeliveryFailed, Err: err}
	}

	delivery, err := svc.sink.Deliver(ctx, msg)
	if err != nil {
		svc.metrics.checkout(ctx, "delivery_failed")
		zctx.From(ctx).Error("Order delivery failed", zap.Error(err))
		return CheckoutResult{}, Notification{Message: msgDeliveryFailed, Err: errors.Wrap(err, "deliver order")}
	}

	svc.metrics.checkout(ctx, "sent")
	return CheckoutResult{Message: msg, Delivery: delivery}, Notification{}
}

// lookupFailed maps a catalog lookup error to a notification. Unknown
// products are silent.
func (svc *Service) lookupFailed(ctx context.Context, id string, err error) Notification {
	lg := zctx.From(ctx)
	if errors.Is(err, product.ErrNotFound) {
		lg.Warn("Product not found", zap.String("product_id", id))
		return Notification{}
	}
	lg.Error("Product lookup failed", zap.String("product_id", id), zap.Error(err))
	return Notification{Message: msgCatalogFailed, Err: err}
}
