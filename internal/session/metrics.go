package session

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/xenking/panel-storefront/internal/session"

type metrics struct {
	cartChanges metric.Int64Counter
	coupons     metric.Int64Counter
	checkouts   metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter(meterName)

	var (
		m   metrics
		err error
	)
	if m.cartChanges, err = meter.Int64Counter("storefront.cart.changes",
		metric.WithDescription("Cart mutations by kind"),
	); err != nil {
		return nil, err
	}
	if m.coupons, err = meter.Int64Counter("storefront.coupon.applications",
		metric.WithDescription("Coupon applications by result"),
	); err != nil {
		return nil, err
	}
	if m.checkouts, err = meter.Int64Counter("storefront.checkouts",
		metric.WithDescription("Checkout attempts by result"),
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *metrics) cartChanged(ctx context.Context, kind string) {
	m.cartChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *metrics) couponApplied(ctx context.Context, result string) {
	m.coupons.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *metrics) checkout(ctx context.Context, result string) {
	m.checkouts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
