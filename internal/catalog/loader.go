// Package catalog loads the product catalog from its source and renders it
// into storefront cards.
package catalog

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xenking/panel-storefront/internal/domain/product"
)

// ErrFetchFailed wraps every failure to fetch or decode the catalog.
var ErrFetchFailed = errors.New("catalog fetch failed")

// ErrNotLoaded is reported by Check before the first successful fetch.
var ErrNotLoaded = errors.New("catalog not loaded")

// Option configures a Loader.
type Option func(*Loader)

// WithTracerProvider sets the tracer provider used for fetch spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(l *Loader) {
		l.tracer = tp.Tracer("github.com/xenking/panel-storefront/internal/catalog")
	}
}

// Loader fetches the catalog and keeps the last successful fetch as a
// snapshot. Fetches are never retried; a failed fetch keeps the previous
// snapshot, which is empty until the first success.
type Loader struct {
	src      product.Repository
	tracer   trace.Tracer
	snapshot atomic.Pointer[[]product.Product]
	group    singleflight.Group
}

// NewLoader creates a Loader over src.
func NewLoader(src product.Repository, opts ...Option) *Loader {
	l := &Loader{src: src}
	WithTracerProvider(otel.GetTracerProvider())(l)
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load fetches the catalog once, replacing the snapshot on success.
// Concurrent calls share a single fetch, which is detached from the
// cancellation of whichever caller started it.
func (l *Loader) Load(ctx context.Context) ([]product.Product, error) {
	v, err, _ := l.group.Do("load", func() (any, error) {
		return l.fetch(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.([]product.Product), nil
}

func (l *Loader) fetch(ctx context.Context) ([]product.Product, error) {
	ctx, span := l.tracer.Start(ctx, "catalog.Load")
	defer span.End()

	lg := zctx.From(ctx)
	products, err := l.src.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		lg.Error("Catalog fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	span.SetAttributes(attribute.Int("catalog.products", len(products)))
	l.snapshot.Store(&products)
	lg.Info("Catalog loaded", zap.Int("products", len(products)))
	return products, nil
}

// Snapshot returns the last successfully fetched catalog. ok is false before
// the first success.
func (l *Loader) Snapshot() (products []product.Product, ok bool) {
	p := l.snapshot.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}

// Find looks id up in the snapshot, fetching the catalog first when no
// snapshot exists. Unknown ids return a *product.NotFoundError.
func (l *Loader) Find(ctx context.Context, id string) (product.Product, error) {
	products, ok := l.Snapshot()
	if !ok {
		var err error
		if products, err = l.Load(ctx); err != nil {
			return product.Product{}, err
		}
	}
	p, found := product.Find(products, id)
	if !found {
		return product.Product{}, &product.NotFoundError{ProductID: id}
	}
	return p, nil
}

// Render returns the cards for filter from the current snapshot. Without a
// snapshot the result is empty.
func (l *Loader) Render(filter product.Category) []Card {
	products, _ := l.Snapshot()
	return Render(products, filter)
}

// Check is a readiness probe reporting whether a snapshot exists.
func (l *Loader) Check(_ context.Context) error {
	if _, ok := l.Snapshot(); !ok {
		return ErrNotLoaded
	}
	return nil
}
