// Package app wires the storefront server from its configuration.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/xenking/panel-storefront/internal/catalog"
	"github.com/xenking/panel-storefront/internal/domain/checkout"
	"github.com/xenking/panel-storefront/internal/domain/coupon"
	"github.com/xenking/panel-storefront/internal/domain/product"
	"github.com/xenking/panel-storefront/internal/handler"
	"github.com/xenking/panel-storefront/internal/session"
	"github.com/xenking/panel-storefront/internal/storage/postgres"
	"github.com/xenking/panel-storefront/internal/telegram"
	"github.com/xenking/panel-storefront/pkg/health"
	"github.com/xenking/panel-storefront/pkg/httpmiddleware"
	"github.com/xenking/panel-storefront/web"
)

const sessionSweepInterval = time.Minute

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("catalog", cfg.Catalog.Source),
		zap.String("coupons", cfg.Coupons.Source),
		zap.String("messaging", cfg.Messaging.Kind),
	)
	ctx = zctx.Base(ctx, lg)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc_pause", time.Second, health.GCMaxPauseCheck(time.Second))

	// PostgreSQL pool + migrations, only when a source reads from it.
	var pool *pgxpool.Pool
	if cfg.NeedsDatabase() {
		var err error
		if pool, err = postgres.NewPool(ctx, cfg.DatabaseURL); err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	}

	// Catalog.
	src, err := newCatalogSource(cfg.Catalog, pool, httpClient)
	if err != nil {
		return errors.Wrap(err, "create catalog source")
	}
	loader := catalog.NewLoader(src, catalog.WithTracerProvider(m.TracerProvider()))
	if _, err := loader.Load(ctx); err != nil {
		// The storefront still serves an empty catalog; lookups re-fetch.
		lg.Warn("Initial catalog load failed", zap.Error(err))
	}
	healthSvc.AddReadinessCheck("catalog", time.Second, loader.Check)

	// Coupons and checkout sink.
	var coupons coupon.Repository = coupon.DefaultTable()
	if cfg.Coupons.Source == SourcePostgres {
		coupons = postgres.NewCouponRepository(pool)
	}
	sink, err := newSink(cfg.Messaging, httpClient)
	if err != nil {
		return errors.Wrap(err, "create checkout sink")
	}

	svc, err := session.NewService(loader, coupon.NewEvaluator(coupons), sink, m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create session service")
	}
	store := session.NewStore(cfg.Session.TTL)
	go store.Run(ctx, sessionSweepInterval)

	limiter := httpmiddleware.NewLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)
	go limiter.Run(ctx)

	h := handler.New(handler.Config{
		CookieName:   cfg.Session.CookieName,
		SessionTTL:   cfg.Session.TTL,
		SecureCookie: cfg.Session.Secure,
		Limiter:      limiter,
	}, svc, store)

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.Recovery(),
			httpmiddleware.Instrument("storefront", m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

func newCatalogSource(cfg CatalogConfig, pool *pgxpool.Pool, client *http.Client) (product.Repository, error) {
	switch cfg.Source {
	case SourceEmbedded:
		return catalog.NewDocumentSource(web.Catalog), nil
	case SourceFile:
		return catalog.NewFileSource(cfg.Path), nil
	case SourceURL:
		return catalog.NewHTTPSource(cfg.URL, client), nil
	case SourcePostgres:
		return postgres.NewProductRepository(pool), nil
	default:
		return nil, errors.Errorf("unknown catalog source %q", cfg.Source)
	}
}

func newSink(cfg MessagingConfig, client *http.Client) (checkout.Sink, error) {
	switch cfg.Kind {
	case MessagingLink:
		return telegram.NewLinkSink(cfg.Handle), nil
	case MessagingBot:
		return telegram.NewBotSink(telegram.BotConfig{
			APIURL: cfg.APIURL,
			Token:  cfg.BotToken,
			ChatID: cfg.ChatID,
			Client: client,
		})
	default:
		return nil, errors.Errorf("unknown messaging kind %q", cfg.Kind)
	}
}
