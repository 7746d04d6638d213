package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/panel-storefront/internal/catalog"
	"github.com/xenking/panel-storefront/internal/domain/coupon"
	"github.com/xenking/panel-storefront/internal/domain/product"
	"github.com/xenking/panel-storefront/internal/storage/postgres"
	"github.com/xenking/panel-storefront/web"
)

func main() {
	var (
		databaseURL  string
		productsFile string
		skipCoupons  bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "path to a catalog JSON file (defaults to the built-in catalog)")
	flag.BoolVar(&skipCoupons, "skip-coupons", false, "do not seed the built-in coupons")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, skipCoupons); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string, skipCoupons bool) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	products, err := readProducts(ctx, productsFile)
	if err != nil {
		return errors.Wrap(err, "read products")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	if err := postgres.NewProductRepository(pool).Upsert(ctx, products); err != nil {
		return errors.Wrap(err, "seed products")
	}
	for _, p := range products {
		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	if skipCoupons {
		return nil
	}

	if err := seedCoupons(ctx, postgres.NewCouponRepository(pool)); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	return nil
}

func readProducts(ctx context.Context, productsFile string) ([]product.Product, error) {
	if productsFile == "" {
		slog.Info("using built-in catalog")
		return catalog.Decode(web.Catalog)
	}

	slog.Info("reading products file", slog.String("path", productsFile))
	return catalog.NewFileSource(productsFile).List(ctx)
}

func seedCoupons(ctx context.Context, repo *postgres.CouponRepository) error {
	slog.Info("seeding built-in coupons")

	rules := coupon.DefaultRules()
	if _, err := repo.Upsert(ctx, rules); err != nil {
		return err
	}

	for _, r := range rules {
		slog.Info("upserted coupon",
			slog.String("code", r.Code),
			slog.String("rate", r.Rate.String()),
			slog.String("description", r.Description),
		)
	}

	return nil
}
