package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/panel-storefront/internal/domain/coupon"
	"github.com/xenking/panel-storefront/internal/storage/postgres"
)

const progressEvery = 100

func main() {
	var (
		databaseURL string
		workers     int
		batchSize   int
		dryRun      bool
		expected    uint
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&workers, "workers", 4, "number of concurrent upsert workers")
	flag.IntVar(&batchSize, "batch-size", 1000, "coupons per upsert batch")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and validate files without writing")
	flag.UintVar(&expected, "expected-codes", 10_000_000, "expected coupon count per file, sizes the bloom filters")
	flag.Usage = func() {
		_, _ = os.Stderr.WriteString("usage: coupon-import [flags] FILE...\n\n" +
			"Each line of FILE is \"CODE RATE [DESCRIPTION]\"; files ending in .gz are decompressed.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" && !dryRun {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, files, expected, databaseURL, workers, batchSize, dryRun); err != nil {
		slog.Error("coupon import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("coupon import completed successfully")
}

func run(ctx context.Context, files []string, expected uint, databaseURL string, workers, batchSize int, dryRun bool) error {
	slog.Info("reading coupon files", slog.Int("files", len(files)))

	rules, stats, err := dedupe(ctx, files, expected)
	if err != nil {
		return errors.Wrap(err, "read coupon files")
	}

	slog.Info("coupons parsed",
		slog.Int("unique", len(rules)),
		slog.Int("candidates", stats.Candidates),
		slog.Int("duplicates", stats.Duplicates),
	)

	if len(rules) == 0 {
		slog.Info("no coupons to import")
		return nil
	}
	if dryRun {
		return nil
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return writeCoupons(ctx, postgres.NewCouponRepository(pool), rules, workers, batchSize)
}

// couponUpserter is the write side of the coupon store.
type couponUpserter interface {
	Upsert(ctx context.Context, rules []coupon.Rule) (int64, error)
}

// writeCoupons upserts rules in chunks of batchSize using up to workers
// concurrent batches.
func writeCoupons(ctx context.Context, repo couponUpserter, rules []coupon.Rule, workers, batchSize int) error {
	if batchSize <= 0 {
		batchSize = len(rules)
	}
	slog.Info("writing coupons to database",
		slog.Int("count", len(rules)),
		slog.Int("workers", workers),
	)

	var (
		written atomic.Int64
		batches atomic.Int64
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for start := 0; start < len(rules); start += batchSize {
		chunk := rules[start:min(start+batchSize, len(rules))]
		g.Go(func() error {
			n, err := repo.Upsert(ctx, chunk)
			if err != nil {
				return errors.Wrapf(err, "upsert batch at %s", chunk[0].Code)
			}
			total := written.Add(n)
			if b := batches.Add(1); b%progressEvery == 0 {
				slog.Info("write progress", slog.Int64("written", total), slog.Int("total", len(rules)))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("write complete", slog.Int64("written", written.Load()))
	return nil
}
