// Command cart-maintenance runs one-shot upkeep against the postgres cart
// backend: it applies migrations, re-derives the denormalized cart totals
// from their payloads (logging the summed open-cart revenue), and optionally
// purges carts idle past a cutoff.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/lumea-beauty/storefront/internal/domain/cart"
	"github.com/lumea-beauty/storefront/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		workers     int
		purgeAfter  time.Duration
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&workers, "workers", 8, "concurrent total recomputations")
	flag.DurationVar(&purgeAfter, "purge-after", 0, "delete carts idle longer than this (0 disables purging)")
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

	if err := run(ctx, databaseURL, workers, purgeAfter); err != nil {
		slog.Error("maintenance failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("maintenance completed successfully")
}

func run(ctx context.Context, databaseURL string, workers int, purgeAfter time.Duration) error {
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

	storage := postgres.NewCartStorage(pool)

	if purgeAfter > 0 {
		cutoff := time.Now().Add(-purgeAfter)
		purged, err := storage.PurgeStale(ctx, cutoff)
		if err != nil {
			return errors.Wrap(err, "purge stale carts")
		}
		slog.Info("purged stale carts",
			slog.Int64("count", purged),
			slog.Time("cutoff", cutoff))
	}

	if err := recomputeTotals(ctx, storage, workers); err != nil {
		return errors.Wrap(err, "recompute totals")
	}

	return nil
}

func recomputeTotals(ctx context.Context, storage *postgres.CartStorage, workers int) error {
	keys, err := storage.Keys(ctx)
	if err != nil {
		return err
	}

	slog.Info("recomputing cart totals",
		slog.Int("carts", len(keys)),
		slog.Int("workers", workers))

	var (
		mu      sync.Mutex
		revenue = decimal.Zero
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, key := range keys {
		g.Go(func() error {
			if err := storage.RecomputeTotal(ctx, key); err != nil {
				return err
			}
			total, err := storage.SnapshotTotal(ctx, key)
			if err != nil {
				if errors.Is(err, cart.ErrNotFound) {
					return nil
				}
				return err
			}

			mu.Lock()
			revenue = revenue.Add(total)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("cart totals recomputed",
		slog.String("open_cart_revenue", revenue.String()))
	return nil
}
