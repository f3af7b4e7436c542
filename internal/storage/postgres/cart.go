package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lumea-beauty/storefront/internal/domain/cart"
)

const (
	getCartSQL = `SELECT payload FROM carts WHERE key = $1`

	upsertCartSQL = `INSERT INTO carts (key, payload, total, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE SET payload = $2, total = $3, updated_at = now()`

	deleteCartSQL = `DELETE FROM carts WHERE key = $1`

	snapshotTotalSQL = `SELECT total FROM carts WHERE key = $1`

	listKeysSQL = `SELECT key FROM carts ORDER BY key`

	updateTotalSQL = `UPDATE carts SET total = $2 WHERE key = $1`

	purgeStaleSQL = `DELETE FROM carts WHERE updated_at < $1`
)

var _ cart.Storage = (*CartStorage)(nil)

// CartStorage implements cart.Storage backed by PostgreSQL. Each cart is a
// single row keyed by its storage key: the JSON payload goes into a JSONB
// column and the cart total is denormalized into a NUMERIC column so revenue
// snapshot queries never have to unpack payloads.
type CartStorage struct {
	pool *pgxpool.Pool
}

// NewCartStorage returns a CartStorage that uses the given pool.
func NewCartStorage(pool *pgxpool.Pool) *CartStorage {
	return &CartStorage{pool: pool}
}

// Get returns the stored payload for key, or cart.ErrNotFound.
func (s *CartStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, getCartSQL, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting cart %q", key)
	}
	return payload, nil
}

// Set upserts the payload for key. The denormalized total is computed from
// the payload itself; a payload this storage cannot decode is refused rather
// than persisted, since every writer goes through the cart codec.
func (s *CartStorage) Set(ctx context.Context, key string, value []byte) error {
	c, err := cart.DecodeCart(value)
	if err != nil {
		return errors.Wrapf(err, "refusing undecodable payload for cart %q", key)
	}

	if _, err := s.pool.Exec(ctx, upsertCartSQL, key, value, cart.Total(c)); err != nil {
		return errors.Wrapf(err, "upserting cart %q", key)
	}
	return nil
}

// Delete removes the row for key. Absent keys are not an error.
func (s *CartStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, deleteCartSQL, key); err != nil {
		return errors.Wrapf(err, "deleting cart %q", key)
	}
	return nil
}

// Keys lists every stored cart key. Used by the maintenance tool.
func (s *CartStorage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, listKeysSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing cart keys")
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Wrap(err, "scanning cart keys")
	}
	return keys, nil
}

// RecomputeTotal re-derives the denormalized total of one cart from its
// payload. Rows written before the total column existed, or by an older
// codec, get repaired this way.
func (s *CartStorage) RecomputeTotal(ctx context.Context, key string) error {
	payload, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return nil
		}
		return err
	}

	c, err := cart.DecodeCart(payload)
	if err != nil {
		return errors.Wrapf(err, "cart %q has undecodable payload", key)
	}

	if _, err := s.pool.Exec(ctx, updateTotalSQL, key, cart.Total(c)); err != nil {
		return errors.Wrapf(err, "updating total for cart %q", key)
	}
	return nil
}

// PurgeStale deletes carts not written since cutoff and reports how many
// rows went away.
func (s *CartStorage) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, purgeStaleSQL, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "purging stale carts")
	}
	return tag.RowsAffected(), nil
}

// SnapshotTotal reads the denormalized total for one cart without touching
// the payload. Returns cart.ErrNotFound when no row exists.
func (s *CartStorage) SnapshotTotal(ctx context.Context, key string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx, snapshotTotalSQL, key).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, cart.ErrNotFound
		}
		return decimal.Zero, errors.Wrapf(err, "reading total for cart %q", key)
	}
	return total, nil
}
