// Package cart implements the shopping cart store: an ordered list of
// (product, quantity) lines persisted as a single value in key-value storage,
// with a payload-less change notification after every successful mutation.
package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/lumea-beauty/storefront/internal/domain/product"
)

// Line pairs a product snapshot with a positive quantity. The snapshot is
// embedded in full: a catalog price change after the line was added does not
// affect the persisted line until it is removed and re-added.
type Line struct {
	Product  product.Product
	Quantity int
}

// Cart is an ordered sequence of lines. Order reflects first-add order, and
// at most one line exists per product ID.
type Cart []Line

// ErrNotFound is returned by Storage.Get when no value exists for a key.
var ErrNotFound = errors.New("cart not found")

// Storage is the durable key-value backing for carts. A cart occupies exactly
// one key; concurrent writers to the same key are last-write-wins.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Notifier receives a payload-less signal after each successful cart mutation.
type Notifier interface {
	Notify()
}

// LineTotal returns the line's sale price times its quantity.
func LineTotal(l Line) decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total returns the sum of sale price times quantity over all lines.
func Total(c Cart) decimal.Decimal {
	total := decimal.Zero
	for _, l := range c {
		total = total.Add(LineTotal(l))
	}
	return total
}

// ItemCount returns the sum of quantities over all lines.
func ItemCount(c Cart) int {
	n := 0
	for _, l := range c {
		n += l.Quantity
	}
	return n
}
