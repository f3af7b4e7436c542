package cart

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/lumea-beauty/storefront/internal/domain/product"
)

// Store owns all reads and writes for one cart, identified by its storage
// key. It is deliberately forgiving: storage failures are logged and
// swallowed so that a flaky backend degrades to an unchanged or empty cart
// rather than an error surfaced to the shopper.
type Store struct {
	storage  Storage
	notifier Notifier
	key      string
	lg       *zap.Logger
}

// NewStore creates a Store bound to a single storage key.
func NewStore(storage Storage, notifier Notifier, key string, lg *zap.Logger) *Store {
	return &Store{
		storage:  storage,
		notifier: notifier,
		key:      key,
		lg:       lg,
	}
}

// Read returns the current cart. A missing key or a malformed stored value
// both read as an empty cart; the latter is logged.
func (s *Store) Read(ctx context.Context) Cart {
	data, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.lg.Warn("Cart read failed, substituting empty cart",
				zap.String("key", s.key), zap.Error(err))
		}
		return nil
	}

	c, err := DecodeCart(data)
	if err != nil {
		s.lg.Warn("Stored cart is malformed, substituting empty cart",
			zap.String("key", s.key), zap.Error(err))
		return nil
	}
	return c
}

// Add merges quantity into the existing line for p.ID, or appends a new line
// at the end of the cart. A non-positive quantity is a no-op: the caller
// expressed no intent we can honor, and the store never errors.
func (s *Store) Add(ctx context.Context, p product.Product, quantity int) {
	if quantity <= 0 {
		return
	}

	c := s.Read(ctx)
	merged := false
	for i := range c {
		if c[i].Product.ID == p.ID {
			c[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c = append(c, Line{Product: p, Quantity: quantity})
	}
	s.write(ctx, c)
}

// Remove deletes the line for productID. Absent lines are a no-op: nothing
// is written and no notification fires.
func (s *Store) Remove(ctx context.Context, productID int64) {
	c := s.Read(ctx)
	for i := range c {
		if c[i].Product.ID == productID {
			s.write(ctx, append(c[:i], c[i+1:]...))
			return
		}
	}
}

// SetQuantity overwrites the quantity of the line for productID. A quantity
// of zero or less removes the line, identical to Remove. When no line exists
// for productID this is a no-op — it never creates a line.
func (s *Store) SetQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity <= 0 {
		s.Remove(ctx, productID)
		return
	}

	c := s.Read(ctx)
	for i := range c {
		if c[i].Product.ID == productID {
			c[i].Quantity = quantity
			s.write(ctx, c)
			return
		}
	}
}

// Clear replaces the cart with an empty sequence.
func (s *Store) Clear(ctx context.Context) {
	s.write(ctx, nil)
}

// write persists the cart and fires the change notification. Persist errors
// are logged and swallowed; a failed write fires no notification, so
// observers never re-read state that was not committed.
func (s *Store) write(ctx context.Context, c Cart) {
	if err := s.storage.Set(ctx, s.key, EncodeCart(c)); err != nil {
		s.lg.Error("Cart write failed, mutation lost",
			zap.String("key", s.key), zap.Error(err))
		return
	}
	s.notifier.Notify()
}

// Stores builds per-cart Store views over shared dependencies. Constructing
// a Store is cheap; handlers make one per request from the session key.
type Stores struct {
	storage  Storage
	notifier Notifier
	lg       *zap.Logger
}

// NewStores creates the Store factory.
func NewStores(storage Storage, notifier Notifier, lg *zap.Logger) *Stores {
	return &Stores{storage: storage, notifier: notifier, lg: lg}
}

// ForKey returns the Store for one cart key.
func (f *Stores) ForKey(key string) *Store {
	return NewStore(f.storage, f.notifier, key, f.lg)
}
