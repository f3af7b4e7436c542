package product

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. The catalog is
// loaded once at startup and products are immutable for the process lifetime.
type Product struct {
	ID            int64
	Name          Name
	Price         decimal.Decimal
	OriginalPrice decimal.Decimal
	OnSale        bool
	Category      string
	Reviews       int
	Likes         int
}

// Name holds the per-locale display names for a product.
type Name struct {
	Ko string
	En string
}

// Catalog defines read operations over the static product catalog.
type Catalog interface {
	List() []Product
	FindByID(id int64) (*Product, error)
	ListByCategory(category string) []Product
}
