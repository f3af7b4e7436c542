// Package catalog provides the static in-memory product catalog. The data
// ships as an embedded gzip-compressed JSON seed, decoded once at startup;
// the catalog is read-only for the lifetime of the process.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/lumea-beauty/storefront/internal/domain/product"
)

//go:embed seed/products.json.gz
var seedData []byte

var _ product.Catalog = (*Catalog)(nil)

// Catalog is the immutable in-memory product list with an ID index.
type Catalog struct {
	products []product.Product
	byID     map[int64]*product.Product
}

// productJSON mirrors the seed file layout.
type productJSON struct {
	ID   int64 `json:"id"`
	Name struct {
		Ko string `json:"ko"`
		En string `json:"en"`
	} `json:"name"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	OnSale        bool            `json:"onSale"`
	Category      string          `json:"category"`
	Reviews       int             `json:"reviews"`
	Likes         int             `json:"likes"`
}

// Load decodes the embedded seed into a ready-to-use catalog.
func Load() (*Catalog, error) {
	return load(seedData)
}

func load(data []byte) (*Catalog, error) {
	gz, err := pgzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "open catalog seed")
	}
	defer func() { _ = gz.Close() }()

	var raw []productJSON
	if err := json.NewDecoder(gz).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "parse catalog seed")
	}

	c := &Catalog{
		products: make([]product.Product, 0, len(raw)),
		byID:     make(map[int64]*product.Product, len(raw)),
	}
	for _, pj := range raw {
		if _, dup := c.byID[pj.ID]; dup {
			return nil, errors.Errorf("duplicate product id %d in catalog seed", pj.ID)
		}
		c.products = append(c.products, product.Product{
			ID:            pj.ID,
			Name:          product.Name{Ko: pj.Name.Ko, En: pj.Name.En},
			Price:         pj.Price,
			OriginalPrice: pj.OriginalPrice,
			OnSale:        pj.OnSale,
			Category:      pj.Category,
			Reviews:       pj.Reviews,
			Likes:         pj.Likes,
		})
		c.byID[pj.ID] = &c.products[len(c.products)-1]
	}

	return c, nil
}

// List returns all products in seed order.
func (c *Catalog) List() []product.Product {
	return c.products
}

// FindByID returns the product with the given ID, or product.ErrNotFound.
func (c *Catalog) FindByID(id int64) (*product.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

// ListByCategory returns all products carrying the given category tag.
func (c *Catalog) ListByCategory(category string) []product.Product {
	var out []product.Product
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
