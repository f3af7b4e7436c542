package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/lumea-beauty/storefront/internal/domain/product"
)

// listProducts returns the catalog, optionally filtered by ?category=.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var products []product.Product
	if category := r.URL.Query().Get("category"); category != "" {
		products = h.catalog.ListByCategory(category)
	} else {
		products = h.catalog.List()
	}

	writeJSON(w, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range products {
			encodeProduct(e, products[i])
		}
		e.ArrEnd()
	})
}

// getProduct returns a single product by ID.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "product id must be an integer")
		return
	}

	p, err := h.catalog.FindByID(id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "catalog lookup failed")
		return
	}

	writeJSON(w, func(e *jx.Encoder) {
		encodeProduct(e, *p)
	})
}

// encodeProduct writes the API representation of a product. Prices are
// decimal strings so clients never see float rounding.
func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("name")
	e.ObjStart()
	e.FieldStart("ko")
	e.Str(p.Name.Ko)
	e.FieldStart("en")
	e.Str(p.Name.En)
	e.ObjEnd()
	e.FieldStart("price")
	e.Str(p.Price.String())
	e.FieldStart("originalPrice")
	e.Str(p.OriginalPrice.String())
	e.FieldStart("onSale")
	e.Bool(p.OnSale)
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("reviews")
	e.Int(p.Reviews)
	e.FieldStart("likes")
	e.Int(p.Likes)
	e.ObjEnd()
}
