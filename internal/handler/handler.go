// Package handler implements the storefront HTTP API.
package handler

import (
	"net/http"

	"github.com/lumea-beauty/storefront/internal/backend"
	"github.com/lumea-beauty/storefront/internal/domain/cart"
	"github.com/lumea-beauty/storefront/internal/domain/product"
	"github.com/lumea-beauty/storefront/internal/notify"
)

// Handler serves the storefront API. Business logic lives in the injected
// domain dependencies; the handler only translates HTTP to domain calls and
// back.
type Handler struct {
	catalog   product.Catalog
	stores    *cart.Stores
	broadcast *notify.Broadcaster

	// payments is nil when no backend base URL is configured; the payment
	// relay route then answers 503.
	payments *backend.Client
}

// New constructs a Handler with the required domain dependencies.
func New(catalog product.Catalog, stores *cart.Stores, broadcast *notify.Broadcaster, payments *backend.Client) *Handler {
	return &Handler{
		catalog:   catalog,
		stores:    stores,
		broadcast: broadcast,
		payments:  payments,
	}
}

// Register mounts all API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.removeCartItem)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)
	mux.HandleFunc("GET /api/cart/events", h.cartEvents)

	mux.HandleFunc("GET /api/payments/{orderCode}", h.paymentStatus)
}
