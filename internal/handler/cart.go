package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/lumea-beauty/storefront/internal/domain/cart"
	"github.com/lumea-beauty/storefront/internal/domain/product"
	"github.com/lumea-beauty/storefront/pkg/httpmiddleware"
)

// maxBodyBytes caps cart mutation request bodies.
const maxBodyBytes = 1 << 16

// cartStore resolves the request's cart from its session cookie.
func (h *Handler) cartStore(r *http.Request) (*cart.Store, bool) {
	session := httpmiddleware.SessionFromContext(r.Context())
	if session == "" {
		return nil, false
	}
	return h.stores.ForKey("cart:" + session), true
}

// getCart returns the session's cart with derived totals.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cartStore(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "no session")
		return
	}
	h.respondCart(w, store.Read(r.Context()))
}

// addCartItem merges a product into the cart. The quantity defaults to one
// when the field is absent.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cartStore(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "no session")
		return
	}

	req, err := decodeAddItem(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.catalog.FindByID(req.productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusUnprocessableEntity, "unknown product")
			return
		}
		writeError(w, http.StatusInternalServerError, "catalog lookup failed")
		return
	}

	store.Add(r.Context(), *p, req.quantity)
	h.respondCart(w, store.Read(r.Context()))
}

// updateCartItem overwrites a line's quantity. Zero or negative removes the
// line; an absent line is left as is.
func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cartStore(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "no session")
		return
	}

	productID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "product id must be an integer")
		return
	}

	quantity, err := decodeQuantity(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	store.SetQuantity(r.Context(), productID, quantity)
	h.respondCart(w, store.Read(r.Context()))
}

// removeCartItem deletes a line from the cart.
func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cartStore(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "no session")
		return
	}

	productID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "product id must be an integer")
		return
	}

	store.Remove(r.Context(), productID)
	h.respondCart(w, store.Read(r.Context()))
}

// clearCart empties the cart.
func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cartStore(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "no session")
		return
	}

	store.Clear(r.Context())
	h.respondCart(w, nil)
}

// respondCart writes the cart body shared by every cart route: the ordered
// lines plus derived total and item count.
func (h *Handler) respondCart(w http.ResponseWriter, c cart.Cart) {
	writeJSON(w, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("items")
		e.ArrStart()
		for _, l := range c {
			e.ObjStart()
			e.FieldStart("product")
			encodeProduct(e, l.Product)
			e.FieldStart("quantity")
			e.Int(l.Quantity)
			e.FieldStart("lineTotal")
			e.Str(cart.LineTotal(l).String())
			e.ObjEnd()
		}
		e.ArrEnd()
		e.FieldStart("total")
		e.Str(cart.Total(c).String())
		e.FieldStart("itemCount")
		e.Int(cart.ItemCount(c))
		e.ObjEnd()
	})
}

type addItemRequest struct {
	productID int64
	quantity  int
}

func decodeAddItem(r *http.Request) (addItemRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return addItemRequest{}, errors.New("read request body")
	}

	req := addItemRequest{quantity: 1}
	hasProduct := false
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			req.productID, err = d.Int64()
			hasProduct = err == nil
		case "quantity":
			req.quantity, err = d.Int()
		default:
			return errors.Errorf("unknown field %q", key)
		}
		return err
	}); err != nil {
		return addItemRequest{}, errors.New("malformed request body")
	}
	if !hasProduct {
		return addItemRequest{}, errors.New("productId is required")
	}
	if req.quantity < 1 {
		return addItemRequest{}, errors.New("quantity must be positive")
	}
	return req, nil
}

func decodeQuantity(r *http.Request) (int, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return 0, errors.New("read request body")
	}

	quantity := 0
	hasQuantity := false
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "quantity":
			quantity, err = d.Int()
			hasQuantity = err == nil
		default:
			return errors.Errorf("unknown field %q", key)
		}
		return err
	}); err != nil {
		return 0, errors.New("malformed request body")
	}
	if !hasQuantity {
		return 0, errors.New("quantity is required")
	}
	return quantity, nil
}
