package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/lumea-beauty/storefront/internal/backend"
)

// paymentStatus relays the display state of one order's payment from the
// external payment API. The storefront never verifies or settles anything.
func (h *Handler) paymentStatus(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeError(w, http.StatusServiceUnavailable, "payment status is not configured")
		return
	}

	orderCode := r.PathValue("orderCode")
	ps, err := h.payments.PaymentStatus(r.Context(), orderCode)
	if err != nil {
		if errors.Is(err, backend.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusBadGateway, "payment status unavailable")
		return
	}

	writeJSON(w, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("orderCode")
		e.Str(ps.OrderCode)
		e.FieldStart("status")
		e.Str(ps.Status)
		e.FieldStart("amount")
		e.Str(ps.Amount.String())
		e.FieldStart("method")
		e.Str(ps.Method)
		if ps.ApprovedAt != nil {
			e.FieldStart("approvedAt")
			e.Str(ps.ApprovedAt.Format("2006-01-02T15:04:05Z07:00"))
		}
		e.ObjEnd()
	})
}
