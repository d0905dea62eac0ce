package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/ovenline/bakery-api/internal/domain/order"
	"github.com/ovenline/bakery-api/internal/schedule"
)

const defaultListLimit = 100

// AdminListOrders handles GET /api/admin/orders with optional status, date and
// limit query filters.
func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := order.ListFilter{Limit: defaultListLimit}

	if s := q.Get("status"); s != "" {
		st := order.Status(s)
		if !st.Valid() {
			writeError(w, r, http.StatusBadRequest, "unknown status")
			return
		}
		f.Status = st
	}
	if d := q.Get("date"); d != "" {
		if _, err := schedule.ParseDate(d); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid date")
			return
		}
		f.PickupDate = d
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			writeError(w, r, http.StatusBadRequest, "invalid limit")
			return
		}
		f.Limit = min(n, defaultListLimit)
	}

	list, err := h.store.List(r.Context(), f)
	if err != nil {
		zctx.From(r.Context()).Error("Order listing failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "unexpected error")
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("orders")
		e.ArrStart()
		for i := range list {
			encodeOrder(e, &list[i])
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// AdminUpdateStatus handles PATCH /api/admin/orders/{id}: a single status
// transition through the order state machine.
func (h *Handler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !order.Status(req.Status).Valid() {
		writeError(w, r, http.StatusBadRequest, "unknown status")
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), order.Status(req.Status))
	if err != nil {
		var trans *order.TransitionError
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeError(w, r, http.StatusNotFound, order.ErrNotFound.Error())
		case errors.As(err, &trans):
			writeError(w, r, http.StatusConflict, trans.Error())
		default:
			zctx.From(r.Context()).Error("Status update failed", zap.Error(err))
			writeError(w, r, http.StatusInternalServerError, "unexpected error")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeOrder(e, o)
	})
}
