package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/ovenline/bakery-api/internal/catalog"
	"github.com/ovenline/bakery-api/internal/domain/order"
)

// placeOrderRequest is the strict inbound payload shape. Unknown fields are
// rejected rather than coerced.
type placeOrderRequest struct {
	Items         []placeOrderItem `json:"items"`
	PickupDate    string           `json:"pickup_date"`
	PickupTime    string           `json:"pickup_time"`
	BagOptIn      bool             `json:"bag_opt_in"`
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	CustomerPhone string           `json:"customer_phone"`
}

type placeOrderItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PricePence int64  `json:"price_pence"`
	Qty        int    `json:"qty"`
}

// PlaceOrder handles POST /api/orders: parse, delegate to the order service,
// shape the response.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	items := make([]order.BasketLine, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.BasketLine{
			ProductID:  it.ProductID,
			Name:       it.Name,
			PricePence: it.PricePence,
			Quantity:   it.Qty,
		}
	}

	o, err := h.orders.Place(r.Context(), order.PlaceRequest{
		Items:         items,
		PickupDate:    req.PickupDate,
		PickupTime:    req.PickupTime,
		BagOptIn:      req.BagOptIn,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		status, msg := mapPlaceError(err)
		if status == http.StatusInternalServerError {
			zctx.From(r.Context()).Error("Order placement failed", zap.Error(err))
		}
		writeError(w, r, status, msg)
		return
	}

	writeJSON(w, r, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("order_id")
		e.Str(o.ID)
		e.FieldStart("order_number")
		e.Int64(o.Number)
		e.FieldStart("subtotal_pence")
		e.Int64(o.Subtotal)
		e.FieldStart("bag_fee_pence")
		e.Int64(o.BagFeePence)
		e.FieldStart("tax_pence")
		e.Int64(o.TaxPence)
		e.FieldStart("total_pence")
		e.Int64(o.TotalPence)
		e.FieldStart("status")
		e.Str(string(o.Status))
		e.ObjEnd()
	})
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, order.ErrNotFound.Error())
			return
		}
		zctx.From(r.Context()).Error("Order lookup failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "unexpected error")
		return
	}
	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeOrder(e, o)
	})
}

// decode reads a strict JSON body into dst. On failure it writes a 400 and
// returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return false
	}
	// A body must be exactly one JSON document.
	if dec.More() {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return false
	}
	_, _ = io.Copy(io.Discard, body)
	return true
}

// mapPlaceError maps domain errors to a status code and customer-facing
// message. Each validation rule keeps its distinct message.
func mapPlaceError(err error) (int, string) {
	switch {
	case errors.Is(err, order.ErrEmptyBasket),
		errors.Is(err, order.ErrMissingPickup),
		errors.Is(err, order.ErrInvalidPickupDate),
		errors.Is(err, order.ErrInvalidPickupTime),
		errors.Is(err, order.ErrBlackoutDay),
		errors.Is(err, order.ErrDateOutOfRange),
		errors.Is(err, order.ErrPastCutoff),
		errors.Is(err, order.ErrMissingCustomer),
		errors.Is(err, order.ErrInvalidEmail):
		return http.StatusBadRequest, rootMessage(err)

	case errors.Is(err, order.ErrSlotFull):
		return http.StatusConflict, order.ErrSlotFull.Error()
	}

	var lineErr *order.InvalidLineError
	if errors.As(err, &lineErr) {
		return http.StatusBadRequest, lineErr.Error()
	}
	var unknown *catalog.UnknownProductError
	if errors.As(err, &unknown) {
		return http.StatusUnprocessableEntity, unknown.Error()
	}

	return http.StatusInternalServerError, "unexpected error"
}

// rootMessage unwraps to the sentinel's message, dropping wrap context that
// is not for customers.
func rootMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}
