package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/ovenline/bakery-api/internal/domain/order"
	"github.com/ovenline/bakery-api/internal/money"
)

// writeJSON encodes a response body with jx and writes it with the status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, encode func(e *jx.Encoder)) {
	e := &jx.Encoder{}
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(e.Bytes()); err != nil {
		zctx.From(r.Context()).Debug("Response write failed", zap.Error(err))
	}
}

// writeError writes the {"error": msg} failure shape.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("error")
		e.Str(msg)
		e.ObjEnd()
	})
}

// encodeOrder writes the full order object including items.
func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("order_id")
	e.Str(o.ID)
	e.FieldStart("order_number")
	e.Int64(o.Number)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("pickup_date")
	e.Str(o.PickupDate)
	e.FieldStart("pickup_time")
	e.Str(o.PickupTime)
	e.FieldStart("subtotal_pence")
	e.Int64(o.Subtotal)
	e.FieldStart("bag_fee_pence")
	e.Int64(o.BagFeePence)
	e.FieldStart("tax_pence")
	e.Int64(o.TaxPence)
	e.FieldStart("total_pence")
	e.Int64(o.TotalPence)
	e.FieldStart("total_display")
	e.Str(money.Format(o.TotalPence))
	e.FieldStart("customer_name")
	e.Str(o.CustomerName)
	e.FieldStart("customer_email")
	e.Str(o.CustomerEmail)
	if o.CustomerPhone != "" {
		e.FieldStart("customer_phone")
		e.Str(o.CustomerPhone)
	}
	e.FieldStart("created_at")
	e.Str(o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Str(it.ProductID)
		e.FieldStart("product_name")
		e.Str(it.ProductName)
		e.FieldStart("product_sku")
		e.Str(it.ProductSKU)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("unit_price_pence")
		e.Int64(it.UnitPricePence)
		e.FieldStart("total_price_pence")
		e.Int64(it.TotalPricePence)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}
