package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/ovenline/bakery-api/internal/domain/product"
	"github.com/ovenline/bakery-api/internal/money"
)

// ListProducts handles GET /api/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("Product listing failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "unexpected error")
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("products")
		e.ArrStart()
		for _, p := range products {
			encodeProduct(e, p)
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

// GetProduct handles GET /api/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, product.ErrNotFound.Error())
			return
		}
		zctx.From(r.Context()).Error("Product lookup failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "unexpected error")
		return
	}
	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, *p)
	})
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("sku")
	e.Str(p.SKU)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price_pence")
	e.Int64(p.PricePence)
	e.FieldStart("price_display")
	e.Str(money.Format(p.PricePence))
	e.FieldStart("category")
	e.Str(p.Category)
	e.ObjEnd()
}

// ListFees handles GET /api/fees: active configurable fees for checkout.
func (h *Handler) ListFees(w http.ResponseWriter, r *http.Request) {
	active, err := h.fees.ListActive(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("Fee listing failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "unexpected error")
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("fees")
		e.ArrStart()
		for _, f := range active {
			e.ObjStart()
			e.FieldStart("name")
			e.Str(f.Name)
			e.FieldStart("amount_pence")
			e.Int64(f.AmountPence)
			e.FieldStart("rate")
			e.Str(f.Rate.String())
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}
