// Package handler implements the HTTP boundary. Handlers parse and shape;
// all business decisions live in the domain packages.
package handler

import (
	"net/http"
	"time"

	"github.com/ovenline/bakery-api/internal/domain/fees"
	"github.com/ovenline/bakery-api/internal/domain/order"
	"github.com/ovenline/bakery-api/internal/domain/product"
	"github.com/ovenline/bakery-api/internal/schedule"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// SlotCapacity is surfaced in availability responses.
	SlotCapacity int
	// MaxBodyBytes bounds request bodies; zero means 1 MiB.
	MaxBodyBytes int64
}

// Handler serves the storefront and admin API routes.
type Handler struct {
	cfg      Config
	products product.Repository
	fees     fees.Repository
	orders   *order.Service
	store    order.Repository
	sched    *schedule.Schedule
	now      func() time.Time
}

// New constructs a Handler with the required domain dependencies. The now
// function must return time localised to the store's timezone.
func New(
	cfg Config,
	products product.Repository,
	feeRepo fees.Repository,
	orders *order.Service,
	store order.Repository,
	sched *schedule.Schedule,
	now func() time.Time,
) *Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return &Handler{
		cfg:      cfg,
		products: products,
		fees:     feeRepo,
		orders:   orders,
		store:    store,
		sched:    sched,
		now:      now,
	}
}

// Routes returns the API route table.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /api/fees", h.ListFees)
	mux.HandleFunc("GET /api/slots", h.Slots)
	mux.HandleFunc("GET /api/availability", h.Availability)

	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)

	// Admin routes; authentication is a deployment concern layered above.
	mux.HandleFunc("GET /api/admin/orders", h.AdminListOrders)
	mux.HandleFunc("PATCH /api/admin/orders/{id}", h.AdminUpdateStatus)

	return mux
}
