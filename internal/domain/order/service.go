package order

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ovenline/bakery-api/internal/catalog"
	"github.com/ovenline/bakery-api/internal/money"
	"github.com/ovenline/bakery-api/internal/schedule"
)

// Repricer verifies basket lines and prices them from the catalog.
type Repricer interface {
	Reprice(ctx context.Context, lines []catalog.Line) ([]catalog.PricedLine, error)
}

// FeeSource resolves the current bag fee and tax rate.
type FeeSource interface {
	BagFeePence(ctx context.Context) int64
	TaxRate(ctx context.Context) decimal.Decimal
}

// BasketLine is one submitted basket entry. Price and name fields from the
// client are accepted for shape validation only; pricing is re-derived from
// the catalog.
type BasketLine struct {
	ProductID  string
	Name       string
	PricePence int64
	Quantity   int
}

// PlaceRequest is the validated-shape input for placing an order.
type PlaceRequest struct {
	Items         []BasketLine
	PickupDate    string
	PickupTime    string
	BagOptIn      bool
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// ServiceConfig holds the placement business parameters.
type ServiceConfig struct {
	// SlotCapacity is the per-slot ceiling of active orders.
	SlotCapacity int
	// StoreTimeout bounds the capacity check and the order insert together.
	StoreTimeout time.Duration
}

// Service encapsulates order placement and status management.
type Service struct {
	catalog Repricer
	fees    FeeSource
	orders  Repository
	sched   *schedule.Schedule
	cfg     ServiceConfig
	now     func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
// The now function must return time already localised to the store's timezone.
func NewService(
	repricer Repricer,
	fees FeeSource,
	orders Repository,
	sched *schedule.Schedule,
	cfg ServiceConfig,
	now func() time.Time,
) *Service {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	return &Service{
		catalog: repricer,
		fees:    fees,
		orders:  orders,
		sched:   sched,
		cfg:     cfg,
		now:     now,
	}
}

// Place runs the full placement pipeline: shape validation, pickup slot
// rules, catalog re-pricing, monetary totals, the capacity gate, and the
// transactional insert. The items JSON mirror is written after the order
// commits and never fails the request.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	now := s.now()

	if err := s.validate(req, now); err != nil {
		return nil, err
	}

	lines := make([]catalog.Line, len(req.Items))
	for i, it := range req.Items {
		lines[i] = catalog.Line{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	priced, err := s.catalog.Reprice(ctx, lines)
	if err != nil {
		return nil, err
	}

	// Totals from catalog prices only.
	moneyLines := make([]money.Line, len(priced))
	for i, p := range priced {
		moneyLines[i] = money.Line{UnitPricePence: p.UnitPricePence, Quantity: p.Quantity}
	}
	subtotal := money.Subtotal(moneyLines)

	var bagFee int64
	if req.BagOptIn {
		bagFee = s.fees.BagFeePence(ctx)
	}
	tax := money.Tax(subtotal+bagFee, s.fees.TaxRate(ctx))

	o := &Order{
		ID:            uuid.New().String(),
		Status:        StatusUnpaid,
		PickupDate:    req.PickupDate,
		PickupTime:    req.PickupTime,
		BagOptIn:      req.BagOptIn,
		Subtotal:      subtotal,
		BagFeePence:   bagFee,
		TaxPence:      tax,
		TotalPence:    money.Total(subtotal, bagFee, tax),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
	}
	o.Items = make([]Item, len(priced))
	for i, p := range priced {
		o.Items[i] = Item{
			OrderID:         o.ID,
			ProductID:       p.ProductID,
			ProductName:     p.Name,
			ProductSKU:      p.SKU,
			Quantity:        p.Quantity,
			UnitPricePence:  p.UnitPricePence,
			TotalPricePence: p.UnitPricePence * int64(p.Quantity),
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	// Optimistic pre-check; the authoritative gate runs inside Create's
	// transaction under the per-slot lock.
	count, err := s.orders.CountActiveAtSlot(storeCtx, o.PickupDate, o.PickupTime)
	if err != nil {
		return nil, errors.Wrap(err, "count slot orders")
	}
	if count >= s.cfg.SlotCapacity {
		return nil, ErrSlotFull
	}

	if err := s.orders.Create(storeCtx, o, s.cfg.SlotCapacity); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	// Best-effort redundancy snapshot; the order stands regardless.
	if err := s.orders.MirrorItems(ctx, o.ID, o.Items); err != nil {
		zctx.From(ctx).Warn("Items mirror write failed",
			zap.String("order_id", o.ID), zap.Error(err))
	}

	return o, nil
}

// validate applies the rejection rules in their documented order, each with a
// distinct error.
func (s *Service) validate(req PlaceRequest, now time.Time) error {
	if len(req.Items) == 0 {
		return ErrEmptyBasket
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 || it.PricePence < 0 {
			return &InvalidLineError{ProductID: it.ProductID}
		}
	}

	if req.PickupDate == "" || req.PickupTime == "" {
		return ErrMissingPickup
	}
	if _, err := schedule.ParseDate(req.PickupDate); err != nil {
		return ErrInvalidPickupDate
	}
	if !s.sched.IsValidSlot(req.PickupTime) {
		return ErrInvalidPickupTime
	}

	blackout, err := s.sched.IsBlackoutDay(req.PickupDate)
	if err != nil {
		return ErrInvalidPickupDate
	}
	if blackout {
		return ErrBlackoutDay
	}

	// Cutoff before the range check: once the cutoff passes, today drops out
	// of the bookable window and would otherwise report the generic
	// out-of-range error.
	if req.PickupDate == schedule.Today(now) && s.sched.CutoffApplies(now) {
		return ErrPastCutoff
	}
	minDate, maxDate := s.sched.BookableRange(now)
	if !schedule.InRange(req.PickupDate, minDate, maxDate) {
		return ErrDateOutOfRange
	}

	if req.CustomerName == "" || req.CustomerEmail == "" {
		return ErrMissingCustomer
	}
	if _, err := mail.ParseAddress(req.CustomerEmail); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// UpdateStatus applies an admin-initiated status transition, enforcing the
// state machine and guarding against concurrent updates with a
// compare-and-swap on the previous status.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) (*Order, error) {
	if !to.Valid() {
		return nil, &TransitionError{To: to}
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(to) {
		return nil, &TransitionError{From: o.Status, To: to}
	}

	if err := s.orders.UpdateStatus(ctx, id, o.Status, to); err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	o.Status = to
	return o, nil
}
