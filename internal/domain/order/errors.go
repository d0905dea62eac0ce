package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Validation and capacity errors surfaced to the customer. Each rejection in
// the placement pipeline maps to exactly one of these.
var (
	ErrEmptyBasket       = errors.New("no items in order")
	ErrMissingPickup     = errors.New("missing pickup_date or pickup_time")
	ErrInvalidPickupDate = errors.New("invalid pickup_date")
	ErrInvalidPickupTime = errors.New("pickup_time is not an available slot")
	ErrBlackoutDay       = errors.New("no pickups on the selected day")
	ErrDateOutOfRange    = errors.New("pickup date is outside the bookable window")
	ErrPastCutoff        = errors.New("same-day orders closed for today, choose another day")
	ErrMissingCustomer   = errors.New("missing customer_name or customer_email")
	ErrInvalidEmail      = errors.New("customer_email is not a valid email address")
	ErrSlotFull          = errors.New("that time slot is full, please choose another")
	ErrNotFound          = errors.New("order not found")
)

// InvalidLineError indicates a basket line with a non-positive quantity or a
// negative price.
type InvalidLineError struct {
	ProductID string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("invalid quantity or price for product %s", e.ProductID)
}

// TransitionError indicates a disallowed status transition.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
