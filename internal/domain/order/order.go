package order

import (
	"context"
	"time"
)

// Order is a placed pickup order. Monetary fields are integer pence and
// satisfy total = subtotal + bag fee + tax.
type Order struct {
	ID          string
	Number      int64
	Status      Status
	PickupDate  string // YYYY-MM-DD
	PickupTime  string // HH:MM, on the slot grid
	BagOptIn    bool
	Subtotal    int64
	BagFeePence int64
	TaxPence    int64
	TotalPence  int64

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	Items     []Item
	CreatedAt time.Time
}

// Item is one order line. Name, SKU and unit price are snapshotted from the
// catalog at order time so historic orders survive catalog edits.
type Item struct {
	OrderID         string
	ProductID       string
	ProductName     string
	ProductSKU      string
	Quantity        int
	UnitPricePence  int64
	TotalPricePence int64
}

// ListFilter narrows admin order listings.
type ListFilter struct {
	Status     Status // zero value: any
	PickupDate string // zero value: any
	Limit      int
}

// Repository defines persistence operations for orders.
//
// Create must assign Number and CreatedAt, insert the header and all items in
// a single transaction, and enforce the slot capacity ceiling inside that
// transaction: it returns ErrSlotFull when the slot already holds capacity
// active orders.
type Repository interface {
	CountActiveAtSlot(ctx context.Context, pickupDate, pickupTime string) (int, error)
	CountActiveByDate(ctx context.Context, pickupDate string) (map[string]int, error)
	Create(ctx context.Context, o *Order, capacity int) error
	MirrorItems(ctx context.Context, orderID string, items []Item) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) error
}
