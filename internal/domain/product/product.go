package product

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Prices are
// integer pence; the catalog is the only source of truth for them.
type Product struct {
	ID         string
	SKU        string
	Name       string
	PricePence int64
	Category   string
	Active     bool
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	ListIDs(ctx context.Context) ([]string, error)
}
