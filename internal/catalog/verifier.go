// Package catalog verifies and re-prices submitted baskets against the
// product catalog. The server is the sole source of truth for prices: whatever
// the client claims a product costs is discarded here.
//
// A bloom filter over known product IDs sits in front of the database so junk
// IDs are rejected without a round trip; positives are always verified against
// the catalog, which also supplies the authoritative price and name snapshot.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/ovenline/bakery-api/internal/domain/product"
)

const bloomFalsePositiveRate = 0.001

// UnknownProductError indicates a basket references a product id that is not
// in the catalog.
type UnknownProductError struct {
	ProductID string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// Line is an unverified basket line: just an id and a quantity. Client-side
// prices and names never reach this layer.
type Line struct {
	ProductID string
	Quantity  int
}

// PricedLine is a verified line priced from the catalog.
type PricedLine struct {
	ProductID      string
	SKU            string
	Name           string
	UnitPricePence int64
	Quantity       int
}

// Verifier re-prices basket lines from the catalog.
type Verifier struct {
	products product.Repository

	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewVerifier builds a Verifier and seeds its id filter from the catalog.
func NewVerifier(ctx context.Context, products product.Repository) (*Verifier, error) {
	v := &Verifier{products: products}
	if err := v.Refresh(ctx); err != nil {
		return nil, errors.Wrap(err, "seed product filter")
	}
	return v, nil
}

// Refresh rebuilds the id filter from the current catalog. Products added
// after the last refresh are invisible to the filter until the next one, so
// call this periodically (see StartRefresh).
func (v *Verifier) Refresh(ctx context.Context) error {
	ids, err := v.products.ListIDs(ctx)
	if err != nil {
		return errors.Wrap(err, "list product ids")
	}

	n := uint(len(ids))
	if n == 0 {
		n = 1
	}
	f := bloom.NewWithEstimates(n, bloomFalsePositiveRate)
	for _, id := range ids {
		f.AddString(id)
	}

	v.mu.Lock()
	v.filter = f
	v.mu.Unlock()
	return nil
}

// StartRefresh rebuilds the filter every interval until ctx is cancelled.
func (v *Verifier) StartRefresh(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := v.Refresh(ctx); err != nil {
					zctx.From(ctx).Warn("Product filter refresh failed", zap.Error(err))
				}
			}
		}
	}()
}

// Reprice verifies every line's product id and returns lines priced from the
// catalog. It returns UnknownProductError for the first id that is missing,
// either at the filter or in the catalog itself.
func (v *Verifier) Reprice(ctx context.Context, lines []Line) ([]PricedLine, error) {
	v.mu.RLock()
	filter := v.filter
	v.mu.RUnlock()

	ids := make([]string, len(lines))
	for i, l := range lines {
		if !filter.TestString(l.ProductID) {
			return nil, &UnknownProductError{ProductID: l.ProductID}
		}
		ids[i] = l.ProductID
	}

	fetched, err := v.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	out := make([]PricedLine, len(lines))
	for i, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok || !p.Active {
			// Bloom false positive or inactive product.
			return nil, &UnknownProductError{ProductID: l.ProductID}
		}
		out[i] = PricedLine{
			ProductID:      p.ID,
			SKU:            p.SKU,
			Name:           p.Name,
			UnitPricePence: p.PricePence,
			Quantity:       l.Quantity,
		}
	}
	return out, nil
}
