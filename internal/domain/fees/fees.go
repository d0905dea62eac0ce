// Package fees resolves configurable storefront fees: the optional bag
// surcharge and the GST rate. Values live in the configurable_fees table and
// fall back to configured defaults when rows are missing or the store is
// unreachable, so checkout keeps working on sane numbers.
package fees

import (
	"context"
	"strings"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Well-known fee names. Matching is case-insensitive.
const (
	NameBagFee = "bag fee"
	NameGST    = "gst"
)

// Fee is one row of the configurable fee table. Flat fees carry AmountPence;
// percentage fees carry Rate (e.g. 0.06 for 6%).
type Fee struct {
	ID          string
	Name        string
	AmountPence int64
	Rate        decimal.Decimal
	Active      bool
}

// Repository provides access to active fees.
type Repository interface {
	ListActive(ctx context.Context) ([]Fee, error)
}

// Defaults are used when the store has no matching active fee row.
type Defaults struct {
	BagFeePence int64
	TaxRate     decimal.Decimal
}

// Provider resolves fee values, preferring the store over defaults.
type Provider struct {
	repo     Repository
	defaults Defaults
}

// NewProvider creates a Provider over the given repository.
func NewProvider(repo Repository, defaults Defaults) *Provider {
	return &Provider{repo: repo, defaults: defaults}
}

// BagFeePence returns the active bag fee, or the default when absent.
// Lookup failures are logged and swallowed; checkout never fails on a fee read.
func (p *Provider) BagFeePence(ctx context.Context) int64 {
	fee, ok := p.find(ctx, NameBagFee)
	if !ok || fee.AmountPence < 0 {
		return p.defaults.BagFeePence
	}
	return fee.AmountPence
}

// TaxRate returns the active GST rate, or the default when absent.
func (p *Provider) TaxRate(ctx context.Context) decimal.Decimal {
	fee, ok := p.find(ctx, NameGST)
	if !ok || fee.Rate.IsNegative() {
		return p.defaults.TaxRate
	}
	return fee.Rate
}

func (p *Provider) find(ctx context.Context, name string) (Fee, bool) {
	all, err := p.repo.ListActive(ctx)
	if err != nil {
		zctx.From(ctx).Warn("Fee lookup failed, using default",
			zap.String("fee", name), zap.Error(err))
		return Fee{}, false
	}
	for _, f := range all {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Fee{}, false
}
