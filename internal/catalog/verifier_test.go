package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenline/bakery-api/internal/domain/product"
)

type mockProductRepo struct {
	byID    map[string]product.Product
	queries int
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) { return nil, nil }

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	m.queries++
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) ListIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	return ids, nil
}

func newRepo(products ...product.Product) *mockProductRepo {
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &mockProductRepo{byID: byID}
}

func TestReprice_UsesCatalogPrice(t *testing.T) {
	repo := newRepo(
		product.Product{ID: "p1", SKU: "SRD-01", Name: "Sourdough Loaf", PricePence: 420, Active: true},
		product.Product{ID: "p2", SKU: "CRS-02", Name: "Croissant", PricePence: 250, Active: true},
	)
	v, err := NewVerifier(context.Background(), repo)
	require.NoError(t, err)

	priced, err := v.Reprice(context.Background(), []Line{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, priced, 2)

	assert.Equal(t, int64(420), priced[0].UnitPricePence)
	assert.Equal(t, "Sourdough Loaf", priced[0].Name)
	assert.Equal(t, "SRD-01", priced[0].SKU)
	assert.Equal(t, 2, priced[0].Quantity)
}

func TestReprice_UnknownIDRejectedWithoutQuery(t *testing.T) {
	repo := newRepo(product.Product{ID: "p1", Name: "Bun", PricePence: 100, Active: true})
	v, err := NewVerifier(context.Background(), repo)
	require.NoError(t, err)

	_, err = v.Reprice(context.Background(), []Line{{ProductID: "junk-id", Quantity: 1}})

	var unknown *UnknownProductError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "junk-id", unknown.ProductID)
	assert.Zero(t, repo.queries, "bloom miss must not hit the catalog")
}

func TestReprice_InactiveProductRejected(t *testing.T) {
	repo := newRepo(product.Product{ID: "p1", Name: "Retired Bake", PricePence: 100, Active: false})
	v, err := NewVerifier(context.Background(), repo)
	require.NoError(t, err)

	_, err = v.Reprice(context.Background(), []Line{{ProductID: "p1", Quantity: 1}})

	var unknown *UnknownProductError
	require.ErrorAs(t, err, &unknown)
}

func TestRefresh_PicksUpNewProducts(t *testing.T) {
	repo := newRepo(product.Product{ID: "p1", Name: "Bun", PricePence: 100, Active: true})
	v, err := NewVerifier(context.Background(), repo)
	require.NoError(t, err)

	repo.byID["p2"] = product.Product{ID: "p2", Name: "New Bake", PricePence: 300, Active: true}

	// Not yet in the filter.
	_, err = v.Reprice(context.Background(), []Line{{ProductID: "p2", Quantity: 1}})
	var unknown *UnknownProductError
	require.ErrorAs(t, err, &unknown)

	require.NoError(t, v.Refresh(context.Background()))

	priced, err := v.Reprice(context.Background(), []Line{{ProductID: "p2", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(300), priced[0].UnitPricePence)
}
