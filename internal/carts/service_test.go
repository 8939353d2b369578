package carts

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/quickkart/marketplace/internal/domain/cart"
	"github.com/quickkart/marketplace/internal/domain/money"
	"github.com/quickkart/marketplace/internal/domain/product"
	"github.com/quickkart/marketplace/internal/observability"
	"github.com/quickkart/marketplace/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	products *memory.ProductsRepo
	prom     *observability.Prom
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	products := memory.NewProductsRepo()
	carts := memory.NewCartRepo()
	products.OnDelete(carts.DetachProduct)
	prom := observability.NewProm(prometheus.NewRegistry())

	return fixture{
		svc:      NewService(carts, products, prom),
		products: products,
		prom:     prom,
	}
}

func (f fixture) addProduct(t *testing.T, name string, qty int, cents int64) product.Product {
	t.Helper()

	p, err := f.products.Create(context.Background(), product.NewFromCreateRequest(
		product.Owner{ID: "s1", Email: "s@example.com", StoreName: "Shop"},
		product.CreateProductRequest{Name: name, Quantity: &qty, Price: money.Cents(cents), Description: "d"},
		"",
	))
	require.NoError(t, err)
	return p
}

var customer = cart.Customer{ID: "c1", Email: "c1@example.com"}

func TestToggleAddsThenRemoves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Tea", 2, 999)

	res, err := f.svc.Toggle(ctx, customer, p.ID)
	require.NoError(t, err)
	assert.True(t, res.InCart)
	require.NotNil(t, res.Line)
	assert.Equal(t, money.Cents(999), res.Line.Price)

	in, err := f.svc.IsInCart(ctx, customer.ID, "Tea")
	require.NoError(t, err)
	assert.True(t, in)

	res, err = f.svc.Toggle(ctx, customer, p.ID)
	require.NoError(t, err)
	assert.False(t, res.InCart)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.prom.CartToggles.WithLabelValues("added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.prom.CartToggles.WithLabelValues("removed")))
}

func TestToggleUnknownAndSoldOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Toggle(ctx, customer, "missing")
	assert.ErrorIs(t, err, product.ErrNotFound)

	p := f.addProduct(t, "Gone", 0, 100)
	_, err = f.svc.Toggle(ctx, customer, p.ID)
	assert.ErrorIs(t, err, cart.ErrProductUnavailable)
}

func TestSummaryTotalsAndState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sum, err := f.svc.Summary(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, cart.StateEmpty, sum.State)
	assert.Equal(t, money.Cents(0), sum.Total)

	for _, p := range []product.Product{f.addProduct(t, "A", 1, 250), f.addProduct(t, "B", 1, 1999)} {
		_, err := f.svc.Toggle(ctx, customer, p.ID)
		require.NoError(t, err)
	}

	sum, err = f.svc.Summary(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, cart.StatePopulated, sum.State)
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, money.Cents(2249), sum.Total)

	names, err := f.svc.ProductNames(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"A": true, "B": true}, names)

	n, err := f.svc.Clear(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCartsAreIsolatedPerCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Tea", 1, 100)

	_, err := f.svc.Toggle(ctx, customer, p.ID)
	require.NoError(t, err)

	in, err := f.svc.IsInCart(ctx, "someone-else", "Tea")
	require.NoError(t, err)
	assert.False(t, in)
}

func TestToggleRemovesLineOfDeletedProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Widget", 1, 500)

	_, err := f.svc.Toggle(ctx, customer, p.ID)
	require.NoError(t, err)
	require.NoError(t, f.products.DeleteOwned(ctx, p.ID, "s1"))

	res, err := f.svc.Toggle(ctx, customer, p.ID)
	require.NoError(t, err)
	assert.False(t, res.InCart)

	in, err := f.svc.IsInCart(ctx, customer.ID, "Widget")
	require.NoError(t, err)
	assert.False(t, in)

	// nothing left to remove and nothing to add
	_, err = f.svc.Toggle(ctx, customer, p.ID)
	assert.ErrorIs(t, err, product.ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.prom.CartToggles.WithLabelValues("removed")))
}

func TestToggleDeletedProductLeavesOtherCartsAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Widget", 2, 500)
	other := cart.Customer{ID: "c2", Email: "c2@example.com"}

	for _, c := range []cart.Customer{customer, other} {
		_, err := f.svc.Toggle(ctx, c, p.ID)
		require.NoError(t, err)
	}
	require.NoError(t, f.products.DeleteOwned(ctx, p.ID, "s1"))

	_, err := f.svc.Toggle(ctx, customer, p.ID)
	require.NoError(t, err)

	lines, err := f.svc.List(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Nil(t, lines[0].ProductID)
	assert.Equal(t, "Widget", lines[0].ProductName)
}
