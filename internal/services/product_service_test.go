package services_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"gestock/internal/services"
)

func TestProductService_CreateAndPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.product(t, "  Riz  ", 12, 1500)
	require.Equal(t, "Riz", p.Name)
	require.Equal(t, int64(18000), p.Total)

	p, err := f.products.Update(ctx, p.ID, services.ProductPatch{UnitPrice: ptr(int64(2000))})
	require.NoError(t, err)
	require.Equal(t, int64(24000), p.Total)

	p, err = f.products.Update(ctx, p.ID, services.ProductPatch{Quantity: ptr(int64(3)), Name: ptr("Riz brisé")})
	require.NoError(t, err)
	require.Equal(t, "Riz brisé", p.Name)
	require.Equal(t, int64(6000), f.stock(t, p).Total)

	_, err = f.products.Update(ctx, p.ID, services.ProductPatch{Quantity: ptr(int64(-1))})
	require.ErrorIs(t, err, services.ErrInvalidInput)
	require.Equal(t, int64(3), f.stock(t, p).QuantityAvailable)

	_, err = f.products.Update(ctx, 999, services.ProductPatch{Quantity: ptr(int64(1))})
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestProductService_CreateRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.products.Create(ctx, services.NewProduct{Name: "X", SupplierID: 404, Quantity: 1, UnitPrice: 1})
	require.ErrorIs(t, err, services.ErrNotFound)
	_, err = f.products.Create(ctx, services.NewProduct{Name: "X", SupplierID: f.supplier.ID, Quantity: -1, UnitPrice: 1})
	require.ErrorIs(t, err, services.ErrInvalidInput)
	_, err = f.products.Create(ctx, services.NewProduct{Name: "X", SupplierID: f.supplier.ID, Quantity: 1, UnitPrice: -5})
	require.ErrorIs(t, err, services.ErrInvalidInput)
	_, err = f.products.Create(ctx, services.NewProduct{Name: " ", SupplierID: f.supplier.ID})
	require.ErrorIs(t, err, services.ErrInvalidInput)

	list, err := f.products.List(ctx, "", 0)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestProductService_ListAndAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	riz := f.product(t, "Riz parfumé", 40, 15000)
	huile := f.product(t, "Huile 5L", 3, 6500)
	sucre := f.product(t, "Sucre 1kg", 0, 800)

	list, err := f.products.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "Huile 5L", list[0].Name)

	list, err = f.products.List(ctx, "RIZ", f.supplier.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, riz.ID, list[0].ID)

	for _, tc := range []struct {
		id   int64
		want string
	}{
		{riz.ID, services.InStock},
		{huile.ID, services.LowStock},
		{sucre.ID, services.OutOfStock},
	} {
		a, err := f.products.Availability(ctx, tc.id)
		require.NoError(t, err)
		require.Equal(t, tc.want, a.Status)
	}

	_, err = f.products.Availability(ctx, 999)
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestProductService_DeleteCascadesOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "P", 10, 1)
	o, err := f.orders.Create(ctx, services.CreateOrder{ClientID: f.client.ID, ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, f.products.Delete(ctx, p.ID))
	_, err = f.orders.Get(ctx, o.ID)
	require.ErrorIs(t, err, services.ErrNotFound)
	require.ErrorIs(t, f.products.Delete(ctx, p.ID), services.ErrNotFound)
}

func TestProductService_PatchPriceAndQuantityTogether(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Riz", 1000, 1)

	// the old quantity at the new price would overflow, the final values fit
	price := int64(math.MaxInt64 / 10)
	p, err := f.products.Update(ctx, p.ID, services.ProductPatch{UnitPrice: ptr(price), Quantity: ptr(int64(1))})
	require.NoError(t, err)
	require.Equal(t, price, p.Total)
	require.Equal(t, int64(1), f.stock(t, p).QuantityAvailable)

	_, err = f.products.Update(ctx, p.ID, services.ProductPatch{Quantity: ptr(int64(20))})
	require.ErrorIs(t, err, services.ErrInvalidInput)
	_, err = f.products.Update(ctx, p.ID, services.ProductPatch{UnitPrice: ptr(int64(-1)), Quantity: ptr(int64(2))})
	require.ErrorIs(t, err, services.ErrInvalidInput)
	require.Equal(t, price, f.stock(t, p).UnitPrice)
}
