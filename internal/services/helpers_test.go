package services_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"gestock/internal/domain"
	"gestock/internal/repos"
	"gestock/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fixture struct {
	db        *sqlx.DB
	orders    *services.OrderService
	products  *services.ProductService
	invoices  *services.InvoiceService
	supplier  domain.Supplier
	client    domain.Client
	other     domain.Client
	productDB *repos.ProductRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := memdb(t)

	sup, err := repos.NewSupplierRepo(db).Create(ctx, domain.Supplier{Name: "Sahel Distribution"})
	require.NoError(t, err)
	clients := repos.NewClientRepo(db)
	c1, err := clients.Create(ctx, domain.Client{LastName: "Diallo", FirstName: "Awa"})
	require.NoError(t, err)
	c2, err := clients.Create(ctx, domain.Client{LastName: "Ndiaye", FirstName: "Moussa"})
	require.NoError(t, err)

	productRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	return &fixture{
		db:        db,
		orders:    services.NewOrderService(repos.NewStockStore(db), orderRepo),
		products:  services.NewProductService(productRepo, repos.NewSupplierRepo(db)),
		invoices:  services.NewInvoiceService(orderRepo, clients),
		supplier:  sup,
		client:    c1,
		other:     c2,
		productDB: productRepo,
	}
}

func (f *fixture) product(t *testing.T, name string, qty, price int64) domain.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), services.NewProduct{
		Name: name, SupplierID: f.supplier.ID, Quantity: qty, UnitPrice: price,
	})
	require.NoError(t, err)
	return p
}

// stock reloads p and checks its total still matches its quantity.
func (f *fixture) stock(t *testing.T, p domain.Product) domain.Product {
	t.Helper()
	got, err := f.productDB.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, got.QuantityAvailable*got.UnitPrice, got.Total)
	require.GreaterOrEqual(t, got.QuantityAvailable, int64(0))
	return got
}

func ptr[T any](v T) *T { return &v }
