package client_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gestock/internal/client"
	"gestock/internal/config"
	"gestock/internal/http/handlers"
	"gestock/internal/repos"
)

func TestErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/orders":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"insufficient stock","available":2,"requested":5,"shortfall":3}`))
		case "/api/orders/7":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"order 7 not found"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Please sign in first"}`))
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := client.New(srv.URL)

	_, err := c.CreateOrder(ctx, client.OrderRequest{ProductID: 1, Quantity: 5})
	require.ErrorIs(t, err, client.ErrInsufficientStock)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, int64(2), apiErr.Available)
	require.Equal(t, int64(5), apiErr.Requested)

	q := int64(1)
	_, err = c.UpdateOrder(ctx, 7, client.OrderPatch{Quantity: &q})
	require.ErrorIs(t, err, client.ErrNotFound)
	require.Contains(t, err.Error(), "order 7 not found")

	_, err = c.Products(ctx, "")
	require.ErrorIs(t, err, client.ErrUnauthorized)
}

func serve(t *testing.T) string {
	t.Helper()
	cfg := config.Config{
		DBDriver:        repos.DriverSQLite,
		DBDSN:           ":memory:",
		TemplatesDir:    "../../web/templates",
		LoginRateMax:    100,
		LoginRateWindow: time.Minute,
	}
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	require.NoError(t, err)
	require.NoError(t, repos.Seed(context.Background(), db))

	app := handlers.NewApp(cfg, db)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() {
		_ = app.Shutdown()
		_ = db.Close()
	})
	return "http://" + ln.Addr().String()
}

func TestAgainstServer(t *testing.T) {
	ctx := context.Background()
	c := client.New(serve(t))

	_, err := c.Products(ctx, "")
	require.ErrorIs(t, err, client.ErrUnauthorized)

	require.NoError(t, c.Login(ctx, "awa@gestock.test", "Passw0rd!"))
	products, err := c.Products(ctx, "huile")
	require.NoError(t, err)
	require.Len(t, products, 1)

	o, err := c.CreateOrder(ctx, client.OrderRequest{ProductID: products[0].ID, Quantity: 3, OrderDate: "2025-06-01"})
	require.NoError(t, err)
	require.Equal(t, int64(3), o.QuantityOrdered)

	_, err = c.CreateOrder(ctx, client.OrderRequest{ProductID: products[0].ID, Quantity: 100})
	require.ErrorIs(t, err, client.ErrInsufficientStock)

	inv, err := c.Invoice(ctx, o.ClientID, "2025-06-01")
	require.NoError(t, err)
	require.Equal(t, int64(3*6500), inv.Total)

	orders, err := c.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	outcome, err := c.DeleteOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, "deleted", outcome)
	outcome, err = c.DeleteOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, "already_deleted", outcome)
}
