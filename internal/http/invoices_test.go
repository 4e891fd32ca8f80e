package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/require"

	"gestock/internal/http/handlers"
)

func TestInvoice(t *testing.T) {
	app := newApp(t, testConfig())
	admin := login(t, app, adminEmail)
	awa := login(t, app, awaEmail)

	for _, o := range []map[string]any{
		{"product_id": 1, "quantity": 2, "order_date": "2025-04-07"},
		{"product_id": 2, "quantity": 1, "order_date": "2025-04-07"},
		{"product_id": 2, "quantity": 4, "order_date": "2025-04-08"},
	} {
		resp, body := call(t, app, http.MethodPost, "/api/orders", o, awa)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}

	resp, body := call(t, app, http.MethodGet, "/api/invoices/1?date=2025-04-07", nil, awa)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	inv := decode[map[string]any](t, body)
	require.Equal(t, "FAC-20250407-0001", inv["number"])
	require.EqualValues(t, 2*15000+6500, inv["total"])
	require.Len(t, inv["lines"], 2)

	resp, _ = call(t, app, http.MethodGet, "/api/invoices/2?date=2025-04-07", nil, awa)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = call(t, app, http.MethodGet, "/api/invoices/1?date=07-04-2025", nil, awa)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = call(t, app, http.MethodGet, "/api/invoices/99", nil, admin)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = call(t, app, http.MethodGet, "/invoices/1?date=2025-04-08", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := string(body)
	require.Contains(t, page, "FAC-20250408-0001")
	require.Contains(t, page, "Huile 5L")
	require.Contains(t, page, "26000")

	resp, _ = call(t, app, http.MethodGet, "/invoices/1", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestErrorHandlerHidesInternals(t *testing.T) {
	logs := observe(t)
	app := fiber.New(fiber.Config{
		Views:        html.New("../../web/templates", ".html"),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(requestid.New())
	app.Get("/err", func(c *fiber.Ctx) error { return errors.New("db timeout: secret trace") })
	app.Get("/api/err", func(c *fiber.Ctx) error { return errors.New("db timeout: secret trace") })

	for _, path := range []string{"/err", "/api/err"} {
		resp, body := call(t, app, http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		require.Contains(t, string(body), "Something went wrong")
		require.NotContains(t, string(body), "secret")
	}
	entries := logs.FilterMessage("server.error").All()
	require.Len(t, entries, 2)
	require.NotEmpty(t, entries[0].ContextMap()["req_id"])
}

func TestUnknownRouteAndBodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.BodyLimit = 1024
	app := newApp(t, cfg)

	resp, body := call(t, app, http.MethodGet, "/api/nowhere", nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, string(body), "Page not found")

	resp, _ = call(t, app, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"`+strings.Repeat("a", 4096)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	// the in-memory test conn fails the read instead of answering 413
	if err != nil {
		require.Contains(t, err.Error(), "body size exceeds")
		return
	}
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
