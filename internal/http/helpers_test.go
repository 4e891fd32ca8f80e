package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gestock/internal/config"
	"gestock/internal/http/handlers"
	applog "gestock/internal/log"
	"gestock/internal/repos"
)

// Seeded demo data: client 1 is Diallo (user awa), product 1 is the rice
// with 40 units at 15000.
const (
	adminEmail = "admin@gestock.test"
	awaEmail   = "awa@gestock.test"
	password   = "Passw0rd!"
)

func testConfig() config.Config {
	return config.Config{
		DBDriver:        repos.DriverSQLite,
		DBDSN:           ":memory:",
		TemplatesDir:    "../../web/templates",
		BodyLimit:       64 * 1024,
		LoginRateMax:    100,
		LoginRateWindow: time.Minute,
	}
}

func newApp(t *testing.T, cfg config.Config) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.Seed(context.Background(), db))
	return handlers.NewApp(cfg, db)
}

// observe routes the process logger into memory for the rest of the test.
func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	applog.Use(zap.New(core))
	t.Cleanup(func() { applog.Use(nil) })
	return logs
}

func call(t *testing.T, app *fiber.App, method, path string, body any, sid string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, body := call(t, app, http.MethodPost, "/api/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c.Value
		}
	}
	t.Fatal("sid cookie missing")
	return ""
}

type productJSON struct {
	ID                int64 `json:"id"`
	QuantityAvailable int64 `json:"quantity_available"`
	UnitPrice         int64 `json:"unit_price"`
	Total             int64 `json:"total"`
}

type orderJSON struct {
	ID              int64  `json:"id"`
	OrderNumber     string `json:"order_number"`
	ClientID        int64  `json:"client_id"`
	ProductID       int64  `json:"product_id"`
	QuantityOrdered int64  `json:"quantity_ordered"`
}

func productStock(t *testing.T, app *fiber.App, sid string, id int64) productJSON {
	t.Helper()
	resp, body := call(t, app, http.MethodGet, "/api/products/"+itoa(id), nil, sid)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	p := decode[productJSON](t, body)
	require.Equal(t, p.QuantityAvailable*p.UnitPrice, p.Total)
	return p
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
