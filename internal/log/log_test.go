package log_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	applog "gestock/internal/log"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	applog.Use(zap.New(core))
	t.Cleanup(func() { applog.Use(nil) })
	return logs
}

func TestLevelsAndKinds(t *testing.T) {
	logs := observe(t)

	applog.Info(nil, "boot", nil)
	applog.Audit(nil, "order.create", map[string]any{"order_id": int64(4)})
	applog.Security(nil, "auth.login.fail", map[string]any{"email": "x@y.z"})
	applog.Error(nil, "server.error", errors.New("boom"), nil)

	all := logs.AllUntimed()
	require.Len(t, all, 4)
	require.Equal(t, zapcore.InfoLevel, all[1].Level)
	require.Equal(t, "audit", all[1].ContextMap()["kind"])
	require.Equal(t, int64(4), all[1].ContextMap()["order_id"])
	require.Equal(t, zapcore.WarnLevel, all[2].Level)
	require.Equal(t, zapcore.ErrorLevel, all[3].Level)
	require.Equal(t, "boom", all[3].ContextMap()["error"])
}

func TestRequestContextFields(t *testing.T) {
	logs := observe(t)

	app := fiber.New()
	app.Use(requestid.New())
	app.Get("/ping", func(c *fiber.Ctx) error {
		applog.Audit(c, "ping", nil)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	entries := logs.FilterMessage("ping").AllUntimed()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	require.Equal(t, "GET", ctx["method"])
	require.Equal(t, "/ping", ctx["path"])
	require.NotEmpty(t, ctx["req_id"])
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	_, err := applog.Init("chatty", "")
	require.Error(t, err)
}
