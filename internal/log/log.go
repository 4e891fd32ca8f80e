package log

import (
	"sort"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(zap.NewNop())
}

// Init builds the process logger from a text level, writing JSON to stdout
// and, when file is set, to that file as well.
func Init(level, file string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zapcfg := zap.NewProductionConfig()
	zapcfg.Level = lvl
	// audit lines must never be dropped
	zapcfg.Sampling = nil
	if file != "" {
		zapcfg.OutputPaths = append(zapcfg.OutputPaths, file)
	}
	zl, err := zapcfg.Build()
	if err != nil {
		return nil, err
	}
	Use(zl)
	return zl, nil
}

// Use replaces the process logger.
func Use(zl *zap.Logger) {
	if zl == nil {
		zl = zap.NewNop()
	}
	current.Store(zl)
}

func L() *zap.Logger { return current.Load() }

func fieldsOf(c *fiber.Ctx, kind string, err error, fields map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+7)
	out = append(out, zap.String("kind", kind))
	if c != nil {
		out = append(out,
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
		)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			out = append(out, zap.String("req_id", rid))
		}
	}
	if err != nil {
		out = append(out, zap.Error(err))
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	L().Info(action, fieldsOf(c, "info", nil, fields)...)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	L().Info(action, fieldsOf(c, "audit", nil, fields)...)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	L().Warn(action, fieldsOf(c, "security", nil, fields)...)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	L().Error(action, fieldsOf(c, "error", err, fields)...)
}
