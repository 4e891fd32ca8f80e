package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ADDR", "DB_DRIVER", "DB_DSN", "LOG_LEVEL", "LOG_FILE", "SEED", "BODY_LIMIT_KB", "LOGIN_RATE_MAX", "LOGIN_RATE_WINDOW"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "sqlite", cfg.DBDriver)
	require.Equal(t, "gestock.db", cfg.DBDSN)
	require.Equal(t, "info", cfg.LogLevel)
	require.True(t, cfg.Seed)
	require.Equal(t, 1024*1024, cfg.BodyLimit)
	require.Equal(t, 5, cfg.LoginRateMax)
	require.Equal(t, 10*time.Minute, cfg.LoginRateWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_DRIVER", "PGX")
	t.Setenv("DB_DSN", "postgres://localhost/gestock")
	t.Setenv("SEED", "false")
	t.Setenv("BODY_LIMIT_KB", "16")
	t.Setenv("LOGIN_RATE_WINDOW", "30")

	cfg := Load()
	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, "pgx", cfg.DBDriver)
	require.Equal(t, "postgres://localhost/gestock", cfg.DBDSN)
	require.False(t, cfg.Seed)
	require.Equal(t, 16*1024, cfg.BodyLimit)
	require.Equal(t, 30*time.Second, cfg.LoginRateWindow)
}

func TestLoadIgnoresGarbage(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("SEED", "maybe")
	t.Setenv("LOGIN_RATE_MAX", "lots")

	cfg := Load()
	require.Equal(t, "sqlite", cfg.DBDriver)
	require.True(t, cfg.Seed)
	require.Equal(t, 5, cfg.LoginRateMax)
}

func TestFieldsHidesPostgresDSN(t *testing.T) {
	cfg := Config{DBDriver: "pgx", DBDSN: "postgres://u:secret@db/gestock"}
	require.NotContains(t, cfg.Fields(), "db_dsn")
	cfg = Config{DBDriver: "sqlite", DBDSN: "gestock.db"}
	require.Equal(t, "gestock.db", cfg.Fields()["db_dsn"])
}
