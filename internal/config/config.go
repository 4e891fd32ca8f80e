package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr            string
	DBDriver        string
	DBDSN           string
	LogLevel        string
	LogFile         string
	TemplatesDir    string
	Seed            bool
	BodyLimit       int
	LoginRateMax    int
	LoginRateWindow time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	b, err := strconv.ParseBool(getenv(key, ""))
	if err != nil {
		return def
	}
	return b
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

func Load() Config {
	driver := strings.ToLower(getenv("DB_DRIVER", "sqlite"))
	if driver != "pgx" {
		driver = "sqlite"
	}
	cfg := Config{
		Addr:            getenv("ADDR", ":8080"),
		DBDriver:        driver,
		DBDSN:           getenv("DB_DSN", "gestock.db"), // sqlite file in project root
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFile:         getenv("LOG_FILE", "./gestock.log"),
		TemplatesDir:    getenv("TEMPLATES_DIR", "./web/templates"),
		Seed:            boolenv("SEED", true),
		BodyLimit:       atoienv("BODY_LIMIT_KB", 1024) * 1024,
		LoginRateMax:    atoienv("LOGIN_RATE_MAX", 5),
		LoginRateWindow: durenvs("LOGIN_RATE_WINDOW", 600),
	}
	return cfg
}

// Fields is the resolved configuration for the startup log line. A
// PostgreSQL DSN may carry credentials and is left out.
func (c Config) Fields() map[string]any {
	f := map[string]any{
		"addr":       c.Addr,
		"db_driver":  c.DBDriver,
		"log_level":  c.LogLevel,
		"log_file":   c.LogFile,
		"templates":  c.TemplatesDir,
		"seed":       c.Seed,
		"body_limit": c.BodyLimit,
	}
	if c.DBDriver == "sqlite" {
		f["db_dsn"] = c.DBDSN
	}
	return f
}
