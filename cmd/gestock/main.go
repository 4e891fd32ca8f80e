package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"gestock/internal/config"
	"gestock/internal/http/handlers"
	applog "gestock/internal/log"
	"gestock/internal/repos"
)

func main() {
	cfg := config.Load()

	zl, err := applog.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		// the file sink is optional; keep going on stdout
		zl, err = applog.Init(cfg.LogLevel, "")
		if err != nil {
			panic(err)
		}
		zl.Warn("log.file.unavailable", zap.String("log_file", cfg.LogFile))
	}
	defer func() { _ = zl.Sync() }()
	applog.Info(nil, "config.loaded", cfg.Fields())

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		zl.Fatal("db.open", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Seed {
		if err := repos.Seed(ctx, db); err != nil {
			zl.Fatal("db.seed", zap.Error(err))
		}
	}

	app := handlers.NewApp(cfg, db)
	go func() {
		<-ctx.Done()
		applog.Info(nil, "server.shutdown", nil)
		_ = app.Shutdown()
	}()

	applog.Info(nil, "server.listen", map[string]any{"addr": cfg.Addr})
	if err := app.Listen(cfg.Addr); err != nil {
		zl.Fatal("server.listen", zap.Error(err))
	}
}
