package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hrmportal/internal/app/server"
	"hrmportal/internal/platform/config"
	"hrmportal/internal/platform/demostore"
	"hrmportal/internal/platform/logging"
)

func main() {
	cfg, err := config.LoadFile(os.Getenv("HRM_CONFIG_FILE"))
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	logger := logging.Init(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg, server.WithLogger(logger))
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	if cfg.SeedDemoData {
		for _, cred := range demostore.DemoCredentials {
			logger.Info("demo login", "role", string(cred.Role), "email", cred.Email, "password", cred.Password)
		}
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("server stopped", "err", err)
		app.Close()
		os.Exit(1)
	}
	logger.Info("server stopped")
}
