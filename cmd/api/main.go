package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/b23bb1023/Manhwa-agent/internal/app"
	"github.com/b23bb1023/Manhwa-agent/internal/config"
	apihttp "github.com/b23bb1023/Manhwa-agent/internal/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	services, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		slog.Error("failed to wire services", "error", err)
		os.Exit(1)
	}
	defer services.Close()

	services.Controller.Startup(context.Background())

	server := apihttp.NewServer(cfg, apihttp.Dependencies{
		Scraper:    services.Scraper,
		Store:      services.Store,
		Controller: services.Controller,
		Logger:     logger,
	})

	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	if cfg.PollingEnabled {
		services.Poller.Start(pollerCtx)
	}

	go func() {
		if err := server.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	slog.Info("api started",
		"port", cfg.Port,
		"env", cfg.Environment,
		"reading_list", services.Store.Path(),
		"page_loader", cfg.PageLoader,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down server")
	pollerCancel()
	if cfg.PollingEnabled {
		services.Poller.StopWait(2 * time.Second)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
