package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/groundcheck/internal/api"
	"github.com/Harshitk-cp/groundcheck/internal/bootstrap"
	"github.com/Harshitk-cp/groundcheck/internal/buildconfig"
	"github.com/Harshitk-cp/groundcheck/internal/config"
	"github.com/Harshitk-cp/groundcheck/internal/service"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		// The logger depends on config, so report on a bare logger.
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	logger, err := config.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	stack, err := bootstrap.Open(ctx, logger, bootstrap.StoreOptions())
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer stack.Close()

	app := api.NewApp(stack.Store, stack.Memory, stack.Verifier, logger, api.Options{
		APIKeys:          config.APIKeys(),
		RateLimitRPS:     config.RateLimitRPS(),
		RateLimitBurst:   config.RateLimitBurst(),
		BatchConcurrency: config.BatchConcurrency(),
	})
	if len(config.APIKeys()) == 0 {
		logger.Warn("API_KEYS not set, /v1 is unauthenticated")
	}

	// Background services
	bgCtx, stopBackground := context.WithCancel(ctx)
	go app.RateLimiter.RunCleanup(bgCtx, time.Minute)

	var pruner *service.Pruner
	if retention := config.MemoryRetention(); retention > 0 {
		pruner = service.NewPruner(stack.Store, retention, logger)
		pruner.Start()
	}

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("version", buildconfig.Version()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	stopBackground()
	if pruner != nil {
		pruner.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
