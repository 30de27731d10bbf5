package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gifthub/engine/config"
	"github.com/gifthub/engine/internal/app"
	httpDelivery "github.com/gifthub/engine/internal/delivery/http"
	"github.com/gifthub/engine/internal/logging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Str("store", cfg.Store.Path).
		Msg("starting gifthub engine v1.0.0")

	engine, err := app.New(cfg)
	if err != nil {
		logging.Error().Err(err).Msg("failed to initialize")
		os.Exit(1)
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := httpDelivery.NewIPRateLimiter(cfg.RateLimit.PerIP)
	go limiter.RunCleanup(ctx, 10*time.Minute, time.Hour)

	handler := httpDelivery.NewHandler(httpDelivery.Services{
		Pages:   engine.Pages,
		Catalog: engine.Catalog,
		Related: engine.Related,
		Warmer:  engine.Warmer,
		Ready:   func(context.Context) error { return engine.Store.Ping() },
	})
	router := httpDelivery.SetupRouter(cfg, handler, limiter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second, // warm requests sleep between batches
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", httpServer.Addr).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		logging.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server shutdown error")
	} else {
		logging.Info().Msg("server stopped")
	}
}
