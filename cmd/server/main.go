package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Fodi999/ai-cook-beckend/internal/adapter/auth"
	"github.com/Fodi999/ai-cook-beckend/internal/adapter/httpserver"
	"github.com/Fodi999/ai-cook-beckend/internal/adapter/metrics"
	"github.com/Fodi999/ai-cook-beckend/internal/hub"
	"github.com/Fodi999/ai-cook-beckend/internal/platform/config"
	"github.com/Fodi999/ai-cook-beckend/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func runGracefulShutdown(srv *httpserver.Server, monitor *hub.Monitor, registry *hub.Registry) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		// Stop the sweep first so it cannot race the final close,
		// then release every remaining connection.
		monitor.Stop()
		registry.CloseAll()

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	registry := metrics.NewRegistry()
	realtimeMetrics := metrics.NewRealtimeMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	connections := hub.NewRegistry(clock, cfg.SendBufferSize)
	broadcaster := hub.NewBroadcaster(connections, realtimeMetrics)
	monitor := hub.NewMonitor(connections, broadcaster, realtimeMetrics, clock, cfg.HeartbeatInterval, cfg.HeartbeatTimeout)
	handler := hub.NewHandler(connections, broadcaster, realtimeMetrics, clock)
	stats := hub.NewStatsReporter(connections, broadcaster, clock)

	validator := auth.NewJWTValidator(cfg.JWTSecret, clock)

	srv := httpserver.NewServer(cfg, handler, stats, validator, realtimeMetrics, httpMetrics, metrics.Handler(registry))

	done := runGracefulShutdown(srv, monitor, connections)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
