// Package httpserver is the HTTP edge: the WebSocket upgrade endpoint, the
// stats endpoint, and the operational routes (health, version, metrics).
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Fodi999/ai-cook-beckend/internal/adapter/metrics"
	"github.com/Fodi999/ai-cook-beckend/internal/domain"
	"github.com/Fodi999/ai-cook-beckend/internal/hub"
	"github.com/Fodi999/ai-cook-beckend/internal/platform/config"
)

type Server struct {
	echo   *echo.Echo
	config *config.Config

	handler   *hub.Handler
	stats     *hub.StatsReporter
	validator domain.TokenValidator
	limiter   *ConnectionLimiter

	realtimeMetrics *metrics.RealtimeMetrics
	metricsHandler  http.Handler

	startTime time.Time
}

func NewServer(
	cfg *config.Config,
	handler *hub.Handler,
	stats *hub.StatsReporter,
	validator domain.TokenValidator,
	realtimeMetrics *metrics.RealtimeMetrics,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:            e,
		config:          cfg,
		handler:         handler,
		stats:           stats,
		validator:       validator,
		limiter:         NewConnectionLimiter(int64(cfg.MaxWebSocketConnections)),
		realtimeMetrics: realtimeMetrics,
		metricsHandler:  metricsHandler,
		startTime:       time.Now(),
	}

	srv.registerRoutes(httpMetrics)

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
