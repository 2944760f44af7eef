package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Fodi999/ai-cook-beckend/internal/adapter/metrics"
	"github.com/Fodi999/ai-cook-beckend/internal/errors"
	"github.com/Fodi999/ai-cook-beckend/internal/platform/logging"
)

func (s *Server) registerRoutes(httpMetrics *metrics.HTTPMetrics) {
	s.echo.Use(correlationMiddleware())
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(errors.Middleware(httpMetrics.ErrorsTotal))
	s.echo.Use(httpMetrics.Middleware())
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	s.registerHealthRoutes()
	s.echo.GET("/metrics", echo.WrapHandler(s.metricsHandler))

	api := s.echo.Group("/api/v1/realtime")
	api.GET("/ws", s.handleWebSocket, newRateLimiter(s.config.UpgradeRatePerSecond, s.config.UpgradeRateBurst))
	api.GET("/stats", s.handleStats, s.requireBearer)
}

// correlationMiddleware attaches a fresh correlation ID to every request
// context so all log lines of one request share an identifier.
func correlationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.WithCorrelationID(c.Request().Context(), logging.NewCorrelationID())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}
