package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Fodi999/ai-cook-beckend/internal/platform/version"
)

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
}

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
	})
}

// The hub has no external dependencies to probe; readiness only confirms the
// instance still accepts connections.
func (s *Server) handleReadiness(c echo.Context) error {
	if !s.limiter.HasCapacity() {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status":      "at capacity",
			"connections": s.limiter.Current(),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": s.limiter.Current(),
	})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, version.Get())
}
