package httpserver

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Fodi999/ai-cook-beckend/internal/errors"
)

// Browsers cannot set Authorization headers on WebSocket handshakes, so the
// token may arrive as a query parameter instead. Origin checks are skipped:
// authentication is by bearer token, not ambient cookies.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const userIDContextKey = "userID"

func (s *Server) handleWebSocket(c echo.Context) error {
	userID, err := s.authenticate(c)
	if err != nil {
		s.realtimeMetrics.AuthFailures.Inc()
		return err
	}

	if !s.limiter.Acquire() {
		return errors.CapacityError("connection limit reached").
			WithContext("max", s.limiter.Max())
	}
	defer s.limiter.Release()

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the handshake error response.
		slog.WarnContext(c.Request().Context(), "WebSocket upgrade failed", "error", err)
		return nil
	}

	s.handler.Serve(c.Request().Context(), ws, userID)
	return nil
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.stats.CurrentStats())
}

// requireBearer guards plain HTTP endpoints with the same token contract as
// the upgrade endpoint.
func (s *Server) requireBearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := s.authenticate(c)
		if err != nil {
			return err
		}
		c.Set(userIDContextKey, userID)
		return next(c)
	}
}

func (s *Server) authenticate(c echo.Context) (uuid.UUID, error) {
	token := bearerToken(c)
	if token == "" {
		return uuid.Nil, errors.UnauthorizedError("missing bearer token", nil)
	}

	userID, err := s.validator.Validate(c.Request().Context(), token)
	if err != nil {
		return uuid.Nil, errors.UnauthorizedError("invalid bearer token", err)
	}
	return userID, nil
}

func bearerToken(c echo.Context) string {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return token
		}
		return ""
	}
	return c.QueryParam("token")
}
