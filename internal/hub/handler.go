package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Fodi999/ai-cook-beckend/internal/adapter/metrics"
	"github.com/Fodi999/ai-cook-beckend/internal/domain"
)

const (
	writeDeadline = 5 * time.Second
	maxFrameSize  = 4096
)

// Handler runs the per-connection lifecycle on an already-authenticated,
// already-upgraded socket: it registers the connection, then drives the
// reader and writer loops until any close trigger fires. All triggers -
// client close, protocol error, write failure, eviction by the monitor -
// converge on the same teardown, which runs exactly once.
type Handler struct {
	registry    *Registry
	broadcaster *Broadcaster
	metrics     *metrics.RealtimeMetrics
	clock       clockwork.Clock
}

// NewHandler creates a connection handler over the shared registry.
func NewHandler(registry *Registry, broadcaster *Broadcaster, m *metrics.RealtimeMetrics, clock clockwork.Clock) *Handler {
	return &Handler{registry: registry, broadcaster: broadcaster, metrics: m, clock: clock}
}

// Serve blocks until the connection is closed. The caller owns the upgrade
// handshake and authentication; userID is the validated identity.
func (h *Handler) Serve(ctx context.Context, ws *websocket.Conn, userID uuid.UUID) {
	conn := h.registry.Register(userID)
	h.metrics.ActiveConnections.Inc()

	log := slog.With("connection_id", conn.ID().String(), "user_id", userID.String())
	log.InfoContext(ctx, "WebSocket client connected")

	h.broadcaster.Send(conn, domain.SystemNotification{
		Title:   "Welcome!",
		Message: "You are connected to IT Cook real-time notifications",
		Level:   domain.LevelSuccess,
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writeLoop(ws, conn)
	}()

	h.readLoop(ctx, ws, conn, log)

	conn.Close()
	h.registry.Unregister(conn.ID())
	_ = ws.Close()
	wg.Wait()

	h.metrics.ActiveConnections.Dec()
	log.InfoContext(ctx, "WebSocket client disconnected")
}

// writeLoop drains the outbound sink to the socket. It is the only
// goroutine performing data writes on the connection.
func (h *Handler) writeLoop(ws *websocket.Conn, conn *Connection) {
	for {
		select {
		case event := <-conn.Events():
			frame, err := domain.EncodeEvent(event)
			if err != nil {
				slog.Error("Failed to encode event", "kind", event.Kind(), "error", err)
				continue
			}
			_ = ws.SetWriteDeadline(h.clock.Now().Add(writeDeadline))
			if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				conn.Close()
				_ = ws.Close()
				return
			}
		case <-conn.Done():
			// Closed by the monitor, the reader, or process shutdown.
			// WriteControl is safe to call concurrently with data writes.
			deadline := h.clock.Now().Add(writeDeadline)
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "connection closed")
			_ = ws.WriteControl(websocket.CloseMessage, msg, deadline)
			_ = ws.Close()
			return
		}
	}
}

func (h *Handler) readLoop(ctx context.Context, ws *websocket.Conn, conn *Connection, log *slog.Logger) {
	ws.SetReadLimit(maxFrameSize)

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.DebugContext(ctx, "WebSocket read failed", "error", err)
			}
			return
		}

		// Any inbound frame counts as liveness.
		h.registry.Touch(conn.ID())

		if err := h.dispatch(conn, raw); err != nil {
			h.metrics.ProtocolErrors.Inc()
			log.WarnContext(ctx, "Closing connection on protocol error", "error", err)

			deadline := h.clock.Now().Add(writeDeadline)
			msg := websocket.FormatCloseMessage(websocket.CloseProtocolError, "malformed frame")
			_ = ws.WriteControl(websocket.CloseMessage, msg, deadline)
			return
		}
	}
}
