package hub

import (
	"log/slog"
	"sync/atomic"

	"github.com/Fodi999/ai-cook-beckend/internal/adapter/metrics"
	"github.com/Fodi999/ai-cook-beckend/internal/domain"
)

// Broadcaster resolves a published event's delivery scope against the
// registry and fans the event out to each target's outbound sink.
//
// Publish never blocks and never fails the caller: a full sink drops the
// event for that one connection only and delivery to every other target
// proceeds. Per-connection order is FIFO because each target has a single
// buffered channel; no ordering exists across connections or publishers.
type Broadcaster struct {
	registry *Registry
	metrics  *metrics.RealtimeMetrics

	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// NewBroadcaster creates a broadcaster over the given registry.
func NewBroadcaster(registry *Registry, m *metrics.RealtimeMetrics) *Broadcaster {
	return &Broadcaster{registry: registry, metrics: m}
}

// Publish delivers the event to every connection matched by scope.
func (b *Broadcaster) Publish(event domain.Event, scope domain.Scope) {
	var targets []*Connection
	switch scope.Kind() {
	case domain.ScopeKindAll:
		targets = b.registry.Connections()
	case domain.ScopeKindUser:
		targets = b.registry.ConnectionsForUser(scope.UserID())
	case domain.ScopeKindChannel:
		targets = b.registry.ConnectionsForChannel(scope.Channel())
	}

	b.metrics.FanoutSize.Observe(float64(len(targets)))

	for _, conn := range targets {
		b.Send(conn, event)
	}
}

// Send delivers an event to one connection with the same delivered/dropped
// accounting as a scoped publish. Used directly for events addressed to a
// single connection: the welcome notification and monitor heartbeats.
func (b *Broadcaster) Send(conn *Connection, event domain.Event) bool {
	kind := string(event.Kind())
	if conn.TrySend(event) {
		b.delivered.Add(1)
		b.metrics.EventsDelivered.WithLabelValues(kind).Inc()
		return true
	}
	b.dropped.Add(1)
	b.metrics.EventsDropped.WithLabelValues(kind).Inc()
	slog.Warn("Dropping event for slow client",
		"connection_id", conn.ID().String(),
		"kind", kind,
	)
	return false
}

// DeliveredTotal returns the number of events enqueued since process start.
func (b *Broadcaster) DeliveredTotal() uint64 { return b.delivered.Load() }

// DroppedTotal returns the number of events dropped since process start.
func (b *Broadcaster) DroppedTotal() uint64 { return b.dropped.Load() }
