package hub

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Fodi999/ai-cook-beckend/internal/adapter/metrics"
	"github.com/Fodi999/ai-cook-beckend/internal/domain"
)

// Monitor is the heartbeat sweep: on every tick it evicts connections whose
// last inbound activity is older than the liveness timeout, then enqueues a
// Heartbeat event for each survivor. Liveness is judged purely from
// last_seen, so the monitor carries no state between ticks.
type Monitor struct {
	registry    *Registry
	broadcaster *Broadcaster
	metrics     *metrics.RealtimeMetrics
	clock       clockwork.Clock
	interval    time.Duration
	timeout     time.Duration

	done    chan struct{}
	stopped chan struct{}
}

// NewMonitor creates and starts the heartbeat monitor.
func NewMonitor(registry *Registry, broadcaster *Broadcaster, m *metrics.RealtimeMetrics, clock clockwork.Clock, interval, timeout time.Duration) *Monitor {
	mon := &Monitor{
		registry:    registry,
		broadcaster: broadcaster,
		metrics:     m,
		clock:       clock,
		interval:    interval,
		timeout:     timeout,
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	go mon.run()
	return mon
}

func (m *Monitor) run() {
	defer close(m.stopped)

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			m.sweep()
		case <-m.done:
			return
		}
	}
}

func (m *Monitor) sweep() {
	now := m.clock.Now()
	for _, conn := range m.registry.Connections() {
		if now.Sub(conn.LastSeen()) > m.timeout {
			conn.Close()
			m.registry.Unregister(conn.ID())
			m.metrics.EvictedClients.Inc()
			slog.Warn("Evicted inactive connection",
				"connection_id", conn.ID().String(),
				"user_id", conn.UserID().String(),
				"last_seen", conn.LastSeen(),
			)
			continue
		}
		// Survivors get a heartbeat; the client answers with an inbound
		// Heartbeat frame which refreshes last_seen. A full sink counts
		// as a drop like any other event.
		m.broadcaster.Send(conn, domain.Heartbeat{Timestamp: now})
	}
}

// Stop signals the monitor to exit and waits for the sweep loop to finish.
func (m *Monitor) Stop() {
	close(m.done)
	<-m.stopped
}
