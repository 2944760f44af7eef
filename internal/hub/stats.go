package hub

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Stats is the operational snapshot served by the stats endpoint.
type Stats struct {
	ConnectedClients int     `json:"connected_clients"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	EventsDelivered  uint64  `json:"events_delivered"`
	EventsDropped    uint64  `json:"events_dropped"`
}

// StatsReporter produces read-only snapshots of the hub. No side effects.
type StatsReporter struct {
	registry    *Registry
	broadcaster *Broadcaster
	clock       clockwork.Clock
	startedAt   time.Time
}

// NewStatsReporter creates a reporter; uptime counts from this call.
func NewStatsReporter(registry *Registry, broadcaster *Broadcaster, clock clockwork.Clock) *StatsReporter {
	return &StatsReporter{
		registry:    registry,
		broadcaster: broadcaster,
		clock:       clock,
		startedAt:   clock.Now(),
	}
}

// CurrentStats returns the current snapshot.
func (r *StatsReporter) CurrentStats() Stats {
	return Stats{
		ConnectedClients: r.registry.Count(),
		UptimeSeconds:    r.clock.Since(r.startedAt).Seconds(),
		EventsDelivered:  r.broadcaster.DeliveredTotal(),
		EventsDropped:    r.broadcaster.DroppedTotal(),
	}
}
