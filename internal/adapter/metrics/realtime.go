package metrics

import "github.com/prometheus/client_golang/prometheus"

// RealtimeMetrics holds Prometheus metrics for the notification hub.
type RealtimeMetrics struct {
	ActiveConnections prometheus.Gauge
	EventsDelivered   *prometheus.CounterVec
	EventsDropped     *prometheus.CounterVec
	EvictedClients    prometheus.Counter
	ProtocolErrors    prometheus.Counter
	AuthFailures      prometheus.Counter
	FanoutSize        prometheus.Histogram
}

// NewRealtimeMetrics creates and registers hub metrics on the given registry.
func NewRealtimeMetrics(reg prometheus.Registerer) *RealtimeMetrics {
	m := &RealtimeMetrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "active_connections",
			Help:      "Number of registered WebSocket connections.",
		}),
		EventsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "events_delivered_total",
			Help:      "Events enqueued for delivery, by event kind.",
		}, []string{"kind"}),
		EventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "events_dropped_total",
			Help:      "Events dropped because a connection's send buffer was full, by event kind.",
		}, []string{"kind"}),
		EvictedClients: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "evicted_clients_total",
			Help:      "Connections evicted by the heartbeat monitor.",
		}),
		ProtocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "protocol_errors_total",
			Help:      "Connections closed due to malformed inbound frames.",
		}),
		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "auth_failures_total",
			Help:      "WebSocket upgrade attempts rejected by token validation.",
		}),
		FanoutSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "publish_fanout_size",
			Help:      "Number of target connections resolved per published event.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}

	reg.MustRegister(
		m.ActiveConnections,
		m.EventsDelivered,
		m.EventsDropped,
		m.EvictedClients,
		m.ProtocolErrors,
		m.AuthFailures,
		m.FanoutSize,
	)
	return m
}
