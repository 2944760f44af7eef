package httpserver

import "sync/atomic"

// ConnectionLimiter caps total concurrent WebSocket connections for this
// instance. Lock-free so it sits directly on the upgrade path.
type ConnectionLimiter struct {
	current atomic.Int64
	max     int64
}

// NewConnectionLimiter creates a limiter with the specified maximum.
func NewConnectionLimiter(max int64) *ConnectionLimiter {
	return &ConnectionLimiter{max: max}
}

// Acquire attempts to claim a connection slot.
// Returns true if successful, false if at capacity.
func (l *ConnectionLimiter) Acquire() bool {
	for {
		current := l.current.Load()
		if current >= l.max {
			return false
		}
		if l.current.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

// Release frees a connection slot.
func (l *ConnectionLimiter) Release() {
	l.current.Add(-1)
}

// Current returns the number of claimed slots.
func (l *ConnectionLimiter) Current() int64 {
	return l.current.Load()
}

// Max returns the maximum allowed connections.
func (l *ConnectionLimiter) Max() int64 {
	return l.max
}

// HasCapacity reports whether another connection would be admitted.
func (l *ConnectionLimiter) HasCapacity() bool {
	return l.current.Load() < l.max
}
