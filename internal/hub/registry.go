package hub

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Registry is the authoritative in-memory table of live connections,
// indexed by id, by user, and by channel subscription.
//
// Index membership changes (register, unregister, subscribe) take the
// registry lock so every read sees a consistent point-in-time view across
// all three indices. The hot path - touch on every inbound frame - only
// needs a read lock for the id lookup and then a lock-free atomic store,
// so heartbeats from unrelated connections do not contend with each other.
type Registry struct {
	clock      clockwork.Clock
	bufferSize int

	mu        sync.RWMutex
	byID      map[uuid.UUID]*Connection
	byUser    map[uuid.UUID]map[uuid.UUID]*Connection
	byChannel map[string]map[uuid.UUID]*Connection
}

// NewRegistry creates an empty registry. bufferSize is the capacity of each
// connection's outbound sink.
func NewRegistry(clock clockwork.Clock, bufferSize int) *Registry {
	return &Registry{
		clock:      clock,
		bufferSize: bufferSize,
		byID:       make(map[uuid.UUID]*Connection),
		byUser:     make(map[uuid.UUID]map[uuid.UUID]*Connection),
		byChannel:  make(map[string]map[uuid.UUID]*Connection),
	}
}

// Register creates a new connection for the user with an empty subscription
// set and last_seen = now. It never fails; a user may hold any number of
// simultaneous connections.
func (r *Registry) Register(userID uuid.UUID) *Connection {
	conn := newConnection(userID, r.bufferSize, r.clock.Now())

	r.mu.Lock()
	r.byID[conn.id] = conn
	userConns, ok := r.byUser[userID]
	if !ok {
		userConns = make(map[uuid.UUID]*Connection)
		r.byUser[userID] = userConns
	}
	userConns[conn.id] = conn
	r.mu.Unlock()

	slog.Debug("Connection registered", "connection_id", conn.id.String(), "user_id", userID.String())
	return conn
}

// Unregister removes the connection from every index. Idempotent: unknown
// ids are a no-op.
func (r *Registry) Unregister(connectionID uuid.UUID) {
	r.mu.Lock()
	conn, ok := r.byID[connectionID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.byID, connectionID)

	if userConns, ok := r.byUser[conn.userID]; ok {
		delete(userConns, connectionID)
		if len(userConns) == 0 {
			delete(r.byUser, conn.userID)
		}
	}
	for channel := range *conn.subscriptions.Load() {
		r.removeFromChannelLocked(channel, connectionID)
	}
	r.mu.Unlock()

	slog.Debug("Connection unregistered", "connection_id", connectionID.String(), "user_id", conn.userID.String())
}

// Touch updates last_seen to now. A race between eviction and an in-flight
// heartbeat resolves in favor of eviction: touching a gone connection is a no-op.
func (r *Registry) Touch(connectionID uuid.UUID) {
	r.mu.RLock()
	conn, ok := r.byID[connectionID]
	r.mu.RUnlock()
	if ok {
		conn.touch(r.clock.Now())
	}
}

// Subscribe adds the channel to the connection's subscription set.
func (r *Registry) Subscribe(connectionID uuid.UUID, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.byID[connectionID]
	if !ok {
		return
	}

	old := *conn.subscriptions.Load()
	if _, exists := old[channel]; exists {
		return
	}
	next := make(map[string]struct{}, len(old)+1)
	for ch := range old {
		next[ch] = struct{}{}
	}
	next[channel] = struct{}{}
	conn.subscriptions.Store(&next)

	chanConns, ok := r.byChannel[channel]
	if !ok {
		chanConns = make(map[uuid.UUID]*Connection)
		r.byChannel[channel] = chanConns
	}
	chanConns[connectionID] = conn
}

// Unsubscribe removes the channel from the connection's subscription set.
func (r *Registry) Unsubscribe(connectionID uuid.UUID, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.byID[connectionID]
	if !ok {
		return
	}

	old := *conn.subscriptions.Load()
	if _, exists := old[channel]; !exists {
		return
	}
	next := make(map[string]struct{}, len(old)-1)
	for ch := range old {
		if ch != channel {
			next[ch] = struct{}{}
		}
	}
	conn.subscriptions.Store(&next)

	r.removeFromChannelLocked(channel, connectionID)
}

func (r *Registry) removeFromChannelLocked(channel string, connectionID uuid.UUID) {
	if chanConns, ok := r.byChannel[channel]; ok {
		delete(chanConns, connectionID)
		if len(chanConns) == 0 {
			delete(r.byChannel, channel)
		}
	}
}

// Connections returns a snapshot of every registered connection.
func (r *Registry) Connections() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.byID))
	for _, conn := range r.byID {
		out = append(out, conn)
	}
	return out
}

// ConnectionsForUser returns a snapshot of the user's connections.
func (r *Registry) ConnectionsForUser(userID uuid.UUID) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userConns := r.byUser[userID]
	out := make([]*Connection, 0, len(userConns))
	for _, conn := range userConns {
		out = append(out, conn)
	}
	return out
}

// ConnectionsForChannel returns a snapshot of the channel's subscribers.
func (r *Registry) ConnectionsForChannel(channel string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chanConns := r.byChannel[channel]
	out := make([]*Connection, 0, len(chanConns))
	for _, conn := range chanConns {
		out = append(out, conn)
	}
	return out
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// CloseAll closes and unregisters every remaining connection. Used at
// process shutdown to guarantee no orphaned writer loops.
func (r *Registry) CloseAll() {
	for _, conn := range r.Connections() {
		conn.Close()
		r.Unregister(conn.id)
	}
}
