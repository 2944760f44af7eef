package hub

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Fodi999/ai-cook-beckend/internal/domain"
)

// Connection represents one live client socket tracked by the registry.
// The outbound sink is a bounded buffer: the writer loop is its only
// consumer, while the broadcaster and monitor produce into it without
// ever blocking.
type Connection struct {
	id     uuid.UUID
	userID uuid.UUID

	sink     chan domain.Event
	closed   chan struct{}
	stopOnce sync.Once

	lastSeen atomic.Int64 // unix nanos

	// subscriptions is written only by the registry under its lock;
	// the set itself is replaced on change so snapshots stay stable.
	subscriptions atomic.Pointer[map[string]struct{}]
}

func newConnection(userID uuid.UUID, bufferSize int, now time.Time) *Connection {
	c := &Connection{
		id:     uuid.New(),
		userID: userID,
		sink:   make(chan domain.Event, bufferSize),
		closed: make(chan struct{}),
	}
	c.lastSeen.Store(now.UnixNano())
	empty := make(map[string]struct{})
	c.subscriptions.Store(&empty)
	return c
}

// ID returns the connection's process-unique identifier.
func (c *Connection) ID() uuid.UUID { return c.id }

// UserID returns the identity resolved during authentication.
func (c *Connection) UserID() uuid.UUID { return c.userID }

// LastSeen returns the timestamp of the most recent inbound activity.
func (c *Connection) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

func (c *Connection) touch(now time.Time) {
	c.lastSeen.Store(now.UnixNano())
}

// Subscribed reports whether the connection is subscribed to the channel.
func (c *Connection) Subscribed(channel string) bool {
	subs := *c.subscriptions.Load()
	_, ok := subs[channel]
	return ok
}

// Channels returns a snapshot of the connection's subscription set.
func (c *Connection) Channels() []string {
	subs := *c.subscriptions.Load()
	out := make([]string, 0, len(subs))
	for ch := range subs {
		out = append(out, ch)
	}
	return out
}

// TrySend enqueues an event on the outbound sink without blocking.
// It returns false if the buffer is full or the connection is closed;
// the caller decides whether that counts as a drop.
func (c *Connection) TrySend(e domain.Event) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.sink <- e:
		return true
	default:
		return false
	}
}

// Events exposes the outbound sink to the connection's writer loop.
func (c *Connection) Events() <-chan domain.Event { return c.sink }

// Done is closed exactly once, whichever trigger closes the connection first.
func (c *Connection) Done() <-chan struct{} { return c.closed }

// Close releases the sink. Safe to call from any goroutine, any number of times.
func (c *Connection) Close() {
	c.stopOnce.Do(func() { close(c.closed) })
}
