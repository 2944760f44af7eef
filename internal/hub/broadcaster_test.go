package hub

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fodi999/ai-cook-beckend/internal/adapter/metrics"
	"github.com/Fodi999/ai-cook-beckend/internal/domain"
)

func newTestMetrics() *metrics.RealtimeMetrics {
	return metrics.NewRealtimeMetrics(prometheus.NewRegistry())
}

// drain reads every event currently buffered in the connection's sink.
func drain(conn *Connection) []domain.Event {
	var out []domain.Event
	for {
		select {
		case e := <-conn.Events():
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestBroadcaster_ScopeAll(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock(), 16)
	broadcaster := NewBroadcaster(registry, newTestMetrics())

	conn1 := registry.Register(uuid.New())
	conn2 := registry.Register(uuid.New())

	broadcaster.Publish(domain.SystemNotification{Title: "hi", Level: domain.LevelInfo}, domain.ScopeAll())

	assert.Len(t, drain(conn1), 1)
	assert.Len(t, drain(conn2), 1)
	assert.Equal(t, uint64(2), broadcaster.DeliveredTotal())
	assert.Equal(t, uint64(0), broadcaster.DroppedTotal())
}

func TestBroadcaster_ScopeUserHitsAllDevices(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock(), 16)
	broadcaster := NewBroadcaster(registry, newTestMetrics())

	userID := uuid.New()
	phone := registry.Register(userID)
	laptop := registry.Register(userID)
	stranger := registry.Register(uuid.New())

	broadcaster.Publish(domain.NewFollower{FollowerID: uuid.New(), FollowerName: "dmitry"}, domain.ScopeUser(userID))

	assert.Len(t, drain(phone), 1)
	assert.Len(t, drain(laptop), 1)
	assert.Empty(t, drain(stranger))
}

func TestBroadcaster_ScopeChannelOnlyReachesSubscribers(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock(), 16)
	broadcaster := NewBroadcaster(registry, newTestMetrics())

	subscribed := registry.Register(uuid.New())
	unsubscribed := registry.Register(uuid.New())
	registry.Subscribe(subscribed.ID(), CommunityChannel)

	event := domain.NewCommunityPost{PostID: uuid.New(), AuthorName: "anna", Content: "soup"}
	broadcaster.Publish(event, domain.ScopeChannel(CommunityChannel))

	got := drain(subscribed)
	require.Len(t, got, 1)
	assert.Equal(t, event, got[0])
	assert.Empty(t, drain(unsubscribed))
}

func TestBroadcaster_EmptyScopeDeliversNothing(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock(), 16)
	broadcaster := NewBroadcaster(registry, newTestMetrics())

	broadcaster.Publish(domain.SystemNotification{Title: "void"}, domain.ScopeChannel("nobody-here"))
	broadcaster.Publish(domain.SystemNotification{Title: "void"}, domain.ScopeUser(uuid.New()))

	assert.Equal(t, uint64(0), broadcaster.DeliveredTotal())
	assert.Equal(t, uint64(0), broadcaster.DroppedTotal())
}

func TestBroadcaster_PerConnectionOrderIsFIFO(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock(), 16)
	broadcaster := NewBroadcaster(registry, newTestMetrics())
	conn := registry.Register(uuid.New())

	for i := 0; i < 5; i++ {
		broadcaster.Publish(domain.PostLiked{TotalLikes: i}, domain.ScopeAll())
	}

	got := drain(conn)
	require.Len(t, got, 5)
	for i, e := range got {
		liked, ok := e.(domain.PostLiked)
		require.True(t, ok)
		assert.Equal(t, i, liked.TotalLikes)
	}
}

func TestBroadcaster_SlowClientDropsWithoutAffectingOthers(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock(), 2)
	broadcaster := NewBroadcaster(registry, newTestMetrics())

	slow := registry.Register(uuid.New())
	healthy := registry.Register(uuid.New())

	// The healthy client keeps draining its sink; the slow one never reads.
	for j := 0; j < 3; j++ {
		broadcaster.Publish(domain.SystemNotification{Title: "burst"}, domain.ScopeAll())
		assert.Len(t, drain(healthy), 1)
	}

	// The slow client kept the first two and lost the third.
	assert.Len(t, drain(slow), 2)
	assert.Equal(t, uint64(5), broadcaster.DeliveredTotal())
	assert.Equal(t, uint64(1), broadcaster.DroppedTotal())
}

func TestBroadcaster_ClosedConnectionCountsAsDrop(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock(), 16)
	broadcaster := NewBroadcaster(registry, newTestMetrics())

	conn := registry.Register(uuid.New())
	conn.Close()

	broadcaster.Publish(domain.SystemNotification{Title: "late"}, domain.ScopeAll())

	assert.Equal(t, uint64(0), broadcaster.DeliveredTotal())
	assert.Equal(t, uint64(1), broadcaster.DroppedTotal())
}
