package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fodi999/ai-cook-beckend/internal/adapter/metrics"
	"github.com/Fodi999/ai-cook-beckend/internal/domain"
	"github.com/Fodi999/ai-cook-beckend/internal/hub"
	"github.com/Fodi999/ai-cook-beckend/internal/platform/config"
	"github.com/Fodi999/ai-cook-beckend/internal/platform/version"
)

// stubValidator accepts one fixed token and rejects everything else.
type stubValidator struct {
	token  string
	userID uuid.UUID
}

func (s *stubValidator) Validate(_ context.Context, token string) (uuid.UUID, error) {
	if token == s.token {
		return s.userID, nil
	}
	return uuid.Nil, domain.ErrUnauthorized
}

type serverHarness struct {
	registry    *hub.Registry
	broadcaster *hub.Broadcaster
	userID      uuid.UUID
	token       string
	url         string
}

func testServer(t *testing.T, maxConnections int) *serverHarness {
	t.Helper()

	cfg := &config.Config{
		AppEnv:                  "test",
		Port:                    "0",
		JWTSecret:               "unused",
		HeartbeatInterval:       10 * time.Second,
		HeartbeatTimeout:        30 * time.Second,
		SendBufferSize:          16,
		MaxWebSocketConnections: maxConnections,
		UpgradeRatePerSecond:    1000,
		UpgradeRateBurst:        1000,
	}

	clock := clockwork.NewRealClock()
	promRegistry := prometheus.NewRegistry()
	realtimeMetrics := metrics.NewRealtimeMetrics(promRegistry)
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)

	registry := hub.NewRegistry(clock, cfg.SendBufferSize)
	broadcaster := hub.NewBroadcaster(registry, realtimeMetrics)
	handler := hub.NewHandler(registry, broadcaster, realtimeMetrics, clock)
	stats := hub.NewStatsReporter(registry, broadcaster, clock)

	validator := &stubValidator{token: "valid-token", userID: uuid.New()}

	srv := NewServer(cfg, handler, stats, validator, realtimeMetrics, httpMetrics,
		metrics.Handler(promRegistry))

	ts := httptest.NewServer(srv.echo)
	t.Cleanup(func() {
		registry.CloseAll()
		ts.Close()
	})

	return &serverHarness{
		registry:    registry,
		broadcaster: broadcaster,
		userID:      validator.userID,
		token:       validator.token,
		url:         ts.URL,
	}
}

func (h *serverHarness) wsURL(query string) string {
	return "ws" + strings.TrimPrefix(h.url, "http") + "/api/v1/realtime/ws" + query
}

func waitForConnections(registry *hub.Registry, expected int) bool {
	for i := 0; i < 200; i++ {
		if registry.Count() == expected {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func TestServer_Liveness(t *testing.T) {
	h := testServer(t, 10)

	resp, err := http.Get(h.url + "/health/live")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Version(t *testing.T) {
	h := testServer(t, 10)

	resp, err := http.Get(h.url + "/version")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info version.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, version.ServiceName, info.Service)
	assert.Equal(t, "dev", info.Version)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	h := testServer(t, 10)

	resp, err := http.Get(h.url + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ErrorCounterServedByMetricsEndpoint(t *testing.T) {
	h := testServer(t, 10)

	resp, err := http.Get(h.url + "/api/v1/realtime/stats")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The counter must land on the same registry the metrics route serves.
	metricsResp, err := http.Get(h.url + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	require.Equal(t, http.StatusOK, metricsResp.StatusCode)

	body, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `itcook_http_errors_total{type="unauthorized"} 1`)
}

func TestServer_StatsRequiresBearer(t *testing.T) {
	h := testServer(t, 10)

	resp, err := http.Get(h.url + "/api/v1/realtime/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, h.url+"/api/v1/realtime/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer wrong-token")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestServer_StatsSnapshot(t *testing.T) {
	h := testServer(t, 10)

	req, err := http.NewRequest(http.MethodGet, h.url+"/api/v1/realtime/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+h.token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats hub.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 0, stats.ConnectedClients)
	assert.GreaterOrEqual(t, stats.UptimeSeconds, 0.0)
}

func TestServer_WebSocketUpgradeWithQueryToken(t *testing.T) {
	h := testServer(t, 10)

	conn, _, err := ws.DefaultDialer.Dial(h.wsURL("?token="+h.token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// First frame is the welcome notification.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame domain.EventFrame
	require.NoError(t, json.Unmarshal(msg, &frame))
	assert.Equal(t, domain.KindSystemNotification, frame.Type)

	require.True(t, waitForConnections(h.registry, 1))
	conns := h.registry.ConnectionsForUser(h.userID)
	assert.Len(t, conns, 1)
}

func TestServer_WebSocketUpgradeWithAuthorizationHeader(t *testing.T) {
	h := testServer(t, 10)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+h.token)
	conn, _, err := ws.DefaultDialer.Dial(h.wsURL(""), header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.True(t, waitForConnections(h.registry, 1))
}

func TestServer_WebSocketRejectsBadToken(t *testing.T) {
	h := testServer(t, 10)

	_, resp, err := ws.DefaultDialer.Dial(h.wsURL("?token=wrong"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_WebSocketRejectsMissingToken(t *testing.T) {
	h := testServer(t, 10)

	_, resp, err := ws.DefaultDialer.Dial(h.wsURL(""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_ConnectionLimit(t *testing.T) {
	h := testServer(t, 1)

	first, _, err := ws.DefaultDialer.Dial(h.wsURL("?token="+h.token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { first.Close() })
	require.True(t, waitForConnections(h.registry, 1))

	_, resp, err := ws.DefaultDialer.Dial(h.wsURL("?token="+h.token), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_EndToEndChannelDelivery(t *testing.T) {
	h := testServer(t, 10)

	conn, _, err := ws.DefaultDialer.Dial(h.wsURL("?token="+h.token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Skip the welcome notification.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "Subscribe", "channels": []string{hub.CommunityChannel}}))
	for i := 0; i < 200; i++ {
		if len(h.registry.ConnectionsForChannel(hub.CommunityChannel)) == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	h.broadcaster.Publish(
		domain.NewCommunityPost{PostID: uuid.New(), AuthorName: "anna", Content: "hello"},
		domain.ScopeChannel(hub.CommunityChannel),
	)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame domain.EventFrame
	require.NoError(t, json.Unmarshal(msg, &frame))
	assert.Equal(t, domain.KindNewCommunityPost, frame.Type)
}
