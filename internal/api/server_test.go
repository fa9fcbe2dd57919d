package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/world"
)

type fakeSaver struct {
	saved []engine.Checkpoint
}

func (f *fakeSaver) SaveWorld(_ context.Context, cp engine.Checkpoint) error {
	f.saved = append(f.saved, cp)
	return nil
}

func testServer(t *testing.T) *Server {
	t.Helper()
	opts := engine.DefaultOptions()
	opts.World = world.SmallTestConfig()
	opts.Population = 20
	opts.EventChance = 0
	m, ag := engine.Populate(opts)
	sim := engine.NewSimulation(m, ag, opts)

	// A storm over the whole village gives everyone something to talk about.
	sim.TriggerEvent(engine.EventStorm, world.HexCoord{})

	return &Server{Sim: sim, Eng: engine.NewEngine(), AdminKey: "sekrit"}
}

func do(t *testing.T, h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestStatusAndAgents(t *testing.T) {
	s := testServer(t)
	h := s.Handler()

	w := do(t, h, "GET", "/api/v1/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st engine.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, s.Sim.RunID, st.RunID)
	assert.Equal(t, 20, st.Stats.Population)

	w = do(t, h, "GET", "/api/v1/agents", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []engine.AgentSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 20)
}

func TestAgentRumors(t *testing.T) {
	h := testServer(t).Handler()

	w := do(t, h, "GET", "/api/v1/agents/1/rumors", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		AgentID uint64             `json:"agent_id"`
		Rumors  []engine.RumorView `json:"rumors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(1), resp.AgentID)
	require.NotEmpty(t, resp.Rumors)
	assert.NotEmpty(t, resp.Rumors[0].Line)

	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/api/v1/agents/999/rumors", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/api/v1/agents/abc/rumors", "").Code)
}

func TestAgentRumorsRateLimited(t *testing.T) {
	s := testServer(t)
	s.RumorLimit = 2
	h := s.Handler()

	for range 2 {
		require.Equal(t, http.StatusOK, do(t, h, "GET", "/api/v1/agents/1/rumors", "").Code)
	}
	w := do(t, h, "GET", "/api/v1/agents/1/rumors", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/api/v1/status", "").Code)
}

func TestTopicSpread(t *testing.T) {
	s := testServer(t)
	h := s.Handler()

	w := do(t, h, "GET", "/api/v1/topics/life", "")
	require.Equal(t, http.StatusOK, w.Code)
	var view engine.TopicView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.True(t, view.Abstract)
	assert.Equal(t, "life", view.Topic)
	assert.Len(t, view.Holders, 20, "everyone heard about the storm")

	w = do(t, h, "GET", "/api/v1/topics/nobody-said-this", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.False(t, view.Abstract)
	assert.Empty(t, view.Holders)
}

func TestAdminEndpointsNeedToken(t *testing.T) {
	s := testServer(t)
	h := s.Handler()

	assert.Equal(t, http.StatusUnauthorized, do(t, h, "POST", "/api/v1/speed", `{"speed":5}`).Code)
	assert.Equal(t, http.StatusUnauthorized,
		do(t, h, "POST", "/api/v1/speed", `{"speed":5}`, "Authorization", "Bearer wrong").Code)

	w := do(t, h, "POST", "/api/v1/speed", `{"speed":5}`, "Authorization", "Bearer sekrit")
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 5.0, s.Eng.Speed(), 1e-9)

	assert.Equal(t, http.StatusBadRequest,
		do(t, h, "POST", "/api/v1/speed", `{"speed":-1}`, "Authorization", "Bearer sekrit").Code)

	s.AdminKey = ""
	h = s.Handler()
	assert.Equal(t, http.StatusForbidden,
		do(t, h, "POST", "/api/v1/speed", `{"speed":5}`, "Authorization", "Bearer sekrit").Code)
}

func TestTriggerEvent(t *testing.T) {
	s := testServer(t)
	h := s.Handler()
	auth := []string{"Authorization", "Bearer sekrit"}

	w := do(t, h, "POST", "/api/v1/events", `{"kind":"storm","q":0,"r":0}`, auth...)
	require.Equal(t, http.StatusCreated, w.Code)
	var ev engine.WorldEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ev))
	assert.Equal(t, engine.EventStorm, ev.Kind)
	assert.Positive(t, ev.Witnesses)

	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/api/v1/events", `{"kind":"dragon"}`, auth...).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/api/v1/events", `{"kind":"feast","q":40,"r":0}`, auth...).Code)

	w = do(t, h, "GET", "/api/v1/events?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var events []engine.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	assert.Len(t, events, 1)
}

func TestSnapshot(t *testing.T) {
	s := testServer(t)
	auth := []string{"Authorization", "Bearer sekrit"}

	assert.Equal(t, http.StatusServiceUnavailable, do(t, s.Handler(), "POST", "/api/v1/snapshot", "", auth...).Code)

	saver := &fakeSaver{}
	s.DB = saver
	require.Equal(t, http.StatusOK, do(t, s.Handler(), "POST", "/api/v1/snapshot", "", auth...).Code)
	require.Len(t, saver.saved, 1)
	assert.Len(t, saver.saved[0].Agents, 20)
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "clients are limited separately")
	assert.Equal(t, 61, rl.RetryAfter("a"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"))
	assert.Zero(t, rl.RetryAfter("nobody"))
}
