// Package api provides the HTTP API for watching rumors spread.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/gossip"
	"github.com/talgya/hearsay/internal/world"
)

// Saver persists checkpoints on demand.
type Saver interface {
	SaveWorld(ctx context.Context, cp engine.Checkpoint) error
}

// Server serves the village state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       Saver  // Optional; snapshot endpoint is disabled without it.
	Addr     string // Listen address, e.g. ":8080"
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// RumorLimit caps ledger reads per client per minute. Zero disables the limit.
	RumorLimit int
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (GET, read-only: anyone can listen in on the village).
		r.Get("/status", s.handleStatus)
		r.Get("/agents", s.handleAgents)
		r.Get("/events", s.handleEvents)
		r.Get("/cues", s.handleCues)
		r.Get("/topics/{key}", s.handleTopic)
		r.Get("/speed", s.handleSpeed)

		r.Group(func(r chi.Router) {
			if s.RumorLimit > 0 {
				r.Use(NewRateLimiter(s.RumorLimit, time.Minute).Middleware)
			}
			r.Get("/agents/{id}/rumors", s.handleAgentRumors)
		})

		// Admin endpoints (POST, require bearer token).
		r.Group(func(r chi.Router) {
			r.Use(s.adminOnly)
			r.Post("/speed", s.handleSpeed)
			r.Post("/events", s.handleTriggerEvent)
			r.Post("/snapshot", s.handleSnapshot)
		})
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminKey)) == 1
}

func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no HEARSAY_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Status())
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.AgentSummaries())
}

func (s *Server) handleAgentRumors(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid agent id", http.StatusBadRequest)
		return
	}
	rumors, ok := s.Sim.AgentRumors(agents.AgentID(id))
	if !ok {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"agent_id": id, "rumors": rumors})
}

// handleTopic reports how far a topic has spread. Theme names resolve to the
// abstract topic; anything else is taken as a concrete key.
func (s *Server) handleTopic(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.TopicSpread(ResolveTopic(chi.URLParam(r, "key"))))
}

// ResolveTopic maps a user-supplied key to a topic.
func ResolveTopic(key string) gossip.Topic {
	if theme, ok := gossip.ParseTheme(key); ok {
		return gossip.Abstract(theme)
	}
	return gossip.Concrete(key)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.RecentEvents(queryLimit(r, 50)))
}

func (s *Server) handleCues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.RecentCues(queryLimit(r, 50)))
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleTriggerEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
		Q    int    `json:"q"`
		R    int    `json:"r"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	kind := engine.ParseEventKind(req.Kind)
	if kind == engine.EventUnknown {
		http.Error(w, "unknown event kind", http.StatusBadRequest)
		return
	}
	at := world.HexCoord{Q: req.Q, R: req.R}
	if !s.Sim.WorldMap.InBounds(at) {
		http.Error(w, "coordinate is off the map", http.StatusBadRequest)
		return
	}
	ev := s.Sim.TriggerEvent(kind, at)
	slog.Info("event triggered", "kind", kind, "coord", ev.Coord.String(), "witnesses", ev.Witnesses)
	writeJSONStatus(w, http.StatusCreated, ev)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no database configured", http.StatusServiceUnavailable)
		return
	}
	cp := s.Sim.Checkpoint()
	if err := s.DB.SaveWorld(r.Context(), cp); err != nil {
		slog.Error("snapshot failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"saved": true, "tick": cp.Tick})
}

func queryLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, 1000)
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
