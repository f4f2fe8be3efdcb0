// Package api serves the most recently generated world over HTTP.
// GET endpoints are public and read-only.
// POST endpoints require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/talgya/toroid/internal/atlas"
	"github.com/talgya/toroid/internal/compose"
	"github.com/talgya/toroid/internal/export"
	"github.com/talgya/toroid/internal/feature"
	"github.com/talgya/toroid/internal/persistence"
	"github.com/talgya/toroid/internal/world"
)

// Server serves a generated world over HTTP.
type Server struct {
	Config   world.Config     // Template for regeneration; the seed is replaced per request
	Composer compose.Composer // Nil uses the procedural composer
	DB       *persistence.DB  // Optional run archive
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	mu    sync.RWMutex
	world *atlas.World

	limiterOnce  sync.Once
	regenLimiter *RateLimiter
}

// NewServer returns a server over an already generated world.
func NewServer(w *atlas.World, port int) *Server {
	return &Server{Config: w.Config, Port: port, world: w}
}

// World returns the world currently served.
func (s *Server) World() *atlas.World {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world
}

// Handler returns the routed handler with CORS applied.
// Every handler shares one regeneration limit.
func (s *Server) Handler() http.Handler {
	regenLimiter := s.limiter()

	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	v1.HandleFunc("/biomes", s.handleBiomes).Methods(http.MethodGet)
	v1.HandleFunc("/sites", s.handleSites).Methods(http.MethodGet)
	v1.HandleFunc("/features", s.handleFeatures).Methods(http.MethodGet)
	v1.HandleFunc("/paths", s.handlePaths).Methods(http.MethodGet)
	v1.HandleFunc("/politics", s.handlePolitics).Methods(http.MethodGet)
	v1.HandleFunc("/cell/{row:-?[0-9]+}/{col:-?[0-9]+}", s.handleCell).Methods(http.MethodGet)
	v1.HandleFunc("/geojson", s.handleGeoJSON).Methods(http.MethodGet)
	v1.HandleFunc("/runs", s.handleRuns).Methods(http.MethodGet)

	v1.HandleFunc("/regenerate", s.adminOnly(RateLimitMiddleware(regenLimiter, s.handleRegenerate))).Methods(http.MethodPost)
	v1.HandleFunc("/snapshot", s.adminOnly(s.handleSnapshot)).Methods(http.MethodPost)

	return corsMiddleware(r)
}

func (s *Server) limiter() *RateLimiter {
	s.limiterOnce.Do(func() {
		s.regenLimiter = NewRateLimiter(6, time.Hour)
	})
	return s.regenLimiter
}

// Close releases the server's background workers.
func (s *Server) Close() {
	s.limiter().Stop()
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "archive", s.DB != nil)

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
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

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires the admin bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no TOROID_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	wd := s.World()
	writeJSON(w, map[string]any{
		"seed":     wd.Config.Seed,
		"rows":     wd.Config.Rows,
		"cols":     wd.Config.Cols,
		"reports":  wd.Reports,
		"archive":  s.DB != nil,
		"features": wd.Features.Len(),
		"rivers":   len(wd.Rivers),
		"roads":    len(wd.Roads),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.World().Stats())
}

func (s *Server) handleBiomes(w http.ResponseWriter, r *http.Request) {
	type biomeSummary struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Type     string `json:"type"`
		Altitude string `json:"altitude"`
		Moisture string `json:"moisture"`
		RegionID string `json:"regionId,omitempty"`
		Cells    int    `json:"cells"`
	}
	wd := s.World()
	if wd.Biomes == nil {
		writeJSON(w, []biomeSummary{})
		return
	}
	counts := wd.Biomes.Grid.Counts()
	out := make([]biomeSummary, 0, len(wd.Biomes.Biomes))
	for _, b := range wd.Biomes.Biomes {
		out = append(out, biomeSummary{
			ID:       b.ID,
			Name:     b.Name,
			Type:     string(b.Type),
			Altitude: b.Altitude.String(),
			Moisture: b.Moisture.String(),
			RegionID: b.RegionID,
			Cells:    counts[b.ID],
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.World().Placeholders)
}

// handleFeatures lists footprint features, optionally filtered by ?type=.
func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	all := s.World().Features.Features()
	typ := r.URL.Query().Get("type")
	if typ == "" {
		writeJSON(w, all)
		return
	}
	want := feature.ParseType(typ)
	out := []feature.Feature{}
	for _, f := range all {
		if f.Type == want {
			out = append(out, f)
		}
	}
	writeJSON(w, out)
}

// handlePaths lists rivers and roads, optionally only one kind via ?type=.
func (s *Server) handlePaths(w http.ResponseWriter, r *http.Request) {
	wd := s.World()
	out := []feature.Path{}
	switch strings.ToLower(r.URL.Query().Get("type")) {
	case "river":
		out = append(out, wd.Rivers...)
	case "road":
		out = append(out, wd.Roads...)
	case "":
		out = append(append(out, wd.Rivers...), wd.Roads...)
	default:
		http.Error(w, "type must be river or road", http.StatusBadRequest)
		return
	}
	writeJSON(w, out)
}

func (s *Server) handlePolitics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.World().Politics)
}

// handleCell describes one cell. Coordinates wrap, so any integer is valid.
func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	row, err1 := strconv.Atoi(vars["row"])
	col, err2 := strconv.Atoi(vars["col"])
	if err1 != nil || err2 != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}

	wd := s.World()
	ter := wd.Terrain
	c := ter.Grid.Wrap(row, col)
	i := ter.Grid.Index(c)

	resp := map[string]any{
		"row":          c.Row,
		"col":          c.Col,
		"elevation":    ter.Elevation[i],
		"altitude":     ter.Altitude[i].String(),
		"water":        ter.Water[i],
		"beach":        ter.Beach[i],
		"coastal":      ter.IsCoastal(i),
		"moisture":     ter.Moisture[i],
		"moistureBand": ter.MoistureBand[i].String(),
		"temperature":  ter.Temperature[i].String(),
		"snow":         ter.Snow[i],
	}
	if wd.Biomes != nil {
		if b, ok := wd.Biomes.At(i); ok {
			resp["biome"] = map[string]string{"id": b.ID, "name": b.Name, "type": string(b.Type)}
		}
	}
	if f, ok := wd.Features.At(i); ok {
		resp["feature"] = f
	}
	writeJSON(w, resp)
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	data, err := export.GeoJSON(s.World())
	if err != nil {
		slog.Error("geojson export failed", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 200)
	}
	runs, err := s.DB.ListRuns(limit)
	if err != nil {
		slog.Error("list runs failed", "error", err)
		http.Error(w, "list runs failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

// handleRegenerate builds a new world and swaps it in. The body may name a
// seed; without one a random seed is used.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seed string `json:"seed"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
	}
	cfg := s.Config
	cfg.Seed = strings.TrimSpace(req.Seed)
	if cfg.Seed == "" {
		cfg.Seed = world.RandomSeed()
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()
	start := time.Now()
	wd, err := atlas.Generate(ctx, cfg, s.Composer)
	if err != nil {
		slog.Error("regenerate failed", "seed", cfg.Seed, "error", err)
		http.Error(w, "generation failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	s.world = wd
	s.mu.Unlock()
	slog.Info("world regenerated", "seed", cfg.Seed, "took", time.Since(start))

	writeJSON(w, map[string]any{
		"seed":  cfg.Seed,
		"stats": wd.Stats(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	id, err := s.DB.SaveRun(s.World())
	if err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"run":     id,
		"message": "run archived",
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
