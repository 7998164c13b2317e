// Package server exposes roadmap episodes over HTTP: build an episode,
// enumerate its nodes and direct edges, and answer distance and route
// queries.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"prm-planner/internal/ctxlog"
	"prm-planner/internal/planner"
)

// Server holds the current episode. A build grows a fresh episode outside
// the lock and swaps it in when done, so queries keep answering from the
// previous episode. Only one build runs at a time.
type Server struct {
	logger       *slog.Logger
	snapshotPath string

	mu       sync.RWMutex
	episode  *planner.Episode
	building bool
}

// New returns a server with no episode. When snapshotPath is set, builds
// requested with saveToFile are written there.
func New(logger *slog.Logger, snapshotPath string) *Server {
	return &Server{logger: logger, snapshotPath: snapshotPath}
}

// SetEpisode replaces the current episode.
func (s *Server) SetEpisode(ep *planner.Episode) {
	s.mu.Lock()
	s.episode = ep
	s.mu.Unlock()
}

// Episode returns the current episode, or nil.
func (s *Server) Episode() *planner.Episode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.episode
}

func (s *Server) state() (*planner.Episode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.episode, s.building
}

// beginBuild claims the build slot. It refuses while another build runs,
// and when an episode exists unless force is set.
func (s *Server) beginBuild(force bool) (int, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.building:
		return http.StatusConflict, "build in progress", false
	case s.episode != nil && !force:
		return http.StatusConflict, "roadmap already exists", false
	}
	s.building = true
	return 0, "", true
}

func (s *Server) endBuild() {
	s.mu.Lock()
	s.building = false
	s.mu.Unlock()
}

func (s *Server) context(r *http.Request) context.Context {
	return ctxlog.WithLogger(r.Context(), s.logger)
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/buildRoadmap", corsMiddleware(s.buildRoadmapHandler))
	mux.HandleFunc("/roadmapLines", corsMiddleware(s.roadmapLinesHandler))
	mux.HandleFunc("/route", corsMiddleware(s.routeHandler))
	mux.HandleFunc("/distance", corsMiddleware(s.distanceHandler))
	mux.HandleFunc("/health", corsMiddleware(s.healthHandler))
	return mux
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}
