package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"prm-planner/internal/geom"
	"prm-planner/internal/planner"
	"prm-planner/internal/roadmap"
	"prm-planner/internal/sampling"
	"prm-planner/internal/visibility"
)

// BuildRequest is the body of POST /buildRoadmap.
type BuildRequest struct {
	Obstacles     []geom.Rect     `json:"obstacles"`
	Source        geom.Point      `json:"source"`
	Destination   geom.Point      `json:"destination"`
	Bounds        sampling.Bounds `json:"bounds"`
	Mode          string          `json:"mode,omitempty"`
	NodeBudget    int             `json:"nodeBudget,omitempty"`
	MaxAttempts   int             `json:"maxAttempts,omitempty"`
	Seed          uint64          `json:"seed,omitempty"`
	Sampler       string          `json:"sampler,omitempty"`
	PathTolerance float64         `json:"pathTolerance,omitempty"`
	SaveToFile    bool            `json:"saveToFile,omitempty"`
	Force         bool            `json:"force,omitempty"` // Set to true to force rebuild
}

// BuildResponse summarizes the built episode.
type BuildResponse struct {
	Success   bool     `json:"success"`
	Connected bool     `json:"connected"`
	NumNodes  int      `json:"numNodes"`
	NumEdges  int      `json:"numEdges"`
	Attempts  int      `json:"attempts"`
	Distance  *float64 `json:"distance"`
	Message   string   `json:"message,omitempty"`
}

// RouteRequest is the body of POST /route. Missing endpoints default to
// the episode's source and destination.
type RouteRequest struct {
	Start *geom.Point `json:"start,omitempty"`
	End   *geom.Point `json:"end,omitempty"`
}

// RouteResponse carries an extracted path.
type RouteResponse struct {
	Path     []geom.Point `json:"path"`
	Success  bool         `json:"success"`
	Message  string       `json:"message,omitempty"`
	Distance *float64     `json:"distance"`
}

// LinesResponse enumerates the roadmap for external renderers.
type LinesResponse struct {
	Success   bool            `json:"success"`
	Obstacles []geom.Rect     `json:"obstacles"`
	Nodes     []geom.Point    `json:"nodes"`
	Edges     []roadmap.Edge  `json:"edges"`
	Lines     [][2]geom.Point `json:"lines"`
	NumNodes  int             `json:"numNodes"`
	NumEdges  int             `json:"numEdges"`
}

// finitePtr returns nil for unreachable distances, which JSON cannot encode.
func finitePtr(d float64) *float64 {
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return nil
	}
	return &d
}

// POST /buildRoadmap - Build a roadmap episode
func (s *Server) buildRoadmapHandler(w http.ResponseWriter, r *http.Request) {
	ctx := s.context(r)
	s.logger.Info("🗺️  Build roadmap request received.")

	if r.Method != http.MethodPost {
		s.logger.Warn("❌ Method not allowed.", "method", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("❌ Invalid request body.", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if status, msg, ok := s.beginBuild(req.Force); !ok {
		s.logger.Warn("⚠️  Build refused.", "reason", msg)
		writeJSON(w, status, map[string]any{
			"success": false,
			"error":   msg,
			"message": "Roadmap is already built or being built. Set 'force: true' to rebuild.",
		})
		return
	}
	defer s.endBuild()

	mode, err := planner.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg := planner.Config{
		Bounds:        req.Bounds,
		Mode:          mode,
		NodeBudget:    req.NodeBudget,
		MaxAttempts:   req.MaxAttempts,
		PathTolerance: req.PathTolerance,
	}

	oracle, err := visibility.New(req.Obstacles)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sampler, err := planner.NewSampler(req.Sampler, req.Obstacles, req.Bounds, req.Seed)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("   Building episode.",
		"obstacles", len(req.Obstacles),
		"mode", mode.String(),
		"node_budget", req.NodeBudget,
	)

	ep, err := planner.Build(ctx, oracle, req.Source, req.Destination, sampler, cfg)
	resp := BuildResponse{Success: err == nil}
	switch {
	case err == nil:
	case planner.IsPlanningFailure(err) && ep != nil:
		s.logger.Warn("⚠️  Planning failed, keeping partial roadmap.", "error", err)
		resp.Message = err.Error()
	case errors.Is(err, planner.ErrInvalidConfig) || errors.Is(err, roadmap.ErrDuplicatePoint):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		s.logger.Error("❌ Build failed.", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.SetEpisode(ep)

	if req.SaveToFile && s.snapshotPath != "" {
		if err := planner.SaveSnapshot(ctx, ep, s.snapshotPath); err != nil {
			s.logger.Warn("⚠️  Failed to save snapshot.", "error", err)
		}
	}

	resp.Connected = ep.Connected
	resp.NumNodes = ep.Roadmap.Len()
	resp.NumEdges = len(ep.Roadmap.DirectEdges())
	resp.Attempts = ep.Attempts
	resp.Distance = finitePtr(ep.Distance())

	s.logger.Info("✅ Roadmap built.", "nodes", resp.NumNodes, "edges", resp.NumEdges, "connected", resp.Connected)
	writeJSON(w, http.StatusOK, resp)
}

// GET /roadmapLines - Get roadmap nodes and direct edges for visualization
func (s *Server) roadmapLinesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.episode == nil {
		http.Error(w, "Roadmap not built. Call /buildRoadmap first", http.StatusBadRequest)
		return
	}

	rm := s.episode.Roadmap
	nodes := rm.Nodes()
	edges := rm.DirectEdges()
	lines := make([][2]geom.Point, len(edges))
	for i, e := range edges {
		lines[i] = [2]geom.Point{nodes[e.From], nodes[e.To]}
	}

	s.logger.Debug("Returning roadmap lines.", "lines", len(lines))
	writeJSON(w, http.StatusOK, LinesResponse{
		Success:   true,
		Obstacles: s.episode.Oracle.Obstacles(),
		Nodes:     nodes,
		Edges:     edges,
		Lines:     lines,
		NumNodes:  len(nodes),
		NumEdges:  len(edges),
	})
}

// POST /route - Extract a path between two roadmap nodes
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("📍 Route request received.")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("❌ Invalid request body.", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.episode == nil {
		http.Error(w, "Roadmap not built. Call /buildRoadmap first", http.StatusBadRequest)
		return
	}

	start, end := s.episode.Source, s.episode.Destination
	if req.Start != nil {
		start = *req.Start
	}
	if req.End != nil {
		end = *req.End
	}

	rm := s.episode.Roadmap
	path, err := rm.ExtractPath(start, end)
	if err != nil {
		status := http.StatusOK
		if errors.Is(err, roadmap.ErrUnknownPoint) {
			status = http.StatusNotFound
		}
		s.logger.Info("❌ No path.", "start", start.String(), "end", end.String(), "error", err)
		writeJSON(w, status, RouteResponse{Path: []geom.Point{}, Success: false, Message: err.Error()})
		return
	}

	distance := rm.Distance(start, end)
	s.logger.Info("✅ Path found.", "waypoints", len(path), "distance", distance)
	writeJSON(w, http.StatusOK, RouteResponse{Path: path, Success: true, Distance: finitePtr(distance)})
}

// GET /distance?ax=&ay=&bx=&by= - Closure distance between two nodes
func (s *Server) distanceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var coords [4]float64
	for i, key := range []string{"ax", "ay", "bx", "by"} {
		v, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid or missing query parameter "+key)
			return
		}
		coords[i] = v
	}
	a, b := geom.Pt(coords[0], coords[1]), geom.Pt(coords[2], coords[3])

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.episode == nil {
		http.Error(w, "Roadmap not built. Call /buildRoadmap first", http.StatusBadRequest)
		return
	}

	rm := s.episode.Roadmap
	d := rm.Distance(a, b)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"known":     rm.Contains(a) && rm.Contains(b),
		"reachable": !math.IsInf(d, 1),
		"distance":  finitePtr(d),
	})
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ep, building := s.state()

	status := "ready"
	numNodes := 0
	connected := false
	switch {
	case building:
		status = "building"
	case ep == nil:
		status = "waiting for roadmap"
	}
	if ep != nil {
		numNodes = ep.Roadmap.Len()
		connected = ep.Connected
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"hasRoadmap": ep != nil,
		"building":   building,
		"numNodes":   numNodes,
		"connected":  connected,
	})
}
