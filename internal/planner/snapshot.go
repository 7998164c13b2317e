package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"prm-planner/internal/ctxlog"
	"prm-planner/internal/geom"
	"prm-planner/internal/roadmap"
	"prm-planner/internal/sampling"
	"prm-planner/internal/visibility"
)

// Snapshot is the on-disk form of an episode. Only inputs and inserted
// points are stored; loading replays the insertions so the closure is
// always recomputed.
type Snapshot struct {
	Obstacles   []geom.Rect     `json:"obstacles"`
	Source      geom.Point      `json:"source"`
	Destination geom.Point      `json:"destination"`
	Bounds      sampling.Bounds `json:"bounds"`
	Mode        string          `json:"mode"`
	NodeBudget  int             `json:"nodeBudget,omitempty"`
	MaxAttempts int             `json:"maxAttempts,omitempty"`
	Tolerance   float64         `json:"pathTolerance,omitempty"`
	Attempts    int             `json:"attempts"`
	Points      []geom.Point    `json:"points"` // inserted after the seeds, in order
}

// NewSnapshot captures ep.
func NewSnapshot(ep *Episode) *Snapshot {
	nodes := ep.Roadmap.Nodes()
	return &Snapshot{
		Obstacles:   ep.Oracle.Obstacles(),
		Source:      ep.Source,
		Destination: ep.Destination,
		Bounds:      ep.Config.Bounds,
		Mode:        ep.Config.Mode.String(),
		NodeBudget:  ep.Config.NodeBudget,
		MaxAttempts: ep.Config.MaxAttempts,
		Tolerance:   ep.Config.PathTolerance,
		Attempts:    ep.Attempts,
		Points:      nodes[2:],
	}
}

// Restore rebuilds the episode by inserting the stored points in order.
func (s *Snapshot) Restore(opts ...roadmap.Option) (*Episode, error) {
	mode, err := ParseMode(s.Mode)
	if err != nil {
		return nil, err
	}
	oracle, err := visibility.New(s.Obstacles)
	if err != nil {
		return nil, err
	}
	if s.Tolerance > 0 {
		opts = append(opts, roadmap.WithPathTolerance(s.Tolerance))
	}
	rm, err := roadmap.New(oracle, s.Source, s.Destination, opts...)
	if err != nil {
		return nil, err
	}
	for i, p := range s.Points {
		if _, err := rm.Insert(p); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}

	return &Episode{
		Oracle:  oracle,
		Roadmap: rm,
		Config: Config{
			Bounds:        s.Bounds,
			Mode:          mode,
			NodeBudget:    s.NodeBudget,
			MaxAttempts:   s.MaxAttempts,
			PathTolerance: s.Tolerance,
		},
		Source:      s.Source,
		Destination: s.Destination,
		Attempts:    s.Attempts,
		Connected:   rm.Connected(s.Source, s.Destination),
	}, nil
}

// SaveSnapshot serializes the episode and saves it to a JSON file
func SaveSnapshot(ctx context.Context, ep *Episode, filename string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Info("💾 Saving roadmap snapshot.", "path", filename)

	data, err := json.MarshalIndent(NewSnapshot(ep), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Info("   ✅ Snapshot saved.", "bytes", len(data))
	return nil
}

// LoadSnapshot reads a JSON snapshot and replays it into a new episode
func LoadSnapshot(ctx context.Context, filename string, opts ...roadmap.Option) (*Episode, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("📂 Loading roadmap snapshot.", "path", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	ep, err := snap.Restore(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to restore snapshot %s: %w", filename, err)
	}

	logger.Info("   ✅ Snapshot loaded.", "nodes", ep.Roadmap.Len(), "connected", ep.Connected)
	return ep, nil
}
