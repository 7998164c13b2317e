// Package scenario loads planning scenarios: obstacles, source and
// destination, sampling bounds and planner settings. Scenarios are HCL
// files; obstacles may also come from a GeoJSON file referenced by the
// scenario.
package scenario

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"prm-planner/internal/ctxlog"
	"prm-planner/internal/geom"
	"prm-planner/internal/planner"
	"prm-planner/internal/sampling"
	"prm-planner/internal/visibility"
)

// File is the HCL schema of a scenario file.
//
//	obstacles_file = "zones.geojson" # optional
//
//	bounds {
//	  x_max = 22
//	  y_max = 22
//	}
//	source {
//	  x = 2
//	  y = 2
//	}
//	destination {
//	  x = 14
//	  y = 21
//	}
//
//	obstacle "north" {
//	  x_min = 6
//	  x_max = 13
//	  y_min = 14
//	  y_max = 22
//	}
//
//	planner {
//	  mode         = "until_connected"
//	  max_attempts = 10000
//	  seed         = 1
//	}
type File struct {
	ObstaclesFile string          `hcl:"obstacles_file,optional"`
	Bounds        sampling.Bounds `hcl:"bounds,block"`
	Source        PointBlock      `hcl:"source,block"`
	Destination   PointBlock      `hcl:"destination,block"`
	Obstacles     []ObstacleBlock `hcl:"obstacle,block"`
	Planner       *PlannerBlock   `hcl:"planner,block"`
}

// PointBlock is a point literal.
type PointBlock struct {
	X float64 `hcl:"x"`
	Y float64 `hcl:"y"`
}

// ObstacleBlock is a named rectangle.
type ObstacleBlock struct {
	Name string  `hcl:"name,label"`
	XMin float64 `hcl:"x_min"`
	XMax float64 `hcl:"x_max"`
	YMin float64 `hcl:"y_min"`
	YMax float64 `hcl:"y_max"`
}

// PlannerBlock holds episode and experiment settings.
type PlannerBlock struct {
	Mode          string  `hcl:"mode,optional"`
	NodeBudget    int     `hcl:"node_budget,optional"`
	MaxAttempts   int     `hcl:"max_attempts,optional"`
	Seed          int64   `hcl:"seed,optional"`
	Sampler       string  `hcl:"sampler,optional"`
	PathTolerance float64 `hcl:"path_tolerance,optional"`
	Budgets       []int   `hcl:"budgets,optional"`
	Trials        int     `hcl:"trials,optional"`
}

// Scenario is a decoded and validated planning scenario.
type Scenario struct {
	Path        string
	Obstacles   []geom.Rect
	Source      geom.Point
	Destination geom.Point
	Config      planner.Config
	Seed        uint64
	Sampler     string
	Budgets     []int
	Trials      int
}

// Oracle builds the visibility oracle for the scenario's obstacles.
func (s *Scenario) Oracle() (*visibility.Oracle, error) {
	return visibility.New(s.Obstacles)
}

// TrialConfig returns the batch experiment described by the scenario.
func (s *Scenario) TrialConfig() planner.TrialConfig {
	return planner.TrialConfig{
		Base:    s.Config,
		Budgets: s.Budgets,
		Trials:  s.Trials,
		Seed:    s.Seed,
		Sampler: s.Sampler,
	}
}

// Load parses and decodes a scenario file.
func Load(ctx context.Context, filePath string) (*Scenario, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding scenario file.", "path", filePath)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", filePath, diags.Error())
	}
	return decode(ctx, file, filePath)
}

// Parse decodes a scenario from memory. A relative obstacles_file is
// resolved against the directory of filename.
func Parse(ctx context.Context, src []byte, filename string) (*Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", filename, diags.Error())
	}
	return decode(ctx, file, filename)
}

func decode(ctx context.Context, file *hcl.File, filePath string) (*Scenario, error) {
	logger := ctxlog.FromContext(ctx)

	var cfg File
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", filePath, diags.Error())
	}

	sc := &Scenario{
		Path:        filePath,
		Source:      geom.Pt(cfg.Source.X, cfg.Source.Y),
		Destination: geom.Pt(cfg.Destination.X, cfg.Destination.Y),
		Config:      planner.Config{Bounds: cfg.Bounds},
		Trials:      1,
	}

	for _, ob := range cfg.Obstacles {
		r, err := geom.NewRect(ob.XMin, ob.XMax, ob.YMin, ob.YMax)
		if err != nil {
			return nil, fmt.Errorf("obstacle %q in %s: %w", ob.Name, filePath, err)
		}
		sc.Obstacles = append(sc.Obstacles, r)
	}

	if cfg.ObstaclesFile != "" {
		path := cfg.ObstaclesFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(filePath), path)
		}
		rects, err := LoadObstaclesGeoJSON(ctx, path)
		if err != nil {
			return nil, err
		}
		sc.Obstacles = append(sc.Obstacles, rects...)
	}

	if p := cfg.Planner; p != nil {
		mode, err := planner.ParseMode(p.Mode)
		if err != nil {
			return nil, fmt.Errorf("planner block in %s: %w", filePath, err)
		}
		sc.Config.Mode = mode
		sc.Config.NodeBudget = p.NodeBudget
		sc.Config.MaxAttempts = p.MaxAttempts
		sc.Config.PathTolerance = p.PathTolerance
		sc.Seed = uint64(p.Seed)
		sc.Sampler = p.Sampler
		sc.Budgets = p.Budgets
		if p.Trials > 0 {
			sc.Trials = p.Trials
		}
	}
	if err := sc.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	merged := MergeAdjacentObstacles(MergeObstacles(sc.Obstacles))
	if removed := len(sc.Obstacles) - len(merged); removed > 0 {
		logger.Debug("Merged obstacles.", "removed", removed)
	}
	sc.Obstacles = merged

	logger.Debug("Successfully decoded scenario file.", "path", filePath, "obstacles", len(sc.Obstacles), "mode", sc.Config.Mode.String())
	return sc, nil
}
