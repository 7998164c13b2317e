package planner

import (
	"context"
	"fmt"
	"math"

	"prm-planner/internal/ctxlog"
	"prm-planner/internal/geom"
	"prm-planner/internal/visibility"
)

// TrialConfig describes a batch experiment: for every node budget, Trials
// fixed-budget episodes are built with consecutive seeds.
type TrialConfig struct {
	Base    Config
	Budgets []int
	Trials  int
	Seed    uint64
	Sampler string
}

// BudgetStats aggregates the episodes run for one node budget. Length
// statistics cover connected episodes only.
type BudgetStats struct {
	Budget       int     `json:"budget"`
	Trials       int     `json:"trials"`
	Connected    int     `json:"connected"`
	Exhausted    int     `json:"exhausted"`
	MeanLength   float64 `json:"meanLength"`
	MinLength    float64 `json:"minLength"`
	MaxLength    float64 `json:"maxLength"`
	MeanAttempts float64 `json:"meanAttempts"`
}

// ConnectionRate is Connected / Trials.
func (s BudgetStats) ConnectionRate() float64 {
	if s.Trials == 0 {
		return 0
	}
	return float64(s.Connected) / float64(s.Trials)
}

// RunTrials runs the batch experiment. Episodes that exhaust their attempt
// ceiling are counted and skipped; any other error aborts the batch.
func RunTrials(ctx context.Context, oracle *visibility.Oracle, src, dest geom.Point, tc TrialConfig) ([]BudgetStats, error) {
	logger := ctxlog.FromContext(ctx)
	if tc.Trials <= 0 {
		return nil, fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidConfig, tc.Trials)
	}

	results := make([]BudgetStats, 0, len(tc.Budgets))
	seed := tc.Seed
	for _, budget := range tc.Budgets {
		cfg := tc.Base
		cfg.Mode = FixedBudget
		cfg.NodeBudget = budget
		if err := cfg.Validate(); err != nil {
			return results, err
		}

		stats := BudgetStats{Budget: budget, MinLength: math.Inf(1)}
		var lengthSum, attemptSum float64
		for trial := 0; trial < tc.Trials; trial++ {
			sampler, err := NewSampler(tc.Sampler, oracle.Obstacles(), cfg.Bounds, seed)
			if err != nil {
				return results, err
			}
			seed++

			ep, err := Build(ctx, oracle, src, dest, sampler, cfg)
			switch {
			case err == nil:
			case IsPlanningFailure(err) && ep != nil:
				stats.Exhausted++
			default:
				return results, fmt.Errorf("budget %d trial %d: %w", budget, trial, err)
			}

			stats.Trials++
			attemptSum += float64(ep.Attempts)
			if d, ok := finite(ep.Distance()); ok {
				stats.Connected++
				lengthSum += d
				stats.MinLength = math.Min(stats.MinLength, d)
				stats.MaxLength = math.Max(stats.MaxLength, d)
			}
		}

		stats.MeanAttempts = attemptSum / float64(stats.Trials)
		if stats.Connected > 0 {
			stats.MeanLength = lengthSum / float64(stats.Connected)
		} else {
			stats.MinLength = 0
		}

		logger.Info("Budget finished.",
			"budget", budget,
			"trials", stats.Trials,
			"connected", stats.Connected,
			"mean_length", stats.MeanLength,
		)
		results = append(results, stats)
	}
	return results, nil
}

// finite reports d unless it is infinite or NaN.
func finite(d float64) (float64, bool) {
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return 0, false
	}
	return d, true
}
