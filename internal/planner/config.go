// Package planner drives roadmap construction episodes: it pulls candidate
// points from a sampler, filters them through the visibility oracle,
// inserts them, and stops according to the configured termination mode.
package planner

import (
	"errors"
	"fmt"
	"strings"

	"prm-planner/internal/sampling"
)

var (
	// ErrInvalidConfig is returned for unusable episode configurations.
	ErrInvalidConfig = errors.New("invalid planner config")
	// ErrSamplingExhausted is returned when the attempt ceiling is reached
	// before the termination condition holds.
	ErrSamplingExhausted = errors.New("sampling attempts exhausted")
	// ErrNodeBudgetReached is returned in UntilConnected mode when the node
	// ceiling is reached without connecting source and destination.
	ErrNodeBudgetReached = errors.New("node budget reached before connecting")
	// ErrSeedBlocked is returned in UntilConnected mode when the source or
	// destination lies inside an obstacle and can never be connected.
	ErrSeedBlocked = errors.New("source or destination is not in free space")
)

// Mode selects when construction stops.
type Mode int

const (
	// UntilConnected inserts points until the destination is reachable
	// from the source.
	UntilConnected Mode = iota
	// FixedBudget inserts points until the roadmap holds NodeBudget nodes.
	FixedBudget
)

func (m Mode) String() string {
	switch m {
	case UntilConnected:
		return "until_connected"
	case FixedBudget:
		return "fixed_budget"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "until_connected" and "fixed_budget". The empty string
// means UntilConnected.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "until_connected":
		return UntilConnected, nil
	case "fixed_budget":
		return FixedBudget, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
}

// DefaultMaxAttempts bounds the sampling loop when Config.MaxAttempts is 0.
const DefaultMaxAttempts = 100000

// Config controls one construction episode.
type Config struct {
	Bounds sampling.Bounds
	Mode   Mode
	// NodeBudget is the node count to reach in FixedBudget mode, seeds
	// included. In UntilConnected mode a positive value is a ceiling.
	NodeBudget int
	// MaxAttempts bounds the number of sampled candidates, accepted or not.
	MaxAttempts int
	// PathTolerance overrides roadmap.DefaultPathTolerance when positive.
	PathTolerance float64
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.Bounds.Valid() {
		return fmt.Errorf("%w: bounds must be finite and within [0, %d], got %gx%g",
			ErrInvalidConfig, sampling.MaxBound, c.Bounds.XMax, c.Bounds.YMax)
	}
	if c.Mode != UntilConnected && c.Mode != FixedBudget {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, c.Mode)
	}
	if c.Mode == FixedBudget && c.NodeBudget < 2 {
		return fmt.Errorf("%w: fixed_budget needs node_budget >= 2, got %d", ErrInvalidConfig, c.NodeBudget)
	}
	if c.NodeBudget < 0 || c.MaxAttempts < 0 {
		return fmt.Errorf("%w: node_budget and max_attempts must be non-negative", ErrInvalidConfig)
	}
	return nil
}

func (c Config) maxAttempts() int {
	if c.MaxAttempts > 0 {
		return c.MaxAttempts
	}
	return DefaultMaxAttempts
}
