package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prm-planner/internal/ctxlog"
	"prm-planner/internal/geom"
	"prm-planner/internal/roadmap"
	"prm-planner/internal/sampling"
	"prm-planner/internal/visibility"
)

// Episode is one roadmap construction run and its outcome.
type Episode struct {
	Oracle      *visibility.Oracle
	Roadmap     *roadmap.Roadmap
	Config      Config
	Source      geom.Point
	Destination geom.Point

	// Attempts counts every candidate drawn from the sampler.
	Attempts int
	// Rejected counts candidates that were blocked or duplicates.
	Rejected  int
	Connected bool
	Elapsed   time.Duration
}

// Distance returns the closure distance between source and destination.
func (e *Episode) Distance() float64 {
	return e.Roadmap.Distance(e.Source, e.Destination)
}

// Path extracts the source→destination path.
func (e *Episode) Path() ([]geom.Point, error) {
	return e.Roadmap.ExtractPath(e.Source, e.Destination)
}

// Build runs one construction episode. The returned episode is non-nil
// whenever the roadmap could be created, including when the error is
// ErrSamplingExhausted, ErrNodeBudgetReached or a context error, so callers
// can inspect the partial roadmap.
func Build(ctx context.Context, oracle *visibility.Oracle, src, dest geom.Point, sampler sampling.Sampler, cfg Config, opts ...roadmap.Option) (*Episode, error) {
	logger := ctxlog.FromContext(ctx)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.PathTolerance > 0 {
		opts = append(opts, roadmap.WithPathTolerance(cfg.PathTolerance))
	}
	rm, err := roadmap.New(oracle, src, dest, opts...)
	if err != nil {
		return nil, err
	}

	ep := &Episode{
		Oracle:      oracle,
		Roadmap:     rm,
		Config:      cfg,
		Source:      src,
		Destination: dest,
	}

	startTime := time.Now()
	err = ep.grow(ctx, sampler)
	ep.Elapsed = time.Since(startTime)
	ep.Connected = rm.Connected(src, dest)

	logger.Debug("Episode finished.",
		"mode", cfg.Mode.String(),
		"nodes", rm.Len(),
		"attempts", ep.Attempts,
		"rejected", ep.Rejected,
		"connected", ep.Connected,
		"distance", ep.Distance(),
		"elapsed", ep.Elapsed,
	)
	return ep, err
}

// grow samples and inserts until the termination condition holds.
func (e *Episode) grow(ctx context.Context, sampler sampling.Sampler) error {
	cfg := e.Config
	rm := e.Roadmap

	if cfg.Mode == UntilConnected && (!e.Oracle.Clear(e.Source) || !e.Oracle.Clear(e.Destination)) {
		return fmt.Errorf("%w: source %v, destination %v", ErrSeedBlocked, e.Source, e.Destination)
	}

	limit := cfg.maxAttempts()
	for {
		switch cfg.Mode {
		case UntilConnected:
			if rm.Connected(e.Source, e.Destination) {
				return nil
			}
			if cfg.NodeBudget > 0 && rm.Len() >= cfg.NodeBudget {
				return fmt.Errorf("%w: %d nodes", ErrNodeBudgetReached, rm.Len())
			}
		case FixedBudget:
			if rm.Len() >= cfg.NodeBudget {
				return nil
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if e.Attempts >= limit {
			return fmt.Errorf("%w: %d attempts, %d nodes", ErrSamplingExhausted, e.Attempts, rm.Len())
		}

		e.Attempts++
		p := sampler.Next()
		if !e.Oracle.Clear(p) || rm.Contains(p) {
			e.Rejected++
			continue
		}
		if _, err := rm.Insert(p); err != nil {
			return fmt.Errorf("insert %v: %w", p, err)
		}
	}
}

// IsPlanningFailure reports whether err is one of the driver-level
// failures that leave a usable, unconnected roadmap behind.
func IsPlanningFailure(err error) bool {
	return errors.Is(err, ErrSamplingExhausted) ||
		errors.Is(err, ErrNodeBudgetReached) ||
		errors.Is(err, ErrSeedBlocked)
}
