package planner

import (
	"fmt"
	"strings"

	"prm-planner/internal/geom"
	"prm-planner/internal/sampling"
)

// Sampler kinds accepted by NewSampler.
const (
	SamplerUniform = "uniform"
	SamplerCorners = "corners"
)

// NewSampler builds the named sampler policy. The corner policy proposes
// points one grid unit outside each obstacle corner before sampling
// uniformly.
func NewSampler(kind string, obstacles []geom.Rect, b sampling.Bounds, seed uint64) (sampling.Sampler, error) {
	uniform := sampling.NewUniform(b, seed)
	switch strings.ToLower(kind) {
	case "", SamplerUniform:
		return uniform, nil
	case SamplerCorners:
		return sampling.NewCorners(obstacles, b, 1, uniform), nil
	}
	return nil, fmt.Errorf("%w: unknown sampler %q", ErrInvalidConfig, kind)
}
