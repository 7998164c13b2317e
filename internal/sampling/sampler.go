// Package sampling proposes candidate points for roadmap construction.
// Samplers do not check clearance; the planner filters their output.
package sampling

import (
	"math"
	"math/rand/v2"

	"prm-planner/internal/geom"
)

// Sampler produces candidate points.
type Sampler interface {
	Next() geom.Point
}

// MaxBound is the largest grid extent a sampler accepts.
const MaxBound = math.MaxInt32

// Bounds is the sampling box [0, XMax] x [0, YMax].
type Bounds struct {
	XMax float64 `json:"xMax" hcl:"x_max"`
	YMax float64 `json:"yMax" hcl:"y_max"`
}

// Valid reports whether both extents are finite and within [0, MaxBound].
func (b Bounds) Valid() bool {
	return inGrid(b.XMax) && inGrid(b.YMax)
}

func inGrid(v float64) bool {
	return v >= 0 && v <= MaxBound
}

// gridExtent truncates v to the grid, clamped to [0, MaxBound]. NaN maps
// to 0.
func gridExtent(v float64) int {
	if !(v > 0) {
		return 0
	}
	return int(math.Floor(math.Min(v, MaxBound)))
}

// Uniform draws integer grid points uniformly from a Bounds box, both
// ends inclusive.
type Uniform struct {
	rng  *rand.Rand
	xMax int
	yMax int
}

// NewUniform returns a uniform sampler seeded with seed. Non-integer
// bounds are truncated to the grid and clamped to [0, MaxBound].
func NewUniform(b Bounds, seed uint64) *Uniform {
	return &Uniform{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		xMax: gridExtent(b.XMax),
		yMax: gridExtent(b.YMax),
	}
}

// Next implements Sampler.
func (u *Uniform) Next() geom.Point {
	return geom.Point{
		X: float64(u.rng.IntN(u.xMax + 1)),
		Y: float64(u.rng.IntN(u.yMax + 1)),
	}
}
