package sampling

import "prm-planner/internal/geom"

// Corners proposes the grid points diagonally outside each obstacle
// corner before handing over to a fallback sampler. Paths around
// rectangles bend at their corners, so these points shorten the roadmap's
// paths early.
type Corners struct {
	queue    []geom.Point
	fallback Sampler
}

// NewCorners builds the corner queue for obstacles, offset outward by
// margin on both axes. Corner points outside b or shared between
// obstacles are proposed once.
func NewCorners(obstacles []geom.Rect, b Bounds, margin float64, fallback Sampler) *Corners {
	seen := make(map[geom.Point]bool)
	var queue []geom.Point

	for _, r := range obstacles {
		offsets := [4]geom.Point{
			{X: -margin, Y: -margin},
			{X: margin, Y: -margin},
			{X: margin, Y: margin},
			{X: -margin, Y: margin},
		}
		for i, c := range r.Corners() {
			p := c.Add(offsets[i])
			if p.X < 0 || p.Y < 0 || p.X > b.XMax || p.Y > b.YMax {
				continue
			}
			if seen[p] {
				continue
			}
			seen[p] = true
			queue = append(queue, p)
		}
	}

	return &Corners{queue: queue, fallback: fallback}
}

// Remaining returns how many corner points have not been proposed yet.
func (c *Corners) Remaining() int {
	return len(c.queue)
}

// Next implements Sampler.
func (c *Corners) Next() geom.Point {
	if len(c.queue) > 0 {
		p := c.queue[0]
		c.queue = c.queue[1:]
		return p
	}
	return c.fallback.Next()
}
