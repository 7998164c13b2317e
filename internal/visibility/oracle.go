// Package visibility decides whether points are in free space and whether
// two points can be joined by a straight segment that avoids every
// obstacle.
package visibility

import (
	"fmt"
	"slices"

	"prm-planner/internal/geom"
)

// Oracle answers clearance and line-of-sight queries against a fixed set of
// obstacles. It is immutable after construction.
type Oracle struct {
	obstacles []geom.Rect
	index     *spatialIndex
}

// New validates the obstacles and indexes them.
func New(obstacles []geom.Rect) (*Oracle, error) {
	for i, r := range obstacles {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}
	}

	index, err := newSpatialIndex(obstacles)
	if err != nil {
		return nil, fmt.Errorf("failed to index obstacles: %w", err)
	}

	return &Oracle{
		obstacles: slices.Clone(obstacles),
		index:     index,
	}, nil
}

// Obstacles returns a copy of the obstacles in configuration order.
func (o *Oracle) Obstacles() []geom.Rect {
	return slices.Clone(o.obstacles)
}

// Clear reports whether p lies strictly outside every obstacle. Points on
// an obstacle boundary are not clear.
func (o *Oracle) Clear(p geom.Point) bool {
	for _, i := range o.index.query(geom.Rect{XMin: p.X, XMax: p.X, YMin: p.Y, YMax: p.Y}) {
		if o.obstacles[i].Contains(p) {
			return false
		}
	}
	return true
}

// SegmentCrossesRect reports whether the segment p1–p2 meets the boundary
// of rect.
func (o *Oracle) SegmentCrossesRect(rect geom.Rect, p1, p2 geom.Point) bool {
	return geom.SegmentCrossesRect(rect, p1, p2)
}

// Visible reports whether a and b are both clear and the segment between
// them crosses no obstacle.
func (o *Oracle) Visible(a, b geom.Point) bool {
	if !o.Clear(a) || !o.Clear(b) {
		return false
	}

	seg := geom.Segment{P1: a, P2: b}
	for _, i := range o.index.query(seg.Bounds()) {
		if geom.SegmentCrossesRect(o.obstacles[i], a, b) {
			return false
		}
	}
	return true
}
