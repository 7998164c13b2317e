package geom

import "math"

// Segment is the closed line segment between two points.
type Segment struct {
	P1, P2 Point
}

// Orientation returns the cross product of (b-a) and (c-a). It is positive
// when c lies to the left of the directed line a→b, negative to the right
// and zero when the three points are collinear.
func Orientation(a, b, c Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// separates reports whether the line through seg splits the endpoints of
// other. A zero orientation only separates when the collinear endpoint
// lies on seg itself, so touching counts as crossing.
func separates(seg, other Segment) bool {
	d1 := Orientation(seg.P1, seg.P2, other.P1)
	d2 := Orientation(seg.P1, seg.P2, other.P2)

	if (d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0) {
		return true
	}
	if d1 == 0 && onSegment(seg.P1, seg.P2, other.P1) {
		return true
	}
	if d2 == 0 && onSegment(seg.P1, seg.P2, other.P2) {
		return true
	}
	return false
}

// onSegment checks if q, known to be collinear with pr, lies within its extent
func onSegment(p, r, q Point) bool {
	return q.X <= math.Max(p.X, r.X) && q.X >= math.Min(p.X, r.X) &&
		q.Y <= math.Max(p.Y, r.Y) && q.Y >= math.Min(p.Y, r.Y)
}

// SegmentCrossesRect reports whether the segment p1–p2 meets the boundary
// of rect. For each edge, the segment's line must separate the edge's
// endpoints and the edge's line must separate the segment's endpoints.
//
// A segment lying strictly inside the rectangle does not meet any edge;
// callers that need full collision checks also test the endpoints with
// Rect.Contains.
func SegmentCrossesRect(rect Rect, p1, p2 Point) bool {
	path := Segment{P1: p1, P2: p2}
	for _, edge := range rect.Edges() {
		if !separates(path, edge) {
			continue
		}
		if separates(edge, path) {
			return true
		}
	}
	return false
}

// Bounds returns the axis-aligned bounding box of the segment.
func (s Segment) Bounds() Rect {
	return Rect{
		XMin: math.Min(s.P1.X, s.P2.X),
		XMax: math.Max(s.P1.X, s.P2.X),
		YMin: math.Min(s.P1.Y, s.P2.Y),
		YMax: math.Max(s.P1.Y, s.P2.Y),
	}
}
