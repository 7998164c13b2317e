// Package geom holds the planar primitives the planner works with: points,
// axis-aligned rectangular obstacles and the orientation tests used to
// decide whether a segment crosses a rectangle.
package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidObstacle is returned for rectangles with XMin > XMax or YMin > YMax.
var ErrInvalidObstacle = errors.New("invalid obstacle")

// Point is a location in the workspace. Points compare by value.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Cross returns the z component of the cross product p × q.
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Rect is an axis-aligned rectangular obstacle. The rectangle is a closed
// set: its boundary belongs to the obstacle.
type Rect struct {
	XMin float64 `json:"xMin"`
	XMax float64 `json:"xMax"`
	YMin float64 `json:"yMin"`
	YMax float64 `json:"yMax"`
}

// NewRect validates the extents and returns the rectangle.
func NewRect(xMin, xMax, yMin, yMax float64) (Rect, error) {
	r := Rect{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}
	if err := r.Validate(); err != nil {
		return Rect{}, err
	}
	return r, nil
}

// Validate reports ErrInvalidObstacle when the extents are inverted or NaN.
func (r Rect) Validate() error {
	if !(r.XMin <= r.XMax) || !(r.YMin <= r.YMax) {
		return fmt.Errorf("%w: x [%g, %g] y [%g, %g]", ErrInvalidObstacle, r.XMin, r.XMax, r.YMin, r.YMax)
	}
	return nil
}

// Contains reports whether p lies inside r or on its boundary.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.XMin && p.X <= r.XMax &&
		p.Y >= r.YMin && p.Y <= r.YMax
}

// ContainsRect reports whether other lies entirely within r.
func (r Rect) ContainsRect(other Rect) bool {
	return other.XMin >= r.XMin && other.XMax <= r.XMax &&
		other.YMin >= r.YMin && other.YMax <= r.YMax
}

// Corners returns the four corners counter-clockwise from (XMin, YMin).
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.XMin, Y: r.YMin},
		{X: r.XMax, Y: r.YMin},
		{X: r.XMax, Y: r.YMax},
		{X: r.XMin, Y: r.YMax},
	}
}

// Edges returns the four boundary edges of r.
func (r Rect) Edges() [4]Segment {
	c := r.Corners()
	return [4]Segment{
		{P1: c[0], P2: c[1]},
		{P1: c[1], P2: c[2]},
		{P1: c[2], P2: c[3]},
		{P1: c[3], P2: c[0]},
	}
}
