package visibility

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"prm-planner/internal/geom"
)

// indexPad is the relative amount every indexed box is widened by, so that
// degenerate (zero-width) rectangles and segments are accepted by rtreego
// and touching boxes still intersect. rtreego treats boxes that only share
// a face as disjoint.
const indexPad = 1e-9

// obstacleEntry wraps an obstacle for R-tree storage
type obstacleEntry struct {
	index int
	rect  geom.Rect
	bbox  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// spatialIndex answers "which obstacles might touch this box" queries.
type spatialIndex struct {
	tree *rtreego.Rtree
}

func newSpatialIndex(rects []geom.Rect) (*spatialIndex, error) {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for i, r := range rects {
		bbox, err := toRtreeRect(r)
		if err != nil {
			return nil, err
		}
		tree.Insert(&obstacleEntry{index: i, rect: r, bbox: bbox})
	}

	return &spatialIndex{tree: tree}, nil
}

// query returns the configuration indices of obstacles whose bounds
// intersect box.
func (si *spatialIndex) query(box geom.Rect) []int {
	bbox, err := toRtreeRect(box)
	if err != nil {
		return nil
	}

	results := si.tree.SearchIntersect(bbox)
	indices := make([]int, 0, len(results))
	for _, item := range results {
		indices = append(indices, item.(*obstacleEntry).index)
	}
	return indices
}

// padding scales with the magnitude of v so it survives rounding at large
// coordinates.
func padding(v float64) float64 {
	return indexPad * math.Max(1, math.Abs(v))
}

func toRtreeRect(r geom.Rect) (rtreego.Rect, error) {
	xLo, xHi := r.XMin-padding(r.XMin), r.XMax+padding(r.XMax)
	yLo, yHi := r.YMin-padding(r.YMin), r.YMax+padding(r.YMax)
	return rtreego.NewRect(
		rtreego.Point{xLo, yLo},
		[]float64{xHi - xLo, yHi - yLo},
	)
}
