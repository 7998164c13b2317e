package scenario

import "prm-planner/internal/geom"

// MergeObstacles drops rectangles that are fully contained in another one.
// Of two identical rectangles the first is kept. Order is preserved
// otherwise. The union of the obstacles, and therefore every clearance and
// visibility answer, is unchanged.
func MergeObstacles(rects []geom.Rect) []geom.Rect {
	if len(rects) <= 1 {
		return rects
	}

	contained := make([]bool, len(rects))
	for i := range rects {
		if contained[i] {
			continue
		}
		for j := range rects {
			if i == j || contained[j] {
				continue
			}
			if !rects[j].ContainsRect(rects[i]) {
				continue
			}
			// Identical rectangles contain each other; keep the earlier one
			if rects[i] == rects[j] && i < j {
				contained[j] = true
				continue
			}
			contained[i] = true
			break
		}
	}

	result := make([]geom.Rect, 0, len(rects))
	for i, r := range rects {
		if !contained[i] {
			result = append(result, r)
		}
	}
	return result
}

// MergeAdjacentObstacles joins rectangles that share a complete edge into
// their union, repeating until no pair qualifies. Only exact unions are
// formed, so the covered region is unchanged. The merged rectangle takes the
// position of the earlier of the pair.
func MergeAdjacentObstacles(rects []geom.Rect) []geom.Rect {
	if len(rects) <= 1 {
		return rects
	}

	result := append([]geom.Rect(nil), rects...)
	for {
		i, j, union, ok := findAdjacent(result)
		if !ok {
			return result
		}
		result[i] = union
		result = append(result[:j], result[j+1:]...)
	}
}

// findAdjacent returns the first pair i < j that shares a full edge.
func findAdjacent(rects []geom.Rect) (int, int, geom.Rect, bool) {
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			if union, ok := shareEdge(rects[i], rects[j]); ok {
				return i, j, union, true
			}
		}
	}
	return 0, 0, geom.Rect{}, false
}

// shareEdge reports whether a and b abut along an entire edge, and returns
// their union when they do.
func shareEdge(a, b geom.Rect) (geom.Rect, bool) {
	sameRows := a.YMin == b.YMin && a.YMax == b.YMax
	if sameRows && (a.XMax == b.XMin || b.XMax == a.XMin) {
		return geom.Rect{XMin: min(a.XMin, b.XMin), XMax: max(a.XMax, b.XMax), YMin: a.YMin, YMax: a.YMax}, true
	}
	sameCols := a.XMin == b.XMin && a.XMax == b.XMax
	if sameCols && (a.YMax == b.YMin || b.YMax == a.YMin) {
		return geom.Rect{XMin: a.XMin, XMax: a.XMax, YMin: min(a.YMin, b.YMin), YMax: max(a.YMax, b.YMax)}, true
	}
	return geom.Rect{}, false
}
