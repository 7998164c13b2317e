package roadmap

import (
	"fmt"
	"math"

	"prm-planner/internal/geom"
)

// ExtractPath returns the points of a shortest src→dest path made only of
// direct edges.
func (r *Roadmap) ExtractPath(src, dest geom.Point) ([]geom.Point, error) {
	s, ok := r.ids[src]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownPoint, src)
	}
	d, ok := r.ids[dest]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownPoint, dest)
	}

	ids, err := r.PathBetween(s, d)
	if err != nil {
		return nil, err
	}

	path := make([]geom.Point, len(ids))
	for i, id := range ids {
		path[i] = r.points[id]
	}
	return path, nil
}

// PathBetween walks the closure greedily from s to d. At each step the
// next hop is the lowest NodeID n directly linked to the current node with
//
//	|D(cur, n) + D(n, d) - D(cur, d)| <= tolerance
//
// The walk is bounded by the node count.
func (r *Roadmap) PathBetween(s, d NodeID) ([]NodeID, error) {
	if !r.valid(s) || !r.valid(d) {
		return nil, fmt.Errorf("%w: node %d or %d", ErrUnknownPoint, s, d)
	}
	if math.IsInf(r.table[s][d].dist, 1) {
		return nil, fmt.Errorf("%w: %v to %v", ErrNoPath, r.points[s], r.points[d])
	}

	path := []NodeID{s}
	cur := s
	for steps := 0; cur != d; steps++ {
		if steps >= len(r.points) {
			return nil, fmt.Errorf("%w: no arrival after %d steps", ErrPathReconstruction, steps)
		}

		next, ok := r.nextHop(cur, d)
		if !ok {
			return nil, fmt.Errorf("%w: no qualifying hop from node %d %v", ErrPathReconstruction, cur, r.points[cur])
		}
		path = append(path, next)
		cur = next
	}
	return path, nil
}

func (r *Roadmap) nextHop(cur, d NodeID) (NodeID, bool) {
	remaining := r.table[cur][d].dist
	row := r.table[cur]
	for n, e := range row {
		if !e.direct || NodeID(n) == cur {
			continue
		}
		if math.Abs(e.dist+r.table[n][d].dist-remaining) <= r.tolerance {
			return NodeID(n), true
		}
	}
	return -1, false
}

// PathLength sums the Euclidean lengths of consecutive points.
func PathLength(path []geom.Point) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += path[i-1].Distance(path[i])
	}
	return total
}
