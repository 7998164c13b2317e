package roadmap

import (
	"container/heap"
	"fmt"
	"math"
)

// searchNode represents a node in the A* search over direct edges
type searchNode struct {
	id     NodeID
	g      float64 // Cost from start to this node
	f      float64 // Total cost (g + heuristic)
	parent *searchNode
	index  int // Index in the heap
}

// priorityQueue implements heap.Interface for A* algorithm
type priorityQueue []*searchNode

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].f == pq[j].f {
		return pq[i].id < pq[j].id
	}
	return pq[i].f < pq[j].f
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := len(*pq)
	node := x.(*searchNode)
	node.index = n
	*pq = append(*pq, node)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*pq = old[0 : n-1]
	return node
}

// ShortestPath runs A* over direct edges only, ignoring the closure table.
// It returns the node sequence and its length, or ok=false when end cannot
// be reached.
func (r *Roadmap) ShortestPath(start, end NodeID) (path []NodeID, length float64, ok bool) {
	if !r.valid(start) || !r.valid(end) {
		return nil, math.Inf(1), false
	}

	endPoint := r.points[end]
	h := func(id NodeID) float64 { return r.points[id].Distance(endPoint) }

	openSet := &priorityQueue{}
	heap.Init(openSet)

	startNode := &searchNode{id: start, f: h(start)}
	heap.Push(openSet, startNode)

	closedSet := make(map[NodeID]bool)
	openSetMap := map[NodeID]*searchNode{start: startNode}

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*searchNode)
		delete(openSetMap, current.id)

		// Check if we reached the goal
		if current.id == end {
			for n := current; n != nil; n = n.parent {
				path = append(path, n.id)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path, current.g, true
		}

		closedSet[current.id] = true

		// Explore neighbors
		for _, next := range r.Neighbors(current.id) {
			if closedSet[next] {
				continue
			}

			tentativeG := current.g + r.table[current.id][next].dist

			neighbor, exists := openSetMap[next]
			if !exists {
				neighbor = &searchNode{id: next, g: tentativeG, parent: current}
				neighbor.f = tentativeG + h(next)
				heap.Push(openSet, neighbor)
				openSetMap[next] = neighbor
			} else if tentativeG < neighbor.g {
				// Found a better path to this neighbor
				neighbor.g = tentativeG
				neighbor.f = tentativeG + h(next)
				neighbor.parent = current
				heap.Fix(openSet, neighbor.index)
			}
		}
	}

	return nil, math.Inf(1), false
}

// auditTolerance bounds the relative disagreement accepted by Audit.
const auditTolerance = 1e-9

// Audit checks the closure against its invariants: zero self-distance,
// symmetry, and agreement of every stored distance with an A* search over
// direct edges. It is O(n²) searches and meant for tests and diagnostics.
func (r *Roadmap) Audit() error {
	n := NodeID(len(r.points))
	for i := NodeID(0); i < n; i++ {
		if r.table[i][i].dist != 0 {
			return fmt.Errorf("%w: self-distance of node %d is %g", ErrClosureInconsistent, i, r.table[i][i].dist)
		}
		for j := i + 1; j < n; j++ {
			a, b := r.table[i][j], r.table[j][i]
			if a != b {
				return fmt.Errorf("%w: asymmetric entry (%d,%d): %v vs %v", ErrClosureInconsistent, i, j, a, b)
			}
			_, want, _ := r.ShortestPath(i, j)
			if !closeEnough(a.dist, want) {
				return fmt.Errorf("%w: distance (%d,%d) is %g, search over direct edges gives %g",
					ErrClosureInconsistent, i, j, a.dist, want)
			}
		}
	}
	return nil
}

func closeEnough(a, b float64) bool {
	if math.IsInf(a, 1) || math.IsInf(b, 1) {
		return math.IsInf(a, 1) && math.IsInf(b, 1)
	}
	return math.Abs(a-b) <= auditTolerance*math.Max(1, math.Max(a, b))
}
