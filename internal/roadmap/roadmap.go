// Package roadmap maintains a probabilistic roadmap as an exact transitive
// closure: after every insertion the table holds the shortest distance
// between every pair of nodes using only edges among inserted nodes.
//
// Nodes live in an arena and are addressed by NodeID, their insertion
// index. The source and destination are always nodes 0 and 1.
package roadmap

import (
	"fmt"
	"math"

	"prm-planner/internal/geom"
)

// NodeID is the stable insertion index of a node.
type NodeID int

const (
	// SourceID is the node seeded from the source point.
	SourceID NodeID = 0
	// DestinationID is the node seeded from the destination point.
	DestinationID NodeID = 1
)

// DefaultPathTolerance is the absolute slack accepted by ExtractPath when
// testing whether a hop lies on a shortest path.
const DefaultPathTolerance = 1e-2

// Oracle is the visibility test the roadmap connects nodes with.
type Oracle interface {
	Clear(p geom.Point) bool
	Visible(a, b geom.Point) bool
}

// entry is one cell of the closure table. Absent pairs have dist = +Inf.
type entry struct {
	dist   float64
	direct bool
}

// Edge is a direct (visibility-checked) connection between two nodes.
type Edge struct {
	From   NodeID  `json:"from"`
	To     NodeID  `json:"to"`
	Weight float64 `json:"weight"`
}

// Roadmap is the incremental closure graph. It is not safe for concurrent
// use: every Insert must complete before the next call of any method.
type Roadmap struct {
	oracle    Oracle
	observer  Observer
	tolerance float64

	points []geom.Point
	ids    map[geom.Point]NodeID
	table  [][]entry
}

// Option configures a Roadmap.
type Option func(*Roadmap)

// WithObserver registers an observer for insertion events.
func WithObserver(o Observer) Option {
	return func(r *Roadmap) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithPathTolerance sets the tightness slack used by ExtractPath.
func WithPathTolerance(tol float64) Option {
	return func(r *Roadmap) {
		if tol > 0 {
			r.tolerance = tol
		}
	}
}

// New creates a roadmap seeded with src and dest, linked directly when
// they see each other. Seeds skip the clearance precondition; a seed
// inside an obstacle is never visible and stays unreachable.
func New(oracle Oracle, src, dest geom.Point, opts ...Option) (*Roadmap, error) {
	if src == dest {
		return nil, fmt.Errorf("%w: source and destination are both %v", ErrDuplicatePoint, src)
	}

	r := &Roadmap{
		oracle:    oracle,
		observer:  nopObserver{},
		tolerance: DefaultPathTolerance,
		ids:       make(map[geom.Point]NodeID),
	}
	for _, opt := range opts {
		opt(r)
	}

	s := r.addNode(src)
	d := r.addNode(dest)
	r.observer.NodeInserted(InsertEvent{ID: s, Point: src, Seed: true, Reachable: 1})

	ev := InsertEvent{ID: d, Point: dest, Seed: true, Reachable: 1}
	if oracle.Visible(src, dest) {
		r.link(s, d, src.Distance(dest))
		ev.Direct = 1
		ev.Reachable = 2
	}
	r.observer.NodeInserted(ev)

	return r, nil
}

// addNode appends p to the arena and grows the table with absent entries.
func (r *Roadmap) addNode(p geom.Point) NodeID {
	id := NodeID(len(r.points))
	r.points = append(r.points, p)
	r.ids[p] = id

	inf := entry{dist: math.Inf(1)}
	for i := range r.table {
		r.table[i] = append(r.table[i], inf)
	}
	row := make([]entry, id+1)
	for i := range row {
		row[i] = inf
	}
	row[id] = entry{dist: 0}
	r.table = append(r.table, row)

	return id
}

// link records a direct edge between i and j.
func (r *Roadmap) link(i, j NodeID, d float64) {
	if r.table[i][j].dist < d {
		d = r.table[i][j].dist
	}
	r.table[i][j] = entry{dist: d, direct: true}
	r.table[j][i] = entry{dist: d, direct: true}
}

// relax lowers the distance between i and j to d if that improves it. The
// direct flag is left untouched.
func (r *Roadmap) relax(i, j NodeID, d float64) bool {
	if d >= r.table[i][j].dist {
		return false
	}
	r.table[i][j].dist = d
	r.table[j][i].dist = d
	return true
}

// Insert adds p to the roadmap and updates the closure in two phases.
// Phase 1 links p to every visible node and relays through each of them,
// giving p its exact distance to every reachable node. Phase 2 relays
// every pair of nodes reachable from p through p.
//
// When p is already a node, Insert returns its existing NodeID together
// with ErrDuplicatePoint. When p is not clear it returns -1 and
// ErrPointBlocked. Neither case modifies the roadmap.
func (r *Roadmap) Insert(p geom.Point) (NodeID, error) {
	if id, ok := r.ids[p]; ok {
		return id, fmt.Errorf("%w: %v is node %d", ErrDuplicatePoint, p, id)
	}
	if !r.oracle.Clear(p) {
		return -1, fmt.Errorf("%w: %v", ErrPointBlocked, p)
	}

	k := r.addNode(p)
	ev := InsertEvent{ID: k, Point: p}

	// Phase 1: direct links, then relay through each visible node
	for q := NodeID(0); q < k; q++ {
		if !r.oracle.Visible(p, r.points[q]) {
			continue
		}
		d := p.Distance(r.points[q])
		r.link(k, q, d)
		ev.Direct++

		via := r.table[q]
		for t := NodeID(0); t < k; t++ {
			if math.IsInf(via[t].dist, 1) {
				continue
			}
			r.relax(k, t, d+via[t].dist)
		}
	}

	// Phase 2: relay existing pairs through the new node
	reach := make([]NodeID, 0, k)
	for a := NodeID(0); a < k; a++ {
		if !math.IsInf(r.table[k][a].dist, 1) {
			reach = append(reach, a)
		}
	}
	for x, a := range reach {
		da := r.table[a][k].dist
		for _, b := range reach[x+1:] {
			if r.relax(a, b, da+r.table[k][b].dist) {
				ev.Shortened++
			}
		}
	}

	ev.Reachable = len(reach) + 1
	r.observer.NodeInserted(ev)
	return k, nil
}

// Len returns the number of nodes, seeds included.
func (r *Roadmap) Len() int {
	return len(r.points)
}

// Node returns the point stored for id.
func (r *Roadmap) Node(id NodeID) (geom.Point, bool) {
	if !r.valid(id) {
		return geom.Point{}, false
	}
	return r.points[id], true
}

// Nodes returns all node points in insertion order.
func (r *Roadmap) Nodes() []geom.Point {
	out := make([]geom.Point, len(r.points))
	copy(out, r.points)
	return out
}

// Lookup returns the NodeID for an exact coordinate match.
func (r *Roadmap) Lookup(p geom.Point) (NodeID, bool) {
	id, ok := r.ids[p]
	return id, ok
}

// Contains reports whether p is a node.
func (r *Roadmap) Contains(p geom.Point) bool {
	_, ok := r.ids[p]
	return ok
}

func (r *Roadmap) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(r.points)
}

// DistanceBetween returns the closure distance between two nodes, or +Inf
// when they are not connected or either id is unknown.
func (r *Roadmap) DistanceBetween(i, j NodeID) float64 {
	if !r.valid(i) || !r.valid(j) {
		return math.Inf(1)
	}
	return r.table[i][j].dist
}

// Distance returns the closure distance between two points, or +Inf when
// they are not connected or not both nodes.
func (r *Roadmap) Distance(a, b geom.Point) float64 {
	i, ok := r.ids[a]
	if !ok {
		return math.Inf(1)
	}
	j, ok := r.ids[b]
	if !ok {
		return math.Inf(1)
	}
	return r.table[i][j].dist
}

// Connected reports whether the closure holds a finite distance between a and b.
func (r *Roadmap) Connected(a, b geom.Point) bool {
	return !math.IsInf(r.Distance(a, b), 1)
}

// Direct reports whether i and j are joined by a visibility edge.
func (r *Roadmap) Direct(i, j NodeID) bool {
	if !r.valid(i) || !r.valid(j) || i == j {
		return false
	}
	return r.table[i][j].direct
}

// Neighbors returns the nodes directly linked to id in ascending order.
func (r *Roadmap) Neighbors(id NodeID) []NodeID {
	if !r.valid(id) {
		return nil
	}
	var out []NodeID
	for j, e := range r.table[id] {
		if e.direct && NodeID(j) != id {
			out = append(out, NodeID(j))
		}
	}
	return out
}

// DirectEdges returns every visibility edge once, with From < To, ordered
// by From then To.
func (r *Roadmap) DirectEdges() []Edge {
	var edges []Edge
	for i := range r.table {
		for j := i + 1; j < len(r.table[i]); j++ {
			if e := r.table[i][j]; e.direct {
				edges = append(edges, Edge{From: NodeID(i), To: NodeID(j), Weight: e.dist})
			}
		}
	}
	return edges
}
