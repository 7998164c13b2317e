package roadmap

import (
	"log/slog"

	"prm-planner/internal/geom"
)

// InsertEvent describes one completed node insertion.
type InsertEvent struct {
	ID    NodeID
	Point geom.Point
	// Seed is true for the source and destination nodes.
	Seed bool
	// Direct counts the visibility edges created for the node.
	Direct int
	// Reachable counts the nodes with a finite distance to the new node.
	Reachable int
	// Shortened counts existing pairs whose distance improved through it.
	Shortened int
}

// Observer is notified after every insertion has fully updated the closure.
type Observer interface {
	NodeInserted(InsertEvent)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(InsertEvent)

// NodeInserted calls f(ev).
func (f ObserverFunc) NodeInserted(ev InsertEvent) {
	f(ev)
}

type nopObserver struct{}

func (nopObserver) NodeInserted(InsertEvent) {}

// LogObserver writes insertion events to a structured logger at debug level.
type LogObserver struct {
	Logger *slog.Logger
}

// NodeInserted implements Observer.
func (o LogObserver) NodeInserted(ev InsertEvent) {
	o.Logger.Debug("Node inserted.",
		"id", int(ev.ID),
		"x", ev.Point.X,
		"y", ev.Point.Y,
		"seed", ev.Seed,
		"direct_edges", ev.Direct,
		"reachable", ev.Reachable,
		"shortened", ev.Shortened,
	)
}
