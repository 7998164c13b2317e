package roadmap

import "errors"

var (
	// ErrDuplicatePoint is returned when a point is already a node.
	ErrDuplicatePoint = errors.New("point already in roadmap")
	// ErrPointBlocked is returned when inserting a point that is not clear.
	ErrPointBlocked = errors.New("point is not in free space")
	// ErrUnknownPoint is returned by queries naming a point that is not a node.
	ErrUnknownPoint = errors.New("point not in roadmap")
	// ErrNoPath is returned when the closure has no finite distance between
	// the endpoints.
	ErrNoPath = errors.New("no path between points")
	// ErrPathReconstruction is returned when the greedy walk cannot find a
	// qualifying next hop or exceeds its step bound.
	ErrPathReconstruction = errors.New("path reconstruction failed")
	// ErrClosureInconsistent is returned by Audit when the closure table
	// disagrees with a search over direct edges.
	ErrClosureInconsistent = errors.New("closure inconsistent")
)
