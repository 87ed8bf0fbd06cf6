package graph

import "errors"

// Errors returned by Graph and TopologyQueue operations.
var (
	// ErrInvalidNode is returned when Connect references a node handle
	// that doesn't exist in the graph.
	ErrInvalidNode = errors.New("graph: invalid node index")

	// ErrCycleDetected is returned by TopologicalSort when Kahn's pass
	// processes fewer vertices than the graph holds.
	ErrCycleDetected = errors.New("graph: cycle detected")

	// ErrTooManyNodes is returned when a graph exceeds its configured
	// MaxStaticSize.
	ErrTooManyNodes = errors.New("graph: exceeds max static size")
)
