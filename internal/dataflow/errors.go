package dataflow

import "errors"

var (
	// ErrCycle is returned when an edge would make a node its own ancestor.
	ErrCycle = errors.New("edge would create a cycle")
	// ErrDuplicateNode is returned when a node is added twice.
	ErrDuplicateNode = errors.New("node already in graph")
	// ErrForeignNode is returned when a node belonging to another graph is added.
	ErrForeignNode = errors.New("node belongs to another graph")
	// ErrEdgeNotFound is returned when removing an edge that does not exist.
	ErrEdgeNotFound = errors.New("edge not found")
	// ErrNodeNotFound is returned for handles that are not in the graph.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNodeConnected is returned when removing a node that still has edges.
	ErrNodeConnected = errors.New("node still has edges")
)
