package graph

import "errors"

var (
	// ErrUnknownNode is returned when a NodeID is not part of the graph.
	ErrUnknownNode = errors.New("graph: unknown node")

	// ErrUnknownPort is returned when a port name does not exist on a node.
	ErrUnknownPort = errors.New("graph: unknown port")

	// ErrKindMismatch is returned when connecting ports of different kinds
	// or setting a default of the wrong type.
	ErrKindMismatch = errors.New("graph: port kind mismatch")

	// ErrCycle is returned by Connect when the connection would create a
	// cycle.
	ErrCycle = errors.New("graph: connection creates a cycle")

	// ErrInvalidLoop is returned when a RepeatEnd does not pair with a
	// reachable RepeatStart, or two loop regions overlap without nesting.
	ErrInvalidLoop = errors.New("graph: invalid loop region")

	// ErrNoOutput is returned by Evaluate when no output node is set.
	ErrNoOutput = errors.New("graph: no output node")
)
