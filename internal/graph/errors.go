package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph construction and lookups.
var (
	// ErrInvalidNodeID is returned when a node id is empty.
	ErrInvalidNodeID = errors.New("graph: invalid node id")

	// ErrInvalidCoordinates is returned when coordinates are not exactly two finite numbers.
	ErrInvalidCoordinates = errors.New("graph: invalid coordinates")

	// ErrNodeNotFound is matched by every *NodeNotFoundError.
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrGraphFrozen is returned by Builder mutators once Build has been called.
	ErrGraphFrozen = errors.New("graph: builder is frozen")
)

// Endpoint sides reported by NodeNotFoundError.
const (
	SideSource = "source"
	SideTarget = "target"
)

// NodeNotFoundError names the missing id and which endpoint of the operation referenced it.
type NodeNotFoundError struct {
	Side string
	ID   string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("graph: %s node %q not found", e.Side, e.ID)
}

// Is lets errors.Is(err, ErrNodeNotFound) match.
func (e *NodeNotFoundError) Is(target error) bool {
	return target == ErrNodeNotFound
}
