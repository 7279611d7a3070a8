package graph

import (
	"fmt"
	"math"
	"strings"
)

// NodeType discriminates the closed set of node kinds in an indoor map.
type NodeType string

const (
	Waypoint NodeType = "Waypoint"
	DiBox    NodeType = "DiBox"
	Cabinet  NodeType = "Cabinet"
	Fossil   NodeType = "Fossil"
	Unknown  NodeType = "Unknown"
)

// NodeTypes lists every node type in a stable order.
var NodeTypes = []NodeType{Waypoint, DiBox, Cabinet, Fossil, Unknown}

// IsFixture reports whether t is a destination kind (DiBox, Cabinet or Fossil).
func (t NodeType) IsFixture() bool {
	switch t {
	case DiBox, Cabinet, Fossil:
		return true
	}
	return false
}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case Waypoint, DiBox, Cabinet, Fossil, Unknown:
		return true
	}
	return false
}

func (t NodeType) String() string { return string(t) }

// ParseNodeType maps a loosely written tag ("waypoint", "di_box", "DiBox", "cabinet") to a NodeType.
// The second return value is false when s names no known type.
func ParseNodeType(s string) (NodeType, bool) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.TrimSpace(s)))
	switch key {
	case "waypoint", "wp":
		return Waypoint, true
	case "dibox", "di":
		return DiBox, true
	case "cabinet", "cab":
		return Cabinet, true
	case "fossil":
		return Fossil, true
	case "unknown":
		return Unknown, true
	}
	return Unknown, false
}

// -----------------------------------------------------------------------
// Coordinates
// -----------------------------------------------------------------------

// Coordinates is a display-only position. Search never reads it.
type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// NewCoordinates validates a raw [lon, lat] pair.
func NewCoordinates(raw []float64) (Coordinates, error) {
	if len(raw) != 2 {
		return Coordinates{}, fmt.Errorf("%w: want 2 values, got %d", ErrInvalidCoordinates, len(raw))
	}
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Coordinates{}, fmt.Errorf("%w: value %d is not a finite number", ErrInvalidCoordinates, i)
		}
	}
	return Coordinates{Lon: raw[0], Lat: raw[1]}, nil
}

// Pair returns the coordinates as a [lon, lat] slice, the GeoJSON order.
func (c Coordinates) Pair() []float64 { return []float64{c.Lon, c.Lat} }
