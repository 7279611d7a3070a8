package pathfinder

import "github.com/gyaneshwarpardhi/indoornav/internal/graph"

// CanVisitNeighbor decides whether a single hop from a node of type current to
// a node of type neighbor is permitted. Rules apply in order, first match wins:
//
//  1. Waypoint → Waypoint: allow
//  2. fixture → Waypoint: allow
//  3. Waypoint → fixture: allow
//  4. fixture → fixture: deny, whatever allowDirectFixtureConnections says
//  5. either side Unknown: allow only when allowDirectFixtureConnections is set
//  6. otherwise: deny
//
// Rule 4 is what makes every fixture to fixture route pass through a waypoint.
func CanVisitNeighbor(current, neighbor graph.NodeType, allowDirectFixtureConnections bool) bool {
	switch {
	case current == graph.Waypoint && neighbor == graph.Waypoint:
		return true
	case current.IsFixture() && neighbor == graph.Waypoint:
		return true
	case current == graph.Waypoint && neighbor.IsFixture():
		return true
	case current.IsFixture() && neighbor.IsFixture():
		return false
	case current == graph.Unknown || neighbor == graph.Unknown:
		return allowDirectFixtureConnections
	}
	return false
}
