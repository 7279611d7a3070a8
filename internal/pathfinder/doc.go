// Package pathfinder finds routes through an indoor navigation graph.
//
// Search is breadth-first over hops, so the shortest route is the one with
// the fewest nodes. Every hop must pass CanVisitNeighbor; in particular a
// fixture (DiBox, Cabinet or Fossil) never steps directly onto another
// fixture, even when the graph has an edge between them, so fixture to
// fixture routes always cross at least one waypoint.
//
// A Pathfinder only reads its Graph and may be shared between goroutines.
package pathfinder
