// Package graph holds the indoor navigation graph: typed nodes (waypoints and
// fixtures), optional display coordinates and polygons, and adjacency.
//
// A Builder is filled by a single writer and then frozen into a Graph. A Graph
// never changes after Build, so any number of goroutines may read it; a new map
// version is published as a new Graph.
package graph
