package graph

import "sort"

// store holds node identities, type tags, coordinates, adjacency and polygons.
// adjacency keeps neighbors in insertion order; adjSet mirrors it for O(1) membership.
type store struct {
	types     map[string]NodeType
	coords    map[string]Coordinates
	adjacency map[string][]string
	adjSet    map[string]map[string]struct{}
	polygons  map[string][]Coordinates
}

func newStore() *store {
	return &store{
		types:     make(map[string]NodeType),
		coords:    make(map[string]Coordinates),
		adjacency: make(map[string][]string),
		adjSet:    make(map[string]map[string]struct{}),
		polygons:  make(map[string][]Coordinates),
	}
}

// link records from → to once.
func (s *store) link(from, to string) {
	if _, ok := s.adjSet[from][to]; ok {
		return
	}
	s.adjSet[from][to] = struct{}{}
	s.adjacency[from] = append(s.adjacency[from], to)
}

func (s *store) linked(from, to string) bool {
	_, ok := s.adjSet[from][to]
	return ok
}

// Graph is an immutable indoor navigation graph produced by Builder.Build.
// All methods are safe for concurrent use; a new map version is a new Graph.
type Graph struct {
	data *store
}

// Stats summarises a Graph.
type Stats struct {
	NodeCount    int              `json:"node_count"`
	NodesByType  map[NodeType]int `json:"nodes_by_type"`
	EdgeCount    int              `json:"edge_count"`
	PolygonCount int              `json:"polygon_count"`
}

// HasNode reports whether id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.data.types[id]
	return ok
}

// NodeType returns the type of id, or Unknown when id is absent.
func (g *Graph) NodeType(id string) NodeType {
	if t, ok := g.data.types[id]; ok {
		return t
	}
	return Unknown
}

// NodeCoordinates returns the coordinates of id, if any were recorded.
func (g *Graph) NodeCoordinates(id string) (Coordinates, bool) {
	c, ok := g.data.coords[id]
	return c, ok
}

// Neighbors returns a copy of id's neighbor list in insertion order.
// Absent and isolated nodes yield an empty slice.
func (g *Graph) Neighbors(id string) []string {
	nbrs := g.data.adjacency[id]
	out := make([]string, len(nbrs))
	copy(out, nbrs)
	return out
}

// Polygon returns the display ring attached to id.
func (g *Graph) Polygon(id string) ([]Coordinates, bool) {
	ring, ok := g.data.polygons[id]
	if !ok {
		return nil, false
	}
	out := make([]Coordinates, len(ring))
	copy(out, ring)
	return out, true
}

// Nodes returns all node ids sorted lexicographically.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.data.types))
	for id := range g.data.types {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NodeCount returns the total number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.data.types)
}

// Statistics counts nodes per type, edges and polygons.
// A connection recorded in both directions counts as one edge, as does a one-way connection.
func (g *Graph) Statistics() Stats {
	st := Stats{
		NodeCount:    len(g.data.types),
		NodesByType:  make(map[NodeType]int, len(NodeTypes)),
		PolygonCount: len(g.data.polygons),
	}
	for _, t := range NodeTypes {
		st.NodesByType[t] = 0
	}
	for _, t := range g.data.types {
		st.NodesByType[t]++
	}
	for from, nbrs := range g.data.adjacency {
		for _, to := range nbrs {
			if from < to || !g.data.linked(to, from) || from == to {
				st.EdgeCount++
			}
		}
	}
	return st
}
