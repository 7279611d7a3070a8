package pathfinder

import "github.com/gyaneshwarpardhi/indoornav/internal/graph"

// NodeRef identifies a path endpoint.
type NodeRef struct {
	ID   string         `json:"id"`
	Type graph.NodeType `json:"type"`
}

// NodeDetail is one path node enriched from the graph.
type NodeDetail struct {
	ID          string             `json:"id"`
	Type        graph.NodeType     `json:"type"`
	Coordinates *graph.Coordinates `json:"coordinates"`
}

// Summary condenses a path for display.
type Summary struct {
	Start         NodeRef `json:"start"`
	End           NodeRef `json:"end"`
	WaypointsUsed int     `json:"waypoints_used"`
	Hops          int     `json:"hops"`
}

// PathDetails is a path with per-node type and coordinates.
type PathDetails struct {
	Nodes   []NodeDetail `json:"nodes"`
	Summary Summary      `json:"summary"`
}

// GetPathDetails enriches path with node types and coordinates from the graph.
// It returns nil for an empty path. Ids missing from the graph come back as
// Unknown without coordinates.
func (p *Pathfinder) GetPathDetails(path Path) *PathDetails {
	if len(path) == 0 {
		return nil
	}
	d := &PathDetails{Nodes: make([]NodeDetail, 0, len(path))}
	for _, id := range path {
		nd := NodeDetail{ID: id, Type: p.g.NodeType(id)}
		if c, ok := p.g.NodeCoordinates(id); ok {
			nd.Coordinates = &c
		}
		if nd.Type == graph.Waypoint {
			d.Summary.WaypointsUsed++
		}
		d.Nodes = append(d.Nodes, nd)
	}
	first, last := d.Nodes[0], d.Nodes[len(d.Nodes)-1]
	d.Summary.Start = NodeRef{ID: first.ID, Type: first.Type}
	d.Summary.End = NodeRef{ID: last.ID, Type: last.Type}
	d.Summary.Hops = path.Hops()
	return d
}
