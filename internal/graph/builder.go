package graph

import "fmt"

// Builder accumulates nodes, edges and polygons for a Graph.
// It is single-writer: callers serialize AddNode/AddEdge themselves. Build hands the
// data to an immutable Graph and freezes the builder.
type Builder struct {
	data   *store
	frozen bool
	built  *Graph
}

// NewBuilder allocates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{data: newStore()}
}

// AddNode registers id with the given type and optional [lon, lat] coordinates.
// Re-adding an existing id overwrites its type and coordinates but keeps its edges.
// An empty or unrecognised type is stored as Unknown; nil coords clears nothing and sets nothing.
func (b *Builder) AddNode(id string, typ NodeType, coords []float64) error {
	if b.frozen {
		return ErrGraphFrozen
	}
	if id == "" {
		return ErrInvalidNodeID
	}
	var c Coordinates
	if coords != nil {
		var err error
		if c, err = NewCoordinates(coords); err != nil {
			return fmt.Errorf("node %q: %w", id, err)
		}
	}
	if !typ.Valid() {
		typ = Unknown
	}

	d := b.data
	d.types[id] = typ
	if coords != nil {
		d.coords[id] = c
	}
	if _, ok := d.adjacency[id]; !ok {
		d.adjacency[id] = nil
		d.adjSet[id] = make(map[string]struct{})
	}
	return nil
}

// AddEdge connects src and dst in both directions.
func (b *Builder) AddEdge(src, dst string) error {
	return b.addEdge(src, dst, true)
}

// AddDirectedEdge records only src → dst.
func (b *Builder) AddDirectedEdge(src, dst string) error {
	return b.addEdge(src, dst, false)
}

func (b *Builder) addEdge(src, dst string, bidirectional bool) error {
	if b.frozen {
		return ErrGraphFrozen
	}
	d := b.data
	if _, ok := d.types[src]; !ok {
		return &NodeNotFoundError{Side: SideSource, ID: src}
	}
	if _, ok := d.types[dst]; !ok {
		return &NodeNotFoundError{Side: SideTarget, ID: dst}
	}
	d.link(src, dst)
	if bidirectional {
		d.link(dst, src)
	}
	return nil
}

// SetPolygon attaches a display ring to an existing node.
func (b *Builder) SetPolygon(id string, ring []Coordinates) error {
	if b.frozen {
		return ErrGraphFrozen
	}
	if _, ok := b.data.types[id]; !ok {
		return &NodeNotFoundError{Side: SideSource, ID: id}
	}
	cp := make([]Coordinates, len(ring))
	copy(cp, ring)
	b.data.polygons[id] = cp
	return nil
}

// HasNode reports whether id was added.
func (b *Builder) HasNode(id string) bool {
	_, ok := b.data.types[id]
	return ok
}

// NodeCount returns the number of nodes added so far.
func (b *Builder) NodeCount() int {
	return len(b.data.types)
}

// Build freezes the builder and returns the finished Graph.
// Calling Build again returns the same Graph.
func (b *Builder) Build() *Graph {
	if b.built == nil {
		b.frozen = true
		b.built = &Graph{data: b.data}
	}
	return b.built
}
