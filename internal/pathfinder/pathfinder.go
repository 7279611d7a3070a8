package pathfinder

import (
	"context"

	"github.com/gyaneshwarpardhi/indoornav/internal/graph"
)

// Path is an ordered walk from source to target. A nil Path means no route.
type Path []string

// Hops returns the number of edges in p.
func (p Path) Hops() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// SearchStats describes how a search ended.
type SearchStats struct {
	// Iterations is the number of paths dequeued.
	Iterations int `json:"iterations"`
	// Truncated is true when MaxDepth stopped the search with work still queued.
	Truncated bool `json:"truncated"`
}

// Pathfinder runs constrained searches over a shared, read-only Graph.
// It keeps no state between calls and is safe for concurrent use.
type Pathfinder struct {
	g *graph.Graph
}

// New returns a Pathfinder over g.
func New(g *graph.Graph) (*Pathfinder, error) {
	if g == nil {
		return nil, ErrInvalidGraph
	}
	return &Pathfinder{g: g}, nil
}

// FindPath returns the fewest-hop path from source to target in which every
// hop satisfies CanVisitNeighbor. A nil Path with a nil error means no route
// was found within MaxDepth expansion steps.
func (p *Pathfinder) FindPath(source, target string, opts ...Option) (Path, error) {
	path, _, err := p.FindPathStats(source, target, opts...)
	return path, err
}

// FindPathStats is FindPath plus statistics about the search.
func (p *Pathfinder) FindPathStats(source, target string, opts ...Option) (Path, SearchStats, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, SearchStats{}, err
	}
	if !p.g.HasNode(source) {
		return nil, SearchStats{}, &graph.NodeNotFoundError{Side: graph.SideSource, ID: source}
	}
	if !p.g.HasNode(target) {
		return nil, SearchStats{}, &graph.NodeNotFoundError{Side: graph.SideTarget, ID: target}
	}
	if source == target {
		return Path{source}, SearchStats{}, nil
	}

	w := &walker{
		g:       p.g,
		opts:    o,
		ctx:     o.Ctx,
		target:  target,
		queue:   []Path{{source}},
		visited: map[string]struct{}{source: {}},
	}
	path, err := w.loop()
	if err != nil {
		return nil, w.stats, err
	}
	return path, w.stats, nil
}

// walker holds the state of one search. The queue stores whole paths so the
// result needs no parent map to reconstruct.
type walker struct {
	g       *graph.Graph
	opts    Options
	ctx     context.Context
	target  string
	queue   []Path
	visited map[string]struct{}
	stats   SearchStats
}

func (w *walker) loop() (Path, error) {
	for len(w.queue) > 0 {
		if w.stats.Iterations >= w.opts.MaxDepth {
			w.stats.Truncated = true
			return nil, nil
		}
		select {
		case <-w.ctx.Done():
			return nil, w.ctx.Err()
		default:
		}

		cur := w.dequeue()
		if found := w.expand(cur); found != nil {
			return found, nil
		}
	}
	return nil, nil
}

func (w *walker) dequeue() Path {
	cur := w.queue[0]
	w.queue[0] = nil
	w.queue = w.queue[1:]
	w.stats.Iterations++
	w.opts.OnExpand(cur[len(cur)-1], cur.Hops())
	return cur
}

// expand checks each neighbor of the path's last node in graph order:
// visited or excluded, then the routing rule, then the target.
func (w *walker) expand(cur Path) Path {
	last := cur[len(cur)-1]
	lastType := w.g.NodeType(last)
	for _, nb := range w.g.Neighbors(last) {
		if _, seen := w.visited[nb]; seen {
			continue
		}
		if _, excluded := w.opts.Exclude[nb]; excluded {
			continue
		}
		if !CanVisitNeighbor(lastType, w.g.NodeType(nb), w.opts.AllowDirectFixtureConnections) {
			continue
		}
		next := make(Path, len(cur)+1)
		copy(next, cur)
		next[len(cur)] = nb
		if nb == w.target {
			return next
		}
		w.visited[nb] = struct{}{}
		w.queue = append(w.queue, next)
	}
	return nil
}
