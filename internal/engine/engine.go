package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/gyaneshwarpardhi/indoornav/internal/config"
	"github.com/gyaneshwarpardhi/indoornav/internal/graph"
	"github.com/gyaneshwarpardhi/indoornav/internal/metrics"
	"github.com/gyaneshwarpardhi/indoornav/internal/pathfinder"
	"github.com/gyaneshwarpardhi/indoornav/internal/route"
)

var tracer = otel.Tracer("indoornav/engine")

// Engine errors.
var (
	ErrQueueFull     = errors.New("engine: route queue full")
	ErrTimeout       = errors.New("engine: route search timed out")
	ErrNoGraph       = errors.New("engine: no graph loaded")
	ErrBatchTooLarge = errors.New("engine: batch too large")
)

// Result is the outcome of a single route request.
type Result struct {
	RequestID    string                    `json:"request_id"`
	From         string                    `json:"from"`
	To           string                    `json:"to"`
	Found        bool                      `json:"found"`
	Path         pathfinder.Path           `json:"path"`
	Details      *pathfinder.PathDetails   `json:"details,omitempty"`
	Alternatives []*pathfinder.PathDetails `json:"alternatives,omitempty"`
	Iterations   int                       `json:"iterations"`
	Truncated    bool                      `json:"truncated"`
	DurationMs   float64                   `json:"duration_ms"`
	LatencyMs    float64                   `json:"latency_ms,omitempty"`
	GraphNodes   int                       `json:"graph_nodes"`
	Error        string                    `json:"error,omitempty"`
}

// NodeInfo describes one node of the active graph.
type NodeInfo struct {
	ID          string              `json:"id"`
	Type        graph.NodeType      `json:"type"`
	Coordinates *graph.Coordinates  `json:"coordinates"`
	Neighbors   []string            `json:"neighbors"`
	Polygon     []graph.Coordinates `json:"polygon,omitempty"`
}

// Engine answers route requests against the current graph.
type Engine struct {
	graph    atomic.Pointer[graph.Graph]
	defaults atomic.Pointer[config.SearchConf]
	pool     *workerPool[*routeWork, *Result]
	flight   singleflight.Group
	conf     config.EngineConf
}

// routeWork carries one resolved query to a worker.
type routeWork struct {
	ctx context.Context
	g   *graph.Graph
	q   query
}

// query is a request with defaults applied.
type query struct {
	from, to     string
	maxDepth     int
	exclude      []string
	allow        bool
	alternatives int
}

// key identifies q against g for coalescing. Ids are quoted so separators
// inside ids cannot make two different queries collide.
func (q query) key(g *graph.Graph) string {
	return fmt.Sprintf("%p|%q|%q|%d|%t|%d|%q", g, q.from, q.to, q.maxDepth, q.allow, q.alternatives, q.exclude)
}

// New creates an Engine over g and starts the worker pool.
// g may be nil until the first SwapGraph.
func New(ctx context.Context, g *graph.Graph, conf config.EngineConf, search config.SearchConf) *Engine {
	e := &Engine{conf: conf}
	e.SetSearchDefaults(search)
	e.SwapGraph(g)
	e.pool = newWorkerPool[*routeWork, *Result](
		ctx,
		conf.Workers,
		conf.QueueDepth,
		func(_ context.Context, w *routeWork) (*Result, error) {
			return e.search(w.ctx, w.g, w.q)
		},
	)
	return e
}

// SwapGraph atomically replaces the graph (used on hot-reload). A nil g is ignored.
func (e *Engine) SwapGraph(g *graph.Graph) {
	if g == nil {
		return
	}
	e.graph.Store(g)
	st := g.Statistics()
	metrics.GraphNodes.Set(float64(st.NodeCount))
	metrics.GraphEdges.Set(float64(st.EdgeCount))
}

// Graph returns the active graph, nil if none is loaded.
func (e *Engine) Graph() *graph.Graph {
	return e.graph.Load()
}

// SetSearchDefaults replaces the defaults used for request fields left unset.
func (e *Engine) SetSearchDefaults(s config.SearchConf) {
	e.defaults.Store(&s)
}

// Route runs one request through the worker pool and waits for the result.
// Identical concurrent requests against the same graph share one search.
// A route that does not exist is a Result with Found false, not an error.
func (e *Engine) Route(ctx context.Context, req *route.Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	g := e.graph.Load()
	if g == nil {
		return nil, ErrNoGraph
	}
	q := e.resolve(req)

	ctx, span := tracer.Start(ctx, "engine.Route", trace.WithAttributes(
		attribute.String("route.request_id", req.ID),
		attribute.String("route.from", q.from),
		attribute.String("route.to", q.to),
		attribute.Int("route.max_depth", q.maxDepth),
		attribute.Int("route.alternatives", q.alternatives),
	))
	defer span.End()

	ch := e.flight.DoChan(q.key(g), func() (interface{}, error) {
		return e.dispatch(context.WithoutCancel(ctx), g, q)
	})
	select {
	case r := <-ch:
		if r.Shared {
			metrics.RoutesCoalesced.Inc()
			span.AddEvent("coalesced")
		}
		if r.Err != nil {
			span.RecordError(r.Err)
			span.SetStatus(codes.Error, r.Err.Error())
			return nil, r.Err
		}
		res := *r.Val.(*Result)
		res.RequestID = req.ID
		if !req.ReceivedAt.IsZero() {
			res.LatencyMs = float64(time.Since(req.ReceivedAt).Microseconds()) / 1000
			metrics.RouteLatency.Observe(res.LatencyMs)
		}
		span.SetAttributes(attribute.Bool("route.found", res.Found), attribute.Int("route.iterations", res.Iterations))
		return &res, nil
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		span.SetStatus(codes.Error, "context canceled")
		return nil, ctx.Err()
	}
}

// RouteBatch runs every request concurrently. Per-request failures are
// reported in Result.Error; results keep the input order.
func (e *Engine) RouteBatch(ctx context.Context, reqs []*route.Request) ([]*Result, error) {
	if len(reqs) > e.conf.MaxBatch {
		return nil, fmt.Errorf("%w: %d requests exceeds max %d", ErrBatchTooLarge, len(reqs), e.conf.MaxBatch)
	}
	out := make([]*Result, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.Route(ctx, req)
			if err != nil {
				res = &Result{RequestID: req.ID, From: req.From, To: req.To, Error: err.Error()}
			}
			out[i] = res
		}()
	}
	wg.Wait()
	return out, nil
}

func (e *Engine) resolve(req *route.Request) query {
	s := e.defaults.Load()
	q := query{
		from:         req.From,
		to:           req.To,
		maxDepth:     s.MaxDepth,
		allow:        s.AllowDirectFixtureConnections,
		alternatives: req.Alternatives,
	}
	if req.MaxDepth != nil {
		q.maxDepth = *req.MaxDepth
	}
	if req.AllowDirectFixtureConnections != nil {
		q.allow = *req.AllowDirectFixtureConnections
	}
	if q.alternatives < 1 {
		q.alternatives = 1
	}
	if s.MaxPaths > 0 && q.alternatives > s.MaxPaths {
		q.alternatives = s.MaxPaths
	}
	if len(req.ExcludeNodes) > 0 {
		q.exclude = append([]string(nil), req.ExcludeNodes...)
		sort.Strings(q.exclude)
	}
	return q
}

// dispatch submits q to the pool and waits up to the request timeout.
func (e *Engine) dispatch(ctx context.Context, g *graph.Graph, q query) (*Result, error) {
	timeout := time.Duration(e.conf.RequestTimeoutMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply := make(chan jobResult[*Result], 1)
	if !e.pool.Submit(&routeWork{ctx: ctx, g: g, q: q}, reply) {
		metrics.RoutesRejected.Inc()
		return nil, fmt.Errorf("%w (capacity %d)", ErrQueueFull, e.pool.QueueCap())
	}
	metrics.RoutesEnqueued.Inc()
	metrics.QueueUtilization.Set(e.QueueUtilization())

	select {
	case r := <-reply:
		return r.value, r.err
	case <-ctx.Done():
		metrics.RoutesProcessed.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w after %v", ErrTimeout, timeout)
	}
}

// search runs on a worker goroutine.
func (e *Engine) search(ctx context.Context, g *graph.Graph, q query) (*Result, error) {
	ctx, span := tracer.Start(ctx, "engine.search")
	defer span.End()

	start := time.Now()
	res := &Result{From: q.from, To: q.to, GraphNodes: g.NodeCount()}
	pf, err := pathfinder.New(g)
	if err != nil {
		return nil, err
	}
	opts := []pathfinder.Option{
		pathfinder.WithContext(ctx),
		pathfinder.WithMaxDepth(q.maxDepth),
		pathfinder.WithExcludeNodes(q.exclude...),
		pathfinder.WithAllowDirectFixtureConnections(q.allow),
	}

	var stats pathfinder.SearchStats
	if q.alternatives > 1 {
		var paths []pathfinder.Path
		paths, stats, err = pf.FindMultiplePathsStats(q.from, q.to, q.alternatives, opts...)
		if err == nil && len(paths) > 0 {
			res.Path = paths[0]
			for _, p := range paths[1:] {
				res.Alternatives = append(res.Alternatives, pf.GetPathDetails(p))
			}
		}
	} else {
		res.Path, stats, err = pf.FindPathStats(q.from, q.to, opts...)
	}
	res.Iterations, res.Truncated = stats.Iterations, stats.Truncated
	res.DurationMs = float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		metrics.RoutesProcessed.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, err
	}

	res.Found = res.Path != nil
	res.Details = pf.GetPathDetails(res.Path)
	switch {
	case res.Found:
		metrics.RoutesProcessed.WithLabelValues("found").Inc()
	case res.Truncated:
		metrics.RoutesProcessed.WithLabelValues("truncated").Inc()
	default:
		metrics.RoutesProcessed.WithLabelValues("not_found").Inc()
	}
	metrics.RouteDuration.Observe(res.DurationMs)
	metrics.SearchIterations.Observe(float64(res.Iterations))
	span.SetAttributes(attribute.Int("search.iterations", res.Iterations), attribute.Bool("search.truncated", res.Truncated))
	return res, nil
}

// Node returns the node with id from the active graph.
func (e *Engine) Node(id string) (*NodeInfo, error) {
	g := e.graph.Load()
	if g == nil {
		return nil, ErrNoGraph
	}
	if !g.HasNode(id) {
		return nil, fmt.Errorf("%w: %q", graph.ErrNodeNotFound, id)
	}
	info := &NodeInfo{ID: id, Type: g.NodeType(id), Neighbors: g.Neighbors(id)}
	if c, ok := g.NodeCoordinates(id); ok {
		info.Coordinates = &c
	}
	if ring, ok := g.Polygon(id); ok {
		info.Polygon = ring
	}
	return info, nil
}

// Nodes lists the active graph's nodes sorted by id. A non-empty typ keeps
// only nodes of that type.
func (e *Engine) Nodes(typ graph.NodeType) ([]pathfinder.NodeRef, error) {
	g := e.graph.Load()
	if g == nil {
		return nil, ErrNoGraph
	}
	out := []pathfinder.NodeRef{}
	for _, id := range g.Nodes() {
		t := g.NodeType(id)
		if typ != "" && t != typ {
			continue
		}
		out = append(out, pathfinder.NodeRef{ID: id, Type: t})
	}
	return out, nil
}

// Stats returns statistics of the active graph.
func (e *Engine) Stats() (graph.Stats, error) {
	g := e.graph.Load()
	if g == nil {
		return graph.Stats{}, ErrNoGraph
	}
	return g.Statistics(), nil
}

// QueueUtilization returns queue used / capacity (0-1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

// Shutdown drains the worker pool gracefully.
func (e *Engine) Shutdown() {
	e.pool.Drain()
}
