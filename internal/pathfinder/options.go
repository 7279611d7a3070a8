package pathfinder

import (
	"context"
	"errors"
	"fmt"
)

// DefaultMaxDepth caps the number of BFS expansion steps when no WithMaxDepth is given.
const DefaultMaxDepth = 1000

// DefaultMaxPaths is used by FindMultiplePaths when maxPaths <= 0.
const DefaultMaxPaths = 3

// Sentinel errors for pathfinder construction and option parsing.
var (
	// ErrInvalidGraph is returned by New when the graph is nil.
	ErrInvalidGraph = errors.New("pathfinder: invalid graph")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("pathfinder: invalid option supplied")
)

// Option configures a single search. Invalid options are recorded and
// surfaced as ErrOptionViolation when the search starts.
type Option func(*Options)

// Options holds the per-search parameters.
type Options struct {
	// Ctx is polled once per expansion step.
	Ctx context.Context

	// MaxDepth bounds expansion steps (dequeued paths), not path length.
	MaxDepth int

	// Exclude lists ids the search must not step onto.
	Exclude map[string]struct{}

	// AllowDirectFixtureConnections only affects hops touching an Unknown node.
	AllowDirectFixtureConnections bool

	// OnExpand is called with the current node and its hop count for every dequeued path.
	OnExpand func(id string, depth int)

	err error
}

// DefaultOptions returns Options with a background context, DefaultMaxDepth,
// no exclusions and the flag off.
func DefaultOptions() Options {
	return Options{
		Ctx:      context.Background(),
		MaxDepth: DefaultMaxDepth,
		Exclude:  map[string]struct{}{},
		OnExpand: func(string, int) {},
	}
}

func buildOptions(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o, o.err
}

// WithContext sets a context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithMaxDepth limits the number of expansion steps.
//
//	n > 0: at most n paths are dequeued
//	n == 0: no expansion at all; only source == target succeeds
//	n < 0: invalid option → ErrOptionViolation
func WithMaxDepth(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: MaxDepth cannot be negative (%d)", ErrOptionViolation, n)
			return
		}
		o.MaxDepth = n
	}
}

// WithExcludeNodes forbids the given ids as intermediate nodes. Repeated use accumulates.
func WithExcludeNodes(ids ...string) Option {
	return func(o *Options) {
		for _, id := range ids {
			o.Exclude[id] = struct{}{}
		}
	}
}

// WithAllowDirectFixtureConnections toggles hops that touch Unknown-typed nodes.
// Fixture to fixture hops stay forbidden either way.
func WithAllowDirectFixtureConnections(allow bool) Option {
	return func(o *Options) {
		o.AllowDirectFixtureConnections = allow
	}
}

// WithOnExpand registers a callback run for every dequeued path.
func WithOnExpand(fn func(id string, depth int)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnExpand = fn
		}
	}
}
