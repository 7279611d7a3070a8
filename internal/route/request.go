package route

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRequest is wrapped by every Validate failure.
var ErrInvalidRequest = errors.New("route: invalid request")

// Request is the canonical input model for a route query.
// Nil overrides fall back to the configured search defaults.
type Request struct {
	ID                            string    `json:"id"`
	From                          string    `json:"from"`
	To                            string    `json:"to"`
	MaxDepth                      *int      `json:"max_depth,omitempty"`
	ExcludeNodes                  []string  `json:"exclude_nodes,omitempty"`
	AllowDirectFixtureConnections *bool     `json:"allow_direct_fixture_connections,omitempty"`
	Alternatives                  int       `json:"alternatives,omitempty"` // >1 asks for interior-disjoint alternatives
	ReceivedAt                    time.Time `json:"-"`
}

// Validate reports missing endpoints and negative limits.
func (r *Request) Validate() error {
	switch {
	case r.From == "":
		return fmt.Errorf("%w: from is required", ErrInvalidRequest)
	case r.To == "":
		return fmt.Errorf("%w: to is required", ErrInvalidRequest)
	case r.MaxDepth != nil && *r.MaxDepth < 0:
		return fmt.Errorf("%w: max_depth must not be negative (got %d)", ErrInvalidRequest, *r.MaxDepth)
	case r.Alternatives < 0:
		return fmt.Errorf("%w: alternatives must not be negative (got %d)", ErrInvalidRequest, r.Alternatives)
	}
	return nil
}
