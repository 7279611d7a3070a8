package mapdata

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/indoornav/internal/config"
	"github.com/gyaneshwarpardhi/indoornav/internal/graph"
)

// Rule assigns Type to ids that start with Prefix and contain every entry of Contains.
type Rule struct {
	Type     graph.NodeType
	Prefix   string
	Contains []string
}

func (r Rule) matches(id string) bool {
	if !strings.HasPrefix(id, r.Prefix) {
		return false
	}
	for _, s := range r.Contains {
		if !strings.Contains(id, s) {
			return false
		}
	}
	return true
}

// DefaultRules is the id naming convention of indoor maps.
var DefaultRules = []Rule{
	{Type: graph.Waypoint, Prefix: "wp_"},
	{Type: graph.DiBox, Prefix: "di_"},
	{Type: graph.Cabinet, Contains: []string{"col_", "cab_"}},
	{Type: graph.Fossil, Prefix: "fossil_"},
}

// Classifier infers a node type from its id. The first matching rule wins;
// ids no rule matches are Unknown.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a Classifier over rules, or over DefaultRules when rules is empty.
func NewClassifier(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Classifier{rules: cp}
}

// ClassifierFromConfig converts configured rules, falling back to DefaultRules when none are set.
func ClassifierFromConfig(rules []config.ClassificationRule) (*Classifier, error) {
	out := make([]Rule, 0, len(rules))
	for i, r := range rules {
		typ, ok := graph.ParseNodeType(r.Type)
		if !ok {
			return nil, fmt.Errorf("classification[%d]: unknown type %q", i, r.Type)
		}
		out = append(out, Rule{Type: typ, Prefix: r.Prefix, Contains: r.Contains})
	}
	return NewClassifier(out), nil
}

// Classify returns the type for id.
func (c *Classifier) Classify(id string) graph.NodeType {
	for _, r := range c.rules {
		if r.matches(id) {
			return r.Type
		}
	}
	return graph.Unknown
}
