package mapdata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gyaneshwarpardhi/indoornav/internal/config"
	"github.com/gyaneshwarpardhi/indoornav/internal/graph"
)

var tracer = otel.Tracer("indoornav/mapdata")

// ErrSkippedFeature is wrapped by strict-mode load errors.
var ErrSkippedFeature = errors.New("mapdata: feature skipped")

// Options controls how features become nodes and edges.
type Options struct {
	Properties config.PropertyNames
	// Strict turns the first skipped feature into an error.
	Strict     bool
	Classifier *Classifier
}

// DefaultOptions uses the default property names and classification rules.
func DefaultOptions() Options {
	return Options{
		Properties: config.Default().Map.Properties,
		Classifier: NewClassifier(nil),
	}
}

// OptionsFromConfig builds Options from the map and classification sections.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	cls, err := ClassifierFromConfig(cfg.Classification)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Properties: cfg.Map.Properties,
		Strict:     cfg.Map.Strict,
		Classifier: cls,
	}, nil
}

// Skip records a feature that did not make it into the graph.
type Skip struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// LoadReport counts what a load produced.
type LoadReport struct {
	Features int    `json:"features"`
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
	Polygons int    `json:"polygons"`
	Skipped  []Skip `json:"skipped,omitempty"`
}

// Parse decodes a GeoJSON FeatureCollection and builds a frozen Graph from it.
func Parse(ctx context.Context, data []byte, opts Options) (*graph.Graph, *LoadReport, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode geojson: %w", err)
	}
	return Build(ctx, fc, opts)
}

// Build turns fc into a frozen Graph. Points and polygons are added before
// lines so edges may reference nodes declared anywhere in the collection.
func Build(ctx context.Context, fc *geojson.FeatureCollection, opts Options) (*graph.Graph, *LoadReport, error) {
	_, span := tracer.Start(ctx, "mapdata.Build")
	defer span.End()

	if opts.Classifier == nil {
		opts.Classifier = NewClassifier(nil)
	}
	l := &loader{
		opts:   opts,
		b:      graph.NewBuilder(),
		report: &LoadReport{Features: len(fc.Features)},
	}

	var points, polygons, lines []int
	for i, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.Point:
			points = append(points, i)
		case orb.Polygon, orb.MultiPolygon:
			polygons = append(polygons, i)
		case orb.LineString:
			lines = append(lines, i)
		default:
			id, _ := l.featureID(f)
			if err := l.skip(i, id, fmt.Sprintf("unsupported geometry %T", f.Geometry)); err != nil {
				return nil, l.report, failSpan(span, err)
			}
		}
	}

	steps := []struct {
		idx []int
		fn  func(int, *geojson.Feature) error
	}{
		{points, l.point},
		{polygons, l.polygon},
		{lines, l.line},
	}
	for _, step := range steps {
		for _, i := range step.idx {
			if err := step.fn(i, fc.Features[i]); err != nil {
				return nil, l.report, failSpan(span, err)
			}
		}
	}

	g := l.b.Build()
	l.report.Nodes = g.NodeCount()
	span.SetAttributes(
		attribute.Int("mapdata.features", l.report.Features),
		attribute.Int("mapdata.nodes", l.report.Nodes),
		attribute.Int("mapdata.edges", l.report.Edges),
		attribute.Int("mapdata.skipped", len(l.report.Skipped)),
	)
	return g, l.report, nil
}

type loader struct {
	opts   Options
	b      *graph.Builder
	report *LoadReport
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (l *loader) skip(i int, id, reason string) error {
	if l.opts.Strict {
		if id != "" {
			return fmt.Errorf("%w: feature %d (%s): %s", ErrSkippedFeature, i, id, reason)
		}
		return fmt.Errorf("%w: feature %d: %s", ErrSkippedFeature, i, reason)
	}
	l.report.Skipped = append(l.report.Skipped, Skip{Index: i, ID: id, Reason: reason})
	return nil
}

// stringProp reads a string property. ok is false when key holds a value of
// another JSON type; an absent or null key reads as "".
func stringProp(props geojson.Properties, key string) (value string, ok bool) {
	v, present := props[key]
	if !present || v == nil {
		return "", true
	}
	s, isString := v.(string)
	if !isString {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func notAString(props geojson.Properties, key string) string {
	return fmt.Sprintf("property %q is %T, want string", key, props[key])
}

// featureID reads the configured id property, then the feature id. A non-empty
// reason means the id property has the wrong type.
func (l *loader) featureID(f *geojson.Feature) (id, reason string) {
	key := l.opts.Properties.ID
	id, ok := stringProp(f.Properties, key)
	if !ok {
		return "", notAString(f.Properties, key)
	}
	if id != "" {
		return id, ""
	}
	if s, ok := f.ID.(string); ok {
		return strings.TrimSpace(s), ""
	}
	return "", ""
}

// nodeType prefers an explicit kind tag and falls back to the id classifier.
func (l *loader) nodeType(f *geojson.Feature, id string) (typ graph.NodeType, reason string) {
	key := l.opts.Properties.Kind
	kind, ok := stringProp(f.Properties, key)
	if !ok {
		return graph.Unknown, notAString(f.Properties, key)
	}
	if kind != "" {
		if t, ok := graph.ParseNodeType(kind); ok {
			return t, ""
		}
	}
	return l.opts.Classifier.Classify(id), ""
}

// node reads id and type of a point or polygon feature. reason is set when the
// feature must be skipped.
func (l *loader) node(f *geojson.Feature, what string) (id string, typ graph.NodeType, reason string) {
	id, reason = l.featureID(f)
	if reason != "" {
		return "", graph.Unknown, reason
	}
	if id == "" {
		return "", graph.Unknown, what + " without id"
	}
	typ, reason = l.nodeType(f, id)
	return id, typ, reason
}

func (l *loader) point(i int, f *geojson.Feature) error {
	id, typ, reason := l.node(f, "point")
	if reason != "" {
		return l.skip(i, id, reason)
	}
	p := f.Geometry.(orb.Point)
	if err := l.b.AddNode(id, typ, []float64{p.Lon(), p.Lat()}); err != nil {
		return l.skip(i, id, err.Error())
	}
	return nil
}

func (l *loader) polygon(i int, f *geojson.Feature) error {
	id, typ, reason := l.node(f, "polygon")
	if reason != "" {
		return l.skip(i, id, reason)
	}
	var outer orb.Ring
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		if len(g) > 0 {
			outer = g[0]
		}
	case orb.MultiPolygon:
		if len(g) > 0 && len(g[0]) > 0 {
			outer = g[0][0]
		}
	}
	if len(outer) == 0 {
		return l.skip(i, id, "empty polygon")
	}

	if !l.b.HasNode(id) {
		centroid, _ := planar.CentroidArea(f.Geometry)
		if err := l.b.AddNode(id, typ, []float64{centroid.Lon(), centroid.Lat()}); err != nil {
			return l.skip(i, id, err.Error())
		}
	}
	ring := make([]graph.Coordinates, len(outer))
	for j, p := range outer {
		ring[j] = graph.Coordinates{Lon: p.Lon(), Lat: p.Lat()}
	}
	if err := l.b.SetPolygon(id, ring); err != nil {
		return l.skip(i, id, err.Error())
	}
	l.report.Polygons++
	return nil
}

func (l *loader) line(i int, f *geojson.Feature) error {
	props := l.opts.Properties
	fid, _ := l.featureID(f)
	src, ok := stringProp(f.Properties, props.Source)
	if !ok {
		return l.skip(i, fid, notAString(f.Properties, props.Source))
	}
	dst, ok := stringProp(f.Properties, props.Target)
	if !ok {
		return l.skip(i, fid, notAString(f.Properties, props.Target))
	}
	if src == "" || dst == "" {
		return l.skip(i, fid, fmt.Sprintf("line without %s/%s", props.Source, props.Target))
	}
	label := src + "->" + dst

	var err error
	if oneway(f.Properties[props.Oneway]) {
		err = l.b.AddDirectedEdge(src, dst)
	} else {
		err = l.b.AddEdge(src, dst)
	}
	if err != nil {
		return l.skip(i, label, err.Error())
	}
	l.report.Edges++
	return nil
}

func oneway(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "yes", "true", "1":
			return true
		}
	case float64:
		return x == 1
	}
	return false
}
