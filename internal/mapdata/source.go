package mapdata

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/gyaneshwarpardhi/indoornav/internal/graph"
)

// Source is a GeoJSON map file on disk.
type Source struct {
	Path    string
	Options Options
}

// NewSource returns a Source for path.
func NewSource(path string, opts Options) *Source {
	return &Source{Path: path, Options: opts}
}

// Load reads the file and builds a Graph from it.
func (s *Source) Load(ctx context.Context) (*graph.Graph, *LoadReport, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("read map %s: %w", s.Path, err)
	}
	g, rep, err := Parse(ctx, data, s.Options)
	if err != nil {
		return nil, rep, fmt.Errorf("load map %s: %w", s.Path, err)
	}
	return g, rep, nil
}

// Watch rebuilds the graph whenever the file is written or replaced and hands
// each new Graph to fn. A failed rebuild is logged and the previous graph stays
// in use. The parent directory is watched so editors that replace the file by
// rename are picked up. Call the returned stop function to clean up.
func (s *Source) Watch(fn func(*graph.Graph, *LoadReport)) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("map watcher: %w", err)
	}
	target := filepath.Clean(s.Path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		w.Close()
		return nil, fmt.Errorf("map watcher add %s: %w", s.Path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				g, rep, err := s.Load(ctx)
				if err != nil {
					slog.Warn("map reload failed, keeping previous graph", "path", s.Path, "err", err)
					continue
				}
				slog.Info("map reloaded", "path", s.Path, "nodes", rep.Nodes, "edges", rep.Edges, "skipped", len(rep.Skipped))
				fn(g, rep)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("map watcher error", "path", s.Path, "err", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}
