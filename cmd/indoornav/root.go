package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/indoornav/internal/config"
	"github.com/gyaneshwarpardhi/indoornav/internal/engine"
	"github.com/gyaneshwarpardhi/indoornav/internal/graph"
	"github.com/gyaneshwarpardhi/indoornav/internal/mapdata"
	"github.com/gyaneshwarpardhi/indoornav/internal/metrics"
	"github.com/gyaneshwarpardhi/indoornav/internal/telemetry"
)

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:          "indoornav",
		Short:        "Constrained shortest-path routing over indoor maps",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "configs/indoornav.yaml", "path to YAML config")

	root.AddCommand(newServeCmd(&cfgPath))
	root.AddCommand(newRouteCmd(&cfgPath))
	root.AddCommand(newStatsCmd(&cfgPath))
	return root
}

// loadConfig reads and validates the config file.
func loadConfig(path string) (*config.Loader, *config.Config, error) {
	loader, err := config.NewLoader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}
	return loader, cfg, nil
}

// loadMap builds the initial graph from the configured map file.
func loadMap(ctx context.Context, cfg *config.Config) (*mapdata.Source, *graph.Graph, error) {
	opts, err := mapdata.OptionsFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	src := mapdata.NewSource(cfg.Map.Path, opts)
	g, rep, err := src.Load(ctx)
	if err != nil {
		metrics.GraphReloads.WithLabelValues("error").Inc()
		return nil, nil, err
	}
	metrics.GraphReloads.WithLabelValues("success").Inc()
	metrics.MapSkippedFeatures.Set(float64(len(rep.Skipped)))
	for _, s := range rep.Skipped {
		slog.Debug("map feature skipped", "index", s.Index, "id", s.ID, "reason", s.Reason)
	}
	slog.Info("map loaded",
		"path", cfg.Map.Path,
		"features", rep.Features,
		"nodes", rep.Nodes,
		"edges", rep.Edges,
		"polygons", rep.Polygons,
		"skipped", len(rep.Skipped),
	)
	return src, g, nil
}

// offlineEngine loads config and map for one-shot commands. Logs go to stderr
// so stdout carries only the JSON answer.
func offlineEngine(ctx context.Context, cfgPath string) (*engine.Engine, error) {
	_, cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(telemetry.NewLogger(os.Stderr, cfg.Logging))
	_, g, err := loadMap(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return engine.New(ctx, g, cfg.Engine, cfg.Search), nil
}
