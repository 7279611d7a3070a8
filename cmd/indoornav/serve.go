package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/indoornav/internal/api"
	"github.com/gyaneshwarpardhi/indoornav/internal/config"
	"github.com/gyaneshwarpardhi/indoornav/internal/engine"
	"github.com/gyaneshwarpardhi/indoornav/internal/graph"
	"github.com/gyaneshwarpardhi/indoornav/internal/mapdata"
	"github.com/gyaneshwarpardhi/indoornav/internal/metrics"
	"github.com/gyaneshwarpardhi/indoornav/internal/telemetry"
)

func newServeCmd(cfgPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the routing HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *cfgPath, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides server.addr)")
	return cmd
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func serve(ctx context.Context, cfgPath, addr string) error {
	loader, cfg, err := loadConfig(cfgPath)
	if err != nil {
		slog.Error("startup failed", "err", err)
		return err
	}
	slog.SetDefault(telemetry.NewLogger(os.Stdout, cfg.Logging))
	slog.Info("config loaded", "path", loader.Path(), "version", cfg.Version, "map", cfg.Map.Path)
	if addr == "" {
		addr = cfg.Server.Addr
	}

	shutdownTracing, err := telemetry.SetupTracing(telemetry.TraceOutput(cfg.Tracing), cfg.Tracing)
	if err != nil {
		slog.Error("tracing setup failed", "err", err)
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("tracing shutdown", "err", err)
		}
	}()

	src, g, err := loadMap(ctx, cfg)
	if err != nil {
		slog.Error("failed to load map", "err", err)
		return err
	}

	// Workers stop on workerCtx, not the signal context, so Shutdown can
	// drain queued searches before the context is cancelled.
	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng := engine.New(workerCtx, g, cfg.Engine, cfg.Search)

	// Config hot-reload: only search defaults apply live.
	loader.OnChange(func(next *config.Config) {
		if err := config.Validate(next); err != nil {
			slog.Warn("hot-reload skipped: config invalid", "err", err)
			return
		}
		eng.SetSearchDefaults(next.Search)
		slog.Info("search defaults reloaded",
			"max_depth", next.Search.MaxDepth,
			"max_paths", next.Search.MaxPaths,
			"allow_direct_fixture_connections", next.Search.AllowDirectFixtureConnections,
		)
	})
	if stopWatch, err := loader.Watch(); err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	if cfg.Map.Watch {
		stopMap, err := src.Watch(func(next *graph.Graph, rep *mapdata.LoadReport) {
			eng.SwapGraph(next)
			metrics.GraphReloads.WithLabelValues("success").Inc()
			metrics.MapSkippedFeatures.Set(float64(len(rep.Skipped)))
		})
		if err != nil {
			slog.Warn("map watcher unavailable", "err", err)
		} else {
			defer stopMap()
		}
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      api.New(eng, src),
		ReadTimeout:  ms(cfg.Server.ReadTimeoutMs),
		WriteTimeout: ms(cfg.Server.WriteTimeoutMs),
		IdleTimeout:  ms(cfg.Server.IdleTimeoutMs),
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", addr, "nodes", g.NodeCount())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		slog.Error("server error", "err", err)
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), ms(cfg.Server.ShutdownTimeoutMs))
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("http shutdown", "err", err)
	}
	stopEngine(eng, cancel)
	slog.Info("goodbye")
	return nil
}

// stopEngine drains queued searches and only then cancels the worker context.
// Cancelling first lets idle workers exit with jobs still queued, and those
// callers would wait out their request timeout.
func stopEngine(eng *engine.Engine, cancel context.CancelFunc) {
	eng.Shutdown()
	cancel()
}
