package config

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/indoornav/internal/graph"
)

// Validate checks the config for:
//   - Required fields (version, map path)
//   - Positive search and engine limits
//   - Known classification types, each rule with a prefix or a contains list
//   - Known logging level/format and tracing exporter
func Validate(cfg *Config) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	if cfg.Map.Path == "" {
		errs = append(errs, "map.path is required")
	}
	p := cfg.Map.Properties
	if p.Source == p.Target {
		errs = append(errs, fmt.Sprintf("map.properties: source and target must differ (both %q)", p.Source))
	}

	if cfg.Search.MaxDepth < 0 {
		errs = append(errs, fmt.Sprintf("search.max_depth must not be negative (got %d)", cfg.Search.MaxDepth))
	}
	if cfg.Search.MaxPaths < 0 {
		errs = append(errs, fmt.Sprintf("search.max_paths must not be negative (got %d)", cfg.Search.MaxPaths))
	}

	positive := []struct {
		name string
		v    int
	}{
		{"engine.workers", cfg.Engine.Workers},
		{"engine.queue_depth", cfg.Engine.QueueDepth},
		{"engine.request_timeout_ms", cfg.Engine.RequestTimeoutMs},
		{"engine.max_batch", cfg.Engine.MaxBatch},
		{"server.read_timeout_ms", cfg.Server.ReadTimeoutMs},
		{"server.write_timeout_ms", cfg.Server.WriteTimeoutMs},
	}
	for _, f := range positive {
		if f.v <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive (got %d)", f.name, f.v))
		}
	}

	for i, r := range cfg.Classification {
		if _, ok := graph.ParseNodeType(r.Type); !ok {
			errs = append(errs, fmt.Sprintf("classification[%d]: unknown type %q", i, r.Type))
		}
		if r.Prefix == "" && len(r.Contains) == 0 {
			errs = append(errs, fmt.Sprintf("classification[%d]: one of prefix/contains must be set", i))
		}
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q is not one of debug|info|warn|error", cfg.Logging.Level))
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q is not one of text|json", cfg.Logging.Format))
	}
	switch cfg.Tracing.Exporter {
	case "stdout", "none":
	default:
		errs = append(errs, fmt.Sprintf("tracing.exporter %q is not one of stdout|none", cfg.Tracing.Exporter))
	}
	switch cfg.Tracing.Output {
	case "stderr", "stdout":
	default:
		errs = append(errs, fmt.Sprintf("tracing.output %q is not one of stderr|stdout", cfg.Tracing.Output))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
