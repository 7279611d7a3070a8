package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/gyaneshwarpardhi/indoornav/internal/config"
)

// TraceOutput picks the writer for the stdout exporter. Spans default to
// stderr so they never interleave with log lines on stdout.
func TraceOutput(conf config.TracingConf) io.Writer {
	if conf.Output == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}

// SetupTracing installs a global tracer provider when tracing is enabled and
// returns its shutdown function. With tracing disabled the otel no-op provider
// stays in place and shutdown does nothing.
func SetupTracing(w io.Writer, conf config.TracingConf) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if !conf.Enabled || conf.Exporter == "none" {
		return noop, nil
	}

	var exporter sdktrace.SpanExporter
	switch conf.Exporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w))
	default:
		return nil, fmt.Errorf("tracing: unknown exporter %q", conf.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("tracing: create exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", conf.ServiceName),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
