package observability

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/venicegeo/bf-goes-broker/util"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/venicegeo/bf-goes-broker"

// TracingConfig governs whether spans are exported and where they go
type TracingConfig struct {
	Enabled bool
	Writer  io.Writer
}

// TracingConfigFromEnv reads GOES_TRACING_ENABLED; spans go to stdout
func TracingConfigFromEnv() TracingConfig {
	return TracingConfig{Enabled: util.IsTracingEnabled(), Writer: os.Stdout}
}

// InitTracing installs the global tracer provider. It returns a shutdown
// function that flushes pending spans.
func InitTracing(cfg TracingConfig) (func(context.Context) error, error) {
	logCtx := &util.BasicLogContext{}
	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps())
	if err != nil {
		return nil, errors.Wrap(err, "create span exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	util.LogInfo(logCtx, "Tracing enabled, exporting spans to stdout")
	return tp.Shutdown, nil
}

// Tracer returns the broker's tracer from the global provider
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// ShutdownWithTimeout flushes spans, logging rather than returning errors
func ShutdownWithTimeout(shutdown func(context.Context) error) {
	if shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		util.LogSimpleErr(&util.BasicLogContext{}, "Tracing shutdown failed", err)
	}
}
