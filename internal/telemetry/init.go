// Package telemetry wires up the OpenTelemetry tracer provider for a
// benchmark run, trimmed from the donor's jaeger/otlp/stdout exporter
// switch down to stdout only -- this module has no remote collector to
// ship spans to, so only the exporter actually reachable without
// network access is kept. See DESIGN.md for the jaeger/otlp removal.
package telemetry

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"rcuhashlist/internal/config"
)

// InitTracer configures the global tracer provider for a single run,
// tagged with its ULID run ID, and returns the shutdown func to call
// once the run completes. When tracing is disabled in config, it
// returns a no-op shutdown without touching the global provider.
func InitTracer(cfg config.TracingConfig, runID string) func(context.Context) error {
	if !cfg.Enabled {
		log.Println("tracing disabled")
		return func(context.Context) error { return nil }
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String("rcuhashlist-synctest"),
		attribute.String("run.id", runID),
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(attrs...))
	if err != nil {
		log.Fatalf("telemetry: create resource: %v", err)
	}

	var tp *sdktrace.TracerProvider
	switch cfg.Exporter {
	case "", "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			log.Fatalf("telemetry: create stdout exporter: %v", err)
		}
		tp = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
		)
	default:
		panic(fmt.Sprintf("telemetry: unsupported exporter: %s", cfg.Exporter))
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	return tp.Shutdown
}
