// Package telemetry owns the process-wide OpenTelemetry tracer provider.
// Prometheus metrics live in platform/metrics; this package is tracing
// only.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config for the tracer provider.
type Config struct {
	ServiceName    string
	JaegerEndpoint string
	TracingEnabled bool
}

// Telemetry hands out the service tracer and shuts the provider down.
type Telemetry struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// New starts a Jaeger-backed tracer provider and installs it as the
// global one. With tracing disabled the returned Telemetry hands out
// no-op tracers instead.
func New(cfg Config) (*Telemetry, error) {
	if !cfg.TracingEnabled {
		return &Telemetry{tracer: noop.NewTracerProvider().Tracer(cfg.ServiceName)}, nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerEndpoint)))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
		)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)

	return &Telemetry{
		tracer:   otel.Tracer(cfg.ServiceName),
		provider: provider,
	}, nil
}

// Tracer returns the service tracer.
func (t *Telemetry) Tracer() trace.Tracer {
	return t.tracer
}

// Close flushes pending spans and stops the provider.
func (t *Telemetry) Close() error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(context.Background())
}
