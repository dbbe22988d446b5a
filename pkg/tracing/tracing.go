// Package tracing sets up OpenTelemetry tracer providers.
package tracing

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const ServiceName = "dmcatalog"

// Provider holds a tracer provider and how to stop it.
type Provider struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

// NewProvider returns a Provider.
//
// When enabled is false, the provider does nothing.
// Otherwise, spans are written to w as JSON lines.
func NewProvider(enabled bool, w io.Writer) (*Provider, error) {
	if !enabled {
		return &Provider{
			provider: noop.NewTracerProvider(),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create stdout exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
		)),
	)
	return &Provider{provider: tp, shutdown: tp.Shutdown}, nil
}

func (p *Provider) Tracer() trace.Tracer {
	return p.provider.Tracer(ServiceName)
}

// Shutdown flushes spans and stops the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.shutdown(ctx)
}
