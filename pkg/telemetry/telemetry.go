// Package telemetry exports detection-run traces to an OpenTelemetry
// collector over OTLP/gRPC. The engine records a span per run and per
// technique when given the exporter's tracer.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/redpill/redpill/pkg/duration"
)

// Options configures the OTLP exporter.
type Options struct {
	// Endpoint is the OTLP endpoint (e.g. "localhost:4317").
	Endpoint string

	// ServiceName is the service name attached to traces
	// (default: "redpill").
	ServiceName string

	// ServiceVersion is attached to traces when set.
	ServiceVersion string

	// Insecure uses a plaintext connection (no TLS).
	Insecure bool

	// Headers contains additional headers for the OTLP exporter.
	Headers map[string]string
}

// Exporter owns the tracer provider backing exported spans.
type Exporter struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// New connects the OTLP exporter and returns an Exporter. Connection
// failures surface here rather than blocking later detection runs.
func New(ctx context.Context, opts Options) (*Exporter, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = "redpill"
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "localhost:4317"
	}

	var grpcOpts []grpc.DialOption
	if opts.Insecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithDialOption(grpcOpts...),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}
	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}

	connectCtx, cancel := context.WithTimeout(ctx, duration.OTLPConnect)
	defer cancel()

	exporter, err := otlptracegrpc.New(connectCtx, exporterOpts...)
	if err != nil {
		return nil, err
	}

	attrs := []sdktrace.TracerProviderOption{
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(opts.ServiceName),
			semconv.ServiceVersion(opts.ServiceVersion),
		)),
	}

	provider := sdktrace.NewTracerProvider(attrs...)
	return &Exporter{
		provider: provider,
		tracer:   provider.Tracer("redpill"),
	}, nil
}

// Tracer returns the tracer to pass to engine.WithTracer.
func (e *Exporter) Tracer() trace.Tracer { return e.tracer }

// Shutdown flushes pending spans and stops the exporter.
func (e *Exporter) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, duration.ShutdownTimeout)
	defer cancel()
	return e.provider.Shutdown(shutdownCtx)
}
