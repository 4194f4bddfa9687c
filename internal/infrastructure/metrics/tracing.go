package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// TracingOptions configures the tracer provider.
type TracingOptions struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Environment string
	Version     string
}

// InitTracer installs a global tracer provider. Spans are exported over
// OTLP/HTTP only when tracing is enabled; otherwise they are recorded and dropped.
func InitTracer(ctx context.Context, opts TracingOptions) (*sdktrace.TracerProvider, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(opts.ServiceName),
		semconv.ServiceVersionKey.String(opts.Version),
		semconv.DeploymentEnvironmentKey.String(opts.Environment),
	)

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}

	if opts.Enabled {
		if opts.Endpoint == "" {
			return nil, fmt.Errorf("tracing enabled without an endpoint")
		}
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(opts.Endpoint), otlptracehttp.WithInsecure())
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tp)

	return tp, nil
}
