package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const instrumentation = "github.com/theapemachine/mcp-server-vbr-bridge"

// Options configures the providers built by Setup.
type Options struct {
	ServiceName string
	// Endpoint is an OTLP/HTTP URL. Without it spans are not exported.
	Endpoint string
}

// Provider owns the SDK providers and the observer built on them.
type Provider struct {
	Observer *Observer

	tracer *sdktrace.TracerProvider
	meter  *sdkmetric.MeterProvider
}

// Setup builds tracer and meter providers and an Observer on top of them.
func Setup(ctx context.Context, opts Options, extra ...sdkmetric.Option) (*Provider, error) {
	res := resource.NewSchemaless(attribute.String("service.name", opts.ServiceName))

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if opts.Endpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(opts.Endpoint))
		if err != nil {
			return nil, err
		}

		traceOpts = append(traceOpts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(traceOpts...)
	mp := sdkmetric.NewMeterProvider(append([]sdkmetric.Option{sdkmetric.WithResource(res)}, extra...)...)

	observer, err := NewObserver(mp.Meter(instrumentation), tp.Tracer(instrumentation))
	if err != nil {
		return nil, errors.Join(err, tp.Shutdown(ctx), mp.Shutdown(ctx))
	}

	return &Provider{Observer: observer, tracer: tp, meter: mp}, nil
}

// Shutdown flushes and stops both providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	return errors.Join(p.tracer.Shutdown(ctx), p.meter.Shutdown(ctx))
}
