// Package telemetry records tool invocations as OpenTelemetry metrics and spans.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Invocation is the outcome of one tool call.
type Invocation struct {
	Tool      string
	ID        string
	Duration  time.Duration
	Success   bool
	ErrorCode string
}

// Observer records tool invocations into OpenTelemetry.
type Observer struct {
	tracer trace.Tracer

	invocations metric.Int64Counter
	latency     metric.Float64Histogram
}

// NewObserver creates an observer bound to the provided meter/tracer.
func NewObserver(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	invocations, err := meter.Int64Counter(
		"vbr_mcp.tool.invocations",
		metric.WithDescription("Number of tool invocations"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram(
		"vbr_mcp.tool.latency",
		metric.WithDescription("Tool latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Observer{
		tracer:      tracer,
		invocations: invocations,
		latency:     latency,
	}, nil
}

// Start opens the span of one invocation. The returned function closes it and
// records the outcome.
func (o *Observer) Start(ctx context.Context, tool, id string) (context.Context, func(Invocation)) {
	if o == nil {
		return ctx, func(Invocation) {}
	}

	var span trace.Span
	if o.tracer != nil {
		ctx, span = o.tracer.Start(ctx, "tool.invoke", trace.WithAttributes(
			attribute.String("tool_name", tool),
			attribute.String("invocation_id", id),
		))
	}

	return ctx, func(inv Invocation) {
		o.record(ctx, inv)

		if span == nil {
			return
		}

		span.SetAttributes(attribute.Bool("success", inv.Success))
		if inv.Success {
			span.SetStatus(codes.Ok, "")
		} else {
			span.SetAttributes(attribute.String("error_code", inv.ErrorCode))
			span.SetStatus(codes.Error, inv.ErrorCode)
		}
		span.End()
	}
}

func (o *Observer) record(ctx context.Context, inv Invocation) {
	attrs := []attribute.KeyValue{
		attribute.String("tool_name", inv.Tool),
		attribute.Bool("success", inv.Success),
	}
	if inv.ErrorCode != "" {
		attrs = append(attrs, attribute.String("error_code", inv.ErrorCode))
	}

	options := metric.WithAttributes(attrs...)
	o.invocations.Add(ctx, 1, options)
	o.latency.Record(ctx, inv.Duration.Seconds(), options)
}
