package telemetry

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	otelcodes "go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func collect(reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	So(reader.Collect(context.Background(), &rm), ShouldBeNil)
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, scope := range rm.ScopeMetrics {
		for i := range scope.Metrics {
			if scope.Metrics[i].Name == name {
				return &scope.Metrics[i]
			}
		}
	}
	return nil
}

func TestObserver(t *testing.T) {
	Convey("Given an observer on in-memory providers", t, func() {
		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		exporter := tracetest.NewInMemoryExporter()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

		observer, err := NewObserver(mp.Meter("test"), tp.Tracer("test"))
		So(err, ShouldBeNil)

		Convey("A successful invocation should be counted and traced", func() {
			_, finish := observer.Start(context.Background(), "get-proxies", "id-1")
			finish(Invocation{Tool: "get-proxies", ID: "id-1", Duration: 20 * time.Millisecond, Success: true})

			rm := collect(reader)

			invocations := findMetric(rm, "vbr_mcp.tool.invocations")
			So(invocations, ShouldNotBeNil)
			sum, ok := invocations.Data.(metricdata.Sum[int64])
			So(ok, ShouldBeTrue)
			So(sum.DataPoints, ShouldHaveLength, 1)
			So(sum.DataPoints[0].Value, ShouldEqual, int64(1))

			latency := findMetric(rm, "vbr_mcp.tool.latency")
			So(latency, ShouldNotBeNil)
			_, ok = latency.Data.(metricdata.Histogram[float64])
			So(ok, ShouldBeTrue)

			spans := exporter.GetSpans()
			So(spans, ShouldHaveLength, 1)
			So(spans[0].Name, ShouldEqual, "tool.invoke")
			So(spans[0].Status.Code, ShouldEqual, otelcodes.Ok)
		})

		Convey("A failed invocation should carry its error code", func() {
			_, finish := observer.Start(context.Background(), "get-proxies", "id-2")
			finish(Invocation{Tool: "get-proxies", ID: "id-2", ErrorCode: "UPSTREAM_FAILURE"})

			spans := exporter.GetSpans()
			So(spans, ShouldHaveLength, 1)
			So(spans[0].Status.Code, ShouldEqual, otelcodes.Error)
			So(spans[0].Status.Description, ShouldEqual, "UPSTREAM_FAILURE")

			sum := findMetric(collect(reader), "vbr_mcp.tool.invocations").Data.(metricdata.Sum[int64])
			found := false
			for _, kv := range sum.DataPoints[0].Attributes.ToSlice() {
				if string(kv.Key) == "error_code" && kv.Value.AsString() == "UPSTREAM_FAILURE" {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})

	Convey("Given a nil observer", t, func() {
		var observer *Observer

		Convey("Start should be a no-op", func() {
			ctx := context.Background()
			got, finish := observer.Start(ctx, "x", "y")
			So(got, ShouldEqual, ctx)
			So(func() { finish(Invocation{}) }, ShouldNotPanic)
		})
	})
}

func TestSetup(t *testing.T) {
	Convey("Given no OTLP endpoint", t, func() {
		reader := sdkmetric.NewManualReader()

		provider, err := Setup(context.Background(), Options{ServiceName: "vbr-mcp"}, sdkmetric.WithReader(reader))
		So(err, ShouldBeNil)

		Convey("The observer should record into the meter provider", func() {
			_, finish := provider.Observer.Start(context.Background(), "auth-vbr", "id")
			finish(Invocation{Tool: "auth-vbr", Success: true})

			So(findMetric(collect(reader), "vbr_mcp.tool.invocations"), ShouldNotBeNil)
		})

		Convey("Shutdown should succeed", func() {
			So(provider.Shutdown(context.Background()), ShouldBeNil)
		})
	})
}
