package middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/telemetry"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/tools"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func request(name string) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	return req
}

func TestChain(t *testing.T) {
	Convey("Given middlewares that record their order", t, func() {
		var order []string

		mark := func(name string) server.ToolHandlerMiddleware {
			return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
				return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
					order = append(order, name)
					return next(ctx, req)
				}
			}
		}

		handler := Chain(func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			order = append(order, "handler")
			return mcp.NewToolResultText("ok"), nil
		}, mark("outer"), mark("inner"))

		_, err := handler(context.Background(), request("t"))

		Convey("The first middleware should run first", func() {
			So(err, ShouldBeNil)
			So(order, ShouldResemble, []string{"outer", "inner", "handler"})
		})
	})
}

func TestLogging(t *testing.T) {
	Convey("Given a logging middleware", t, func() {
		var buf bytes.Buffer
		logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

		var seen string
		handler := Logging(logger)(func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			seen = InvocationID(ctx)
			return tools.NewErrorResult(tools.ErrNotAuthenticated), nil
		})

		result, err := handler(context.Background(), request("get-proxies"))

		Convey("The handler should see an invocation id", func() {
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeTrue)
			So(seen, ShouldNotBeEmpty)
		})

		Convey("The outcome should be logged with tool and code", func() {
			So(buf.String(), ShouldContainSubstring, "get-proxies")
			So(buf.String(), ShouldContainSubstring, seen)
			So(buf.String(), ShouldContainSubstring, tools.CodeUnauthenticated)
		})
	})
}

func TestRecovery(t *testing.T) {
	Convey("Given a handler that panics", t, func() {
		var buf bytes.Buffer
		logger := log.NewWithOptions(&buf, log.Options{})

		handler := Recovery(logger)(func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			panic("boom")
		})

		result, err := handler(context.Background(), request("get-license-info"))

		Convey("The panic should become an INTERNAL error result", func() {
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeTrue)
			So(result.Meta[tools.ErrorCodeKey], ShouldEqual, tools.CodeInternal)

			text, ok := mcp.AsTextContent(result.Content[0])
			So(ok, ShouldBeTrue)
			So(text.Text, ShouldContainSubstring, "boom")
		})

		Convey("And be logged", func() {
			So(buf.String(), ShouldContainSubstring, "panicked")
		})
	})
}

func TestTelemetry(t *testing.T) {
	Convey("Given a telemetry middleware", t, func() {
		exporter := tracetest.NewInMemoryExporter()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))

		observer, err := telemetry.NewObserver(mp.Meter("test"), tp.Tracer("test"))
		So(err, ShouldBeNil)

		handler := Chain(func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("ok"), nil
		}, Logging(log.New(&bytes.Buffer{})), Telemetry(observer))

		_, err = handler(context.Background(), request("get-server-info"))
		So(err, ShouldBeNil)

		Convey("One span should be recorded for the call", func() {
			spans := exporter.GetSpans()
			So(spans, ShouldHaveLength, 1)
			So(spans[0].Name, ShouldEqual, "tool.invoke")
		})
	})
}

func TestOutcome(t *testing.T) {
	Convey("Given call outcomes", t, func() {
		Convey("A plain result is a success", func() {
			ok, code := Outcome(mcp.NewToolResultText("x"), nil)
			So(ok, ShouldBeTrue)
			So(code, ShouldBeEmpty)
		})

		Convey("An error result carries its code", func() {
			ok, code := Outcome(tools.NewErrorResult(tools.ErrInvalidParams), nil)
			So(ok, ShouldBeFalse)
			So(code, ShouldEqual, tools.CodeInvalidParams)
		})

		Convey("An error result without code is INTERNAL", func() {
			ok, code := Outcome(mcp.NewToolResultError("x"), nil)
			So(ok, ShouldBeFalse)
			So(code, ShouldEqual, tools.CodeInternal)
		})

		Convey("A Go error is classified", func() {
			ok, code := Outcome(nil, errors.New("x"))
			So(ok, ShouldBeFalse)
			So(code, ShouldEqual, tools.CodeInternal)
		})
	})
}
