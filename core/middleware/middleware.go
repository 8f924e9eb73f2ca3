// Package middleware provides middleware components wrapped around every MCP tool handler.
package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/telemetry"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/tools"
)

type invocationKey struct{}

// InvocationID returns the id Logging assigned to the current call.
func InvocationID(ctx context.Context) string {
	id, _ := ctx.Value(invocationKey{}).(string)
	return id
}

// Chain wraps handler so that the first middleware is the outermost.
func Chain(handler server.ToolHandlerFunc, middlewares ...server.ToolHandlerMiddleware) server.ToolHandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	return handler
}

// Logging assigns each call an invocation id and logs its outcome.
func Logging(logger *log.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id := uuid.NewString()
			ctx = context.WithValue(ctx, invocationKey{}, id)

			start := time.Now()
			logger.Debug("tool call", "tool", request.Params.Name, "invocation", id)

			result, err := next(ctx, request)

			success, code := Outcome(result, err)
			fields := []any{
				"tool", request.Params.Name,
				"invocation", id,
				"duration", time.Since(start),
			}

			if success {
				logger.Info("tool call completed", fields...)
			} else {
				logger.Warn("tool call failed", append(fields, "code", code)...)
			}

			return result, err
		}
	}
}

// Recovery turns a handler panic into an INTERNAL error result.
func Recovery(logger *log.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("tool handler panicked",
						"tool", request.Params.Name,
						"invocation", InvocationID(ctx),
						"panic", r,
						"stack", string(debug.Stack()),
					)

					result = tools.NewErrorResult(fmt.Errorf("%w: %s panicked: %v", tools.ErrInternalError, request.Params.Name, r))
					err = nil
				}
			}()

			return next(ctx, request)
		}
	}
}

// Telemetry records every call with observer.
func Telemetry(observer *telemetry.Observer) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id := InvocationID(ctx)
			ctx, finish := observer.Start(ctx, request.Params.Name, id)

			start := time.Now()
			result, err := next(ctx, request)

			success, code := Outcome(result, err)
			finish(telemetry.Invocation{
				Tool:      request.Params.Name,
				ID:        id,
				Duration:  time.Since(start),
				Success:   success,
				ErrorCode: code,
			})

			return result, err
		}
	}
}

// Outcome reports whether a call succeeded and, if not, its error code.
func Outcome(result *mcp.CallToolResult, err error) (bool, string) {
	switch {
	case err != nil:
		return false, tools.CodeOf(err)
	case result == nil:
		return false, tools.CodeInternal
	case !result.IsError:
		return true, ""
	}

	if code, ok := result.Meta[tools.ErrorCodeKey].(string); ok && code != "" {
		return false, code
	}

	return false, tools.CodeInternal
}
