// Package tools provides the shared building blocks for MCP tools: descriptors,
// error classification and the standard result shapes.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/tools/schema"
)

// Standard errors for consistent error handling
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidParams    = errors.New("invalid parameters")
	ErrExternalAPIError = errors.New("external API error")
	ErrInternalError    = errors.New("internal server error")
)

// Machine-readable error codes attached to error results under _meta.
const (
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeInvalidParams    = "INVALID_PARAMS"
	CodeTransportFailure = "TRANSPORT_FAILURE"
	CodeUpstreamFailure  = "UPSTREAM_FAILURE"
	CodeDecodeFailure    = "DECODE_FAILURE"
	CodeInternal         = "INTERNAL"

	// ErrorCodeKey is the _meta key holding the error code of an error result.
	ErrorCodeKey = "errorCode"
)

// Coder is implemented by errors that know their own error code.
type Coder interface {
	ErrorCode() string
}

// CodeOf classifies err into one of the error codes.
func CodeOf(err error) string {
	var coder Coder

	switch {
	case err == nil:
		return ""
	case errors.As(err, &coder) && coder.ErrorCode() != "":
		return coder.ErrorCode()
	case errors.Is(err, ErrNotAuthenticated):
		return CodeUnauthenticated
	case errors.Is(err, ErrInvalidParams):
		return CodeInvalidParams
	case errors.Is(err, ErrExternalAPIError):
		return CodeUpstreamFailure
	default:
		return CodeInternal
	}
}

// BaseTool provides the descriptor half of a tool.
type BaseTool struct {
	name   string
	handle mcp.Tool
}

// NewBaseTool builds a descriptor whose input schema is generated from the
// parameter struct P.
func NewBaseTool[P any](name, description string) (*BaseTool, error) {
	raw, err := schema.Reflect[P]()
	if err != nil {
		return nil, WrapError(err, "building schema for "+name)
	}

	return &BaseTool{
		name:   name,
		handle: mcp.NewToolWithRawSchema(name, description, raw),
	}, nil
}

// Handle returns the MCP Tool definition
func (b *BaseTool) Handle() mcp.Tool {
	return b.handle
}

// Name returns the name of the tool
func (b *BaseTool) Name() string {
	return b.name
}

// WrapError wraps a domain error with a context message
func WrapError(err error, msg string) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// NewErrorResult creates a standard error result carrying the error code.
func NewErrorResult(err error) *mcp.CallToolResult {
	return withCode(mcp.NewToolResultError(err.Error()), CodeOf(err))
}

// HandleError formats err behind message, e.g. "Error fetching proxies: ...".
func HandleError(err error, message string) *mcp.CallToolResult {
	return withCode(mcp.NewToolResultError(fmt.Sprintf("%s: %v", message, err)), CodeOf(err))
}

// NewTextResult creates a standard text result
func NewTextResult(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}

// NewJSONResult renders v as indented JSON text.
func NewJSONResult(v any) (*mcp.CallToolResult, error) {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(string(buf)), nil
}

func withCode(result *mcp.CallToolResult, code string) *mcp.CallToolResult {
	if code == "" {
		return result
	}

	if result.Meta == nil {
		result.Meta = make(map[string]any)
	}
	result.Meta[ErrorCodeKey] = code

	return result
}
