package core

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/session"
)

/*
Tool is one backend capability exposed to the MCP client. Handle describes the
tool (name, description, input schema) and Handler runs one invocation with the
runtime-owned session. Arguments have already been validated against the input
schema, with defaults filled in, when Handler is called.
*/
type Tool interface {
	Handle() mcp.Tool
	Handler(ctx context.Context, sess *session.Session, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}
