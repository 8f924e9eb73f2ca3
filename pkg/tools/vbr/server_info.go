package vbr

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/session"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/tools"
	vbrapi "github.com/theapemachine/mcp-server-vbr-bridge/pkg/vbr"
)

const serverInfoPath = "/api/v1/serverInfo"

type NoParams struct{}

// ServerInfoTool returns the server information document as is.
type ServerInfoTool struct {
	*tools.BaseTool
	client *vbrapi.Client
}

func NewServerInfoTool(client *vbrapi.Client) (*ServerInfoTool, error) {
	base, err := tools.NewBaseTool[NoParams](
		"get-server-info",
		"Show version, name and identifiers of the connected VBR server.",
	)
	if err != nil {
		return nil, err
	}

	return &ServerInfoTool{BaseTool: base, client: client}, nil
}

func (tool *ServerInfoTool) Handler(ctx context.Context, sess *session.Session, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return query(ctx, sess, "server info", func(ctx context.Context, host, token string) (any, error) {
		return tool.client.GetRaw(ctx, host, token, "server info", serverInfoPath)
	}), nil
}
