package vbr

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/session"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/tools"
	vbrapi "github.com/theapemachine/mcp-server-vbr-bridge/pkg/vbr"
)

// AuthParams are the arguments of auth-vbr. All are optional.
type AuthParams struct {
	Host     string `json:"host,omitempty" jsonschema_description:"VBR server hostname or IP"`
	Username string `json:"username,omitempty" jsonschema_description:"Username in domain\\user format"`
	Password string `json:"password,omitempty" jsonschema_description:"Password"`
}

// AuthTool obtains an access token and stores it in the session.
type AuthTool struct {
	*tools.BaseTool
	client   *vbrapi.Client
	defaults Defaults
}

// NewAuthTool creates the auth-vbr tool.
func NewAuthTool(client *vbrapi.Client, defaults Defaults) (*AuthTool, error) {
	base, err := tools.NewBaseTool[AuthParams](
		"auth-vbr",
		"Authenticate against a Veeam Backup & Replication server. The token is kept for all other tools.",
	)
	if err != nil {
		return nil, err
	}

	return &AuthTool{BaseTool: base, client: client, defaults: defaults}, nil
}

func (tool *AuthTool) Handler(ctx context.Context, sess *session.Session, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params AuthParams
	if err := bind(request, &params); err != nil {
		return tools.HandleError(err, "Authentication failed"), nil
	}

	host := firstNonEmpty(params.Host, tool.defaults.Host)
	username := firstNonEmpty(params.Username, tool.defaults.Username)
	password := firstNonEmpty(params.Password, tool.defaults.Password)

	for _, missing := range []struct{ name, value, env string }{
		{"host", host, "VBR_HOST"},
		{"username", username, "VBR_USERNAME"},
		{"password", password, "VBR_PASSWORD"},
	} {
		if missing.value == "" {
			err := fmt.Errorf("%w: %s is required; pass it or set %s", tools.ErrInvalidParams, missing.name, missing.env)
			return tools.HandleError(err, "Authentication failed"), nil
		}
	}

	token, err := guard(func() (string, error) {
		return tool.client.Token(ctx, host, username, password)
	})
	if err != nil {
		return tools.HandleError(err, "Authentication failed"), nil
	}

	sess.Set(host, token)

	return tools.NewTextResult(fmt.Sprintf(
		"Authentication successful. Connected to %s. Token received and stored for subsequent API calls.", host,
	)), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
