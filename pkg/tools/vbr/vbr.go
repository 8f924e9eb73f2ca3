package vbr

import (
	"github.com/theapemachine/mcp-server-vbr-bridge/core"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/registry"
)

// Providers lists the VBR tools in registration order.
func Providers(deps Deps) []registry.Provider {
	return []registry.Provider{
		func() (core.Tool, error) { return NewAuthTool(deps.Client, deps.Defaults) },
		func() (core.Tool, error) { return NewProxiesTool(deps.Client) },
		func() (core.Tool, error) { return NewRepositoriesTool(deps.Client) },
		func() (core.Tool, error) { return NewSessionsTool(deps.Client) },
		func() (core.Tool, error) { return NewServerInfoTool(deps.Client) },
		func() (core.Tool, error) { return NewLicenseInfoTool(deps.Client) },
		func() (core.Tool, error) { return NewLicenseWorkloadsTool(deps.Client) },
	}
}
