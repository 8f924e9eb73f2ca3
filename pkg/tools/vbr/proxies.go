package vbr

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/session"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/tools"
	vbrapi "github.com/theapemachine/mcp-server-vbr-bridge/pkg/vbr"
)

const proxiesPath = "/api/v1/backupInfrastructure/proxies"

type ProxiesParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"minimum=1,maximum=1000,default=200" jsonschema_description:"Maximum number of proxies to retrieve"`
	Skip  int `json:"skip,omitempty" jsonschema:"minimum=0,default=0" jsonschema_description:"Number of proxies to skip (for pagination)"`
}

// ProxyView is one proxy in the get-proxies output.
type ProxyView struct {
	ID                    json.RawMessage `json:"id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	Type                  string          `json:"type"`
	TransportMode         string          `json:"transportMode"`
	MaxTaskCount          int             `json:"maxTaskCount"`
	FailoverToNetwork     bool            `json:"failoverToNetwork"`
	HostToProxyEncryption bool            `json:"hostToProxyEncryption"`
	AutoSelectDatastores  bool            `json:"autoSelectDatastores"`
}

type ProxiesReport struct {
	Summary    string             `json:"summary"`
	Proxies    []ProxyView        `json:"proxies"`
	Pagination *vbrapi.Pagination `json:"pagination"`
}

// ProxiesTool lists backup proxies.
type ProxiesTool struct {
	*tools.BaseTool
	client *vbrapi.Client
}

func NewProxiesTool(client *vbrapi.Client) (*ProxiesTool, error) {
	base, err := tools.NewBaseTool[ProxiesParams](
		"get-proxies",
		"List the backup proxies of the connected VBR server.",
	)
	if err != nil {
		return nil, err
	}

	return &ProxiesTool{BaseTool: base, client: client}, nil
}

func (tool *ProxiesTool) Handler(ctx context.Context, sess *session.Session, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params ProxiesParams
	if err := bind(request, &params); err != nil {
		return tools.HandleError(err, "Error fetching proxies"), nil
	}

	return query(ctx, sess, "proxies", func(ctx context.Context, host, token string) (any, error) {
		page, err := vbrapi.List[vbrapi.Proxy](ctx, tool.client, host, token, "proxies", proxiesPath, pageQuery(params.Limit, params.Skip))
		if err != nil {
			return nil, err
		}

		return ProjectProxies(page), nil
	}), nil
}

// ProjectProxies reshapes a page of proxies. A proxy without a server block
// gets zero values for the server fields.
func ProjectProxies(page *vbrapi.Page[vbrapi.Proxy]) ProxiesReport {
	report := ProxiesReport{
		Summary: fmt.Sprintf("Retrieved %d backup proxies out of %d total proxies",
			page.Pagination.Count, page.Pagination.Total),
		Proxies:    make([]ProxyView, 0, len(page.Data)),
		Pagination: page.Pagination,
	}

	for _, proxy := range page.Data {
		view := ProxyView{
			ID:          proxy.ID,
			Name:        proxy.Name,
			Description: proxy.Description,
			Type:        proxy.Type,
		}

		if server := proxy.Server; server != nil {
			view.TransportMode = server.TransportMode
			view.MaxTaskCount = server.MaxTaskCount
			view.FailoverToNetwork = server.FailoverToNetwork
			view.HostToProxyEncryption = server.HostToProxyEncryption

			if server.ConnectedDatastores != nil {
				view.AutoSelectDatastores = server.ConnectedDatastores.AutoSelectEnabled
			}
		}

		report.Proxies = append(report.Proxies, view)
	}

	return report
}
