package vbr

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/session"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/tools"
	vbrapi "github.com/theapemachine/mcp-server-vbr-bridge/pkg/vbr"
)

const (
	licensePath = "/api/v1/license"

	// untypedWorkload groups workloads that carry no type.
	untypedWorkload = "unknown"
)

type LicenseSummaryView struct {
	Package                 string  `json:"package"`
	LicensedInstancesNumber float64 `json:"licensedInstancesNumber"`
	UsedInstancesNumber     float64 `json:"usedInstancesNumber"`
	WorkloadCount           int     `json:"workloadCount"`
}

type LicenseView struct {
	Status                 string             `json:"status"`
	Edition                string             `json:"edition"`
	ExpirationDate         string             `json:"expirationDate"`
	LicensedTo             string             `json:"licensedTo"`
	InstanceLicenseSummary LicenseSummaryView `json:"instanceLicenseSummary"`
	SupportExpirationDate  string             `json:"supportExpirationDate"`
}

// LicenseInfoTool summarizes the installed license.
type LicenseInfoTool struct {
	*tools.BaseTool
	client *vbrapi.Client
}

func NewLicenseInfoTool(client *vbrapi.Client) (*LicenseInfoTool, error) {
	base, err := tools.NewBaseTool[NoParams](
		"get-license-info",
		"Summarize the license of the connected VBR server: edition, expiry and instance usage.",
	)
	if err != nil {
		return nil, err
	}

	return &LicenseInfoTool{BaseTool: base, client: client}, nil
}

func (tool *LicenseInfoTool) Handler(ctx context.Context, sess *session.Session, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return query(ctx, sess, "license info", func(ctx context.Context, host, token string) (any, error) {
		var license vbrapi.License
		if err := tool.client.Get(ctx, host, token, "license info", licensePath, nil, &license); err != nil {
			return nil, err
		}

		return ProjectLicense(license), nil
	}), nil
}

func ProjectLicense(license vbrapi.License) LicenseView {
	view := LicenseView{
		Status:                license.Status,
		Edition:               license.Edition,
		ExpirationDate:        license.ExpirationDate,
		LicensedTo:            license.LicensedTo,
		SupportExpirationDate: license.SupportExpirationDate,
	}

	if summary := license.InstanceLicenseSummary; summary != nil {
		view.InstanceLicenseSummary = LicenseSummaryView{
			Package:                 summary.Package,
			LicensedInstancesNumber: summary.LicensedInstancesNumber,
			UsedInstancesNumber:     summary.UsedInstancesNumber,
			WorkloadCount:           len(summary.Workload),
		}
	}

	return view
}

// LicenseWorkloadsTool lists licensed workloads grouped by type.
type LicenseWorkloadsTool struct {
	*tools.BaseTool
	client *vbrapi.Client
}

func NewLicenseWorkloadsTool(client *vbrapi.Client) (*LicenseWorkloadsTool, error) {
	base, err := tools.NewBaseTool[NoParams](
		"get-license-workloads",
		"List the workloads consuming license instances, grouped by workload type.",
	)
	if err != nil {
		return nil, err
	}

	return &LicenseWorkloadsTool{BaseTool: base, client: client}, nil
}

func (tool *LicenseWorkloadsTool) Handler(ctx context.Context, sess *session.Session, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return query(ctx, sess, "license workloads", func(ctx context.Context, host, token string) (any, error) {
		var license vbrapi.License
		if err := tool.client.Get(ctx, host, token, "license info", licensePath, nil, &license); err != nil {
			return nil, err
		}

		return GroupWorkloads(license)
	}), nil
}

// GroupWorkloads groups the license workloads by their type field. Each
// workload is kept verbatim. Map keys marshal in sorted order.
func GroupWorkloads(license vbrapi.License) (map[string][]json.RawMessage, error) {
	groups := make(map[string][]json.RawMessage)

	if license.InstanceLicenseSummary == nil {
		return groups, nil
	}

	for _, workload := range license.InstanceLicenseSummary.Workload {
		var typed struct {
			Type string `json:"type"`
		}

		if err := json.Unmarshal(workload, &typed); err != nil {
			return nil, vbrapi.DecodeError("license workload", err)
		}

		key := typed.Type
		if key == "" {
			key = untypedWorkload
		}

		groups[key] = append(groups[key], workload)
	}

	return groups, nil
}
