package vbr

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/session"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/tools"
	vbrapi "github.com/theapemachine/mcp-server-vbr-bridge/pkg/vbr"
)

const repositoriesPath = "/api/v1/backupInfrastructure/repositories/states"

// Repository health buckets.
const (
	StatusHealthy = "Healthy"
	StatusWarning = "Warning"
	StatusOffline = "Offline"
	StatusCloud   = "Cloud"
	StatusUnknown = "Unknown"
)

type RepositoriesParams struct {
	Limit     int `json:"limit,omitempty" jsonschema:"minimum=1,maximum=1000,default=200" jsonschema_description:"Maximum number of repositories to retrieve"`
	Skip      int `json:"skip,omitempty" jsonschema:"minimum=0,default=0" jsonschema_description:"Number of repositories to skip (for pagination)"`
	Threshold int `json:"threshold,omitempty" jsonschema:"minimum=1,maximum=99,default=20" jsonschema_description:"Warning threshold percentage for free space"`
}

type RepositoryView struct {
	ID               json.RawMessage `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Type             string          `json:"type"`
	Path             string          `json:"path"`
	HostName         string          `json:"hostName"`
	CapacityGB       float64         `json:"capacityGB"`
	FreeGB           float64         `json:"freeGB"`
	UsedSpaceGB      float64         `json:"usedSpaceGB"`
	IsOnline         bool            `json:"isOnline"`
	FreeSpacePercent int             `json:"freeSpacePercent"`
	Status           string          `json:"status"`
	StatusDetails    string          `json:"statusDetails"`
}

type RepositorySummary struct {
	Total    int `json:"total"`
	Healthy  int `json:"healthy"`
	Warnings int `json:"warnings"`
	Offline  int `json:"offline"`
	Cloud    int `json:"cloud"`
	Unknown  int `json:"unknown"`
}

// RepositoriesReport buckets repositories by health. Each bucket keeps the
// backend order.
type RepositoriesReport struct {
	Summary    RepositorySummary  `json:"summary"`
	Warnings   []RepositoryView   `json:"warnings"`
	Offline    []RepositoryView   `json:"offline"`
	Healthy    []RepositoryView   `json:"healthy"`
	Cloud      []RepositoryView   `json:"cloud"`
	Unknown    []RepositoryView   `json:"unknown"`
	Pagination *vbrapi.Pagination `json:"pagination"`
}

// RepositoriesTool reports repository capacity and health.
type RepositoriesTool struct {
	*tools.BaseTool
	client *vbrapi.Client
}

func NewRepositoriesTool(client *vbrapi.Client) (*RepositoriesTool, error) {
	base, err := tools.NewBaseTool[RepositoriesParams](
		"get-repositories",
		"List backup repositories grouped by health: low free space, offline, healthy, cloud and unknown.",
	)
	if err != nil {
		return nil, err
	}

	return &RepositoriesTool{BaseTool: base, client: client}, nil
}

func (tool *RepositoriesTool) Handler(ctx context.Context, sess *session.Session, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params RepositoriesParams
	if err := bind(request, &params); err != nil {
		return tools.HandleError(err, "Error fetching repositories"), nil
	}

	return query(ctx, sess, "repositories", func(ctx context.Context, host, token string) (any, error) {
		page, err := vbrapi.List[vbrapi.RepositoryState](ctx, tool.client, host, token, "repositories", repositoriesPath, pageQuery(params.Limit, params.Skip))
		if err != nil {
			return nil, err
		}

		return ProjectRepositories(page, params.Threshold), nil
	}), nil
}

// Classify computes the free space percentage and health bucket of repo.
// Free space is only meaningful when capacity is reported; an offline
// repository is Offline whatever its capacity.
func Classify(repo vbrapi.RepositoryState, threshold int) (percent int, status, details string) {
	if repo.CapacityGB > 0 {
		percent = int(math.Round(repo.FreeGB / repo.CapacityGB * 100))
	}

	switch {
	case !repo.IsOnline:
		return percent, StatusOffline, "Repository is offline and cannot be accessed"
	case repo.CapacityGB > 0 && percent <= threshold:
		return percent, StatusWarning, fmt.Sprintf("Low free space (%d%%)", percent)
	case repo.CapacityGB > 0:
		return percent, StatusHealthy, fmt.Sprintf("Good free space (%d%%)", percent)
	case strings.Contains(repo.Type, "Cloud"):
		return percent, StatusCloud, "Object storage with unlimited capacity"
	default:
		return percent, StatusUnknown, "Unable to determine free space"
	}
}

func ProjectRepositories(page *vbrapi.Page[vbrapi.RepositoryState], threshold int) RepositoriesReport {
	report := RepositoriesReport{
		Warnings:   []RepositoryView{},
		Offline:    []RepositoryView{},
		Healthy:    []RepositoryView{},
		Cloud:      []RepositoryView{},
		Unknown:    []RepositoryView{},
		Pagination: page.Pagination,
	}

	for _, repo := range page.Data {
		percent, status, details := Classify(repo, threshold)

		hostName := repo.HostName
		if hostName == "" {
			hostName = "N/A"
		}

		view := RepositoryView{
			ID:               repo.ID,
			Name:             repo.Name,
			Description:      repo.Description,
			Type:             repo.Type,
			Path:             repo.Path,
			HostName:         hostName,
			CapacityGB:       repo.CapacityGB,
			FreeGB:           repo.FreeGB,
			UsedSpaceGB:      repo.UsedSpaceGB,
			IsOnline:         repo.IsOnline,
			FreeSpacePercent: percent,
			Status:           status,
			StatusDetails:    details,
		}

		switch status {
		case StatusWarning:
			report.Warnings = append(report.Warnings, view)
		case StatusOffline:
			report.Offline = append(report.Offline, view)
		case StatusHealthy:
			report.Healthy = append(report.Healthy, view)
		case StatusCloud:
			report.Cloud = append(report.Cloud, view)
		default:
			report.Unknown = append(report.Unknown, view)
		}
	}

	report.Summary = RepositorySummary{
		Total:    len(page.Data),
		Healthy:  len(report.Healthy),
		Warnings: len(report.Warnings),
		Offline:  len(report.Offline),
		Cloud:    len(report.Cloud),
		Unknown:  len(report.Unknown),
	}

	return report
}
