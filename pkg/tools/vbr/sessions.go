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

const sessionsPath = "/api/v1/sessions"

type SessionsParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"minimum=1,maximum=1000,default=100" jsonschema_description:"Maximum number of sessions to retrieve"`
	Skip  int `json:"skip,omitempty" jsonschema:"minimum=0,default=0" jsonschema_description:"Number of sessions to skip (for pagination)"`
}

type SessionView struct {
	ID              json.RawMessage `json:"id"`
	Name            string          `json:"name"`
	SessionType     string          `json:"sessionType"`
	State           string          `json:"state"`
	PlatformName    string          `json:"platformName"`
	CreationTime    string          `json:"creationTime"`
	EndTime         string          `json:"endTime"`
	ProgressPercent int             `json:"progressPercent"`
	Result          string          `json:"result"`
	Message         string          `json:"message"`
}

type SessionsReport struct {
	Summary    string             `json:"summary"`
	Sessions   []SessionView      `json:"sessions"`
	Pagination *vbrapi.Pagination `json:"pagination"`
}

// SessionsTool lists backup job sessions.
type SessionsTool struct {
	*tools.BaseTool
	client *vbrapi.Client
}

func NewSessionsTool(client *vbrapi.Client) (*SessionsTool, error) {
	base, err := tools.NewBaseTool[SessionsParams](
		"get-backup-sessions",
		"List recent backup job sessions with their state and result.",
	)
	if err != nil {
		return nil, err
	}

	return &SessionsTool{BaseTool: base, client: client}, nil
}

func (tool *SessionsTool) Handler(ctx context.Context, sess *session.Session, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params SessionsParams
	if err := bind(request, &params); err != nil {
		return tools.HandleError(err, "Error fetching backup sessions"), nil
	}

	return query(ctx, sess, "backup sessions", func(ctx context.Context, host, token string) (any, error) {
		q := pageQuery(params.Limit, params.Skip)
		q.Set("typeFilter", "BackupJob")

		page, err := vbrapi.List[vbrapi.Session](ctx, tool.client, host, token, "backup sessions", sessionsPath, q)
		if err != nil {
			return nil, err
		}

		return ProjectSessions(page), nil
	}), nil
}

func ProjectSessions(page *vbrapi.Page[vbrapi.Session]) SessionsReport {
	report := SessionsReport{
		Summary: fmt.Sprintf("Retrieved %d backup job sessions out of %d total sessions",
			page.Pagination.Count, page.Pagination.Total),
		Sessions:   make([]SessionView, 0, len(page.Data)),
		Pagination: page.Pagination,
	}

	for _, s := range page.Data {
		view := SessionView{
			ID:              s.ID,
			Name:            s.Name,
			SessionType:     s.SessionType,
			State:           s.State,
			PlatformName:    s.PlatformName,
			CreationTime:    s.CreationTime,
			EndTime:         s.EndTime,
			ProgressPercent: s.ProgressPercent,
		}

		if s.Result != nil {
			view.Result = s.Result.Result
			view.Message = s.Result.Message
		}

		report.Sessions = append(report.Sessions, view)
	}

	return report
}
