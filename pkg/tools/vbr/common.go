// Package vbr implements the MCP tools that expose the Veeam Backup &
// Replication REST API.
package vbr

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/session"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/tools"
	vbrapi "github.com/theapemachine/mcp-server-vbr-bridge/pkg/vbr"
)

// Defaults fill in auth-vbr arguments the caller leaves out.
type Defaults struct {
	Host     string
	Username string
	Password string
}

// Deps are shared by every VBR tool.
type Deps struct {
	Client   *vbrapi.Client
	Defaults Defaults
}

type unauthenticatedError struct{}

func (unauthenticatedError) Error() string {
	return "Not authenticated. Please call auth-vbr tool first."
}

func (unauthenticatedError) Is(target error) bool {
	return target == tools.ErrNotAuthenticated
}

// fetchFunc performs the single backend request of a query tool and returns
// its projection.
type fetchFunc func(ctx context.Context, host, token string) (any, error)

// query runs the flow every read-only tool shares: require a session, fetch
// once, render the projection as indented JSON.
func query(ctx context.Context, sess *session.Session, what string, fetch fetchFunc) *mcp.CallToolResult {
	creds, ok := sess.Get()
	if !ok {
		return tools.NewErrorResult(unauthenticatedError{})
	}

	projection, err := guard(func() (any, error) {
		return fetch(ctx, creds.Host, creds.Token)
	})
	if err != nil {
		return tools.HandleError(err, "Error fetching "+what)
	}

	result, err := tools.NewJSONResult(projection)
	if err != nil {
		return tools.HandleError(fmt.Errorf("%w: %v", tools.ErrInternalError, err), "Error fetching "+what)
	}

	return result
}

// guard converts a panic in fn into an error.
func guard[T any](fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", tools.ErrInternalError, r)
		}
	}()

	return fn()
}

func bind(request mcp.CallToolRequest, params any) error {
	if err := request.BindArguments(params); err != nil {
		return fmt.Errorf("%w: %v", tools.ErrInvalidParams, err)
	}

	return nil
}

func pageQuery(limit, skip int) url.Values {
	return url.Values{
		"limit": {strconv.Itoa(limit)},
		"skip":  {strconv.Itoa(skip)},
	}
}
