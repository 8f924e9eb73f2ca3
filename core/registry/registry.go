// Package registry registers tools with the MCP server and routes calls to them.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/mcp-server-vbr-bridge/core"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/middleware"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/session"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/tools"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/tools/schema"
)

var (
	// ErrToolExists is returned when a tool name is registered twice.
	ErrToolExists = errors.New("tool already registered")
	// ErrNilTool is returned when a provider yields no tool.
	ErrNilTool = errors.New("provider returned no tool")
)

// Provider builds one tool. Dependencies are captured by the closure.
type Provider func() (core.Tool, error)

// ToolRegistry manages tool registration and lifecycle
type ToolRegistry struct {
	server      *server.MCPServer
	session     *session.Session
	logger      *log.Logger
	middlewares []server.ToolHandlerMiddleware

	mu       sync.RWMutex
	handlers map[string]server.ToolHandlerFunc
}

// New creates a registry that adds tools to mcpServer and hands sess to
// every handler. middlewares wrap each handler, the first one outermost.
func New(mcpServer *server.MCPServer, sess *session.Session, logger *log.Logger, middlewares ...server.ToolHandlerMiddleware) *ToolRegistry {
	return &ToolRegistry{
		server:      mcpServer,
		session:     sess,
		logger:      logger,
		middlewares: middlewares,
		handlers:    make(map[string]server.ToolHandlerFunc),
	}
}

// Register validates tool and adds it to the server. The first registration
// of a name wins.
func (r *ToolRegistry) Register(tool core.Tool) error {
	handle := tool.Handle()
	if handle.Name == "" {
		return errors.New("tool has no name")
	}

	raw, err := inputSchema(handle)
	if err != nil {
		return fmt.Errorf("%s: %w", handle.Name, err)
	}

	validator, err := schema.Compile(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", handle.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[handle.Name]; ok {
		return fmt.Errorf("%w: %s", ErrToolExists, handle.Name)
	}

	handler := r.wrap(tool, validator)
	r.handlers[handle.Name] = handler
	r.server.AddTool(handle, handler)

	return nil
}

// Discover builds and registers the tools of providers in order. Failures
// are logged and skipped. It returns the number of tools registered.
func (r *ToolRegistry) Discover(providers ...Provider) int {
	registered := 0

	for i, provide := range providers {
		name, err := r.install(provide)
		if err != nil {
			r.logger.Error("skipping tool", "provider", i, "error", err)
			continue
		}

		r.logger.Debug("registered tool", "tool", name)
		registered++
	}

	return registered
}

// Names returns the registered tool names, sorted.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Handler returns the fully wrapped handler registered under name.
func (r *ToolRegistry) Handler(name string) (server.ToolHandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[name]
	return handler, ok
}

func (r *ToolRegistry) wrap(tool core.Tool, validator *schema.Validator) server.ToolHandlerFunc {
	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil && request.Params.Arguments != nil {
			return tools.NewErrorResult(fmt.Errorf("%w: arguments must be an object", tools.ErrInvalidParams)), nil
		}

		applied, err := validator.Apply(args)
		if err != nil {
			return tools.NewErrorResult(fmt.Errorf("%w: %v", tools.ErrInvalidParams, err)), nil
		}

		request.Params.Arguments = applied

		return tool.Handler(ctx, r.session, request)
	}

	return middleware.Chain(handler, r.middlewares...)
}

func (r *ToolRegistry) install(provide Provider) (name string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("provider panicked: %v", p)
		}
	}()

	tool, err := provide()
	if err != nil {
		return "", err
	}

	if tool == nil {
		return "", ErrNilTool
	}

	if err := r.Register(tool); err != nil {
		return "", err
	}

	return tool.Handle().Name, nil
}

func inputSchema(handle mcp.Tool) (json.RawMessage, error) {
	if len(handle.RawInputSchema) > 0 {
		return handle.RawInputSchema, nil
	}

	return json.Marshal(handle.InputSchema)
}
