package vbr

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/registry"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/session"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/tools"
	vbrapi "github.com/theapemachine/mcp-server-vbr-bridge/pkg/vbr"
)

// fixture is a registry with every VBR tool, wired to a fake VBR backend.
type fixture struct {
	t        *testing.T
	registry *registry.ToolRegistry
	session  *session.Session
	host     string

	mu       sync.Mutex
	requests []*http.Request
}

func newFixture(t *testing.T, defaults Defaults, routes func(r chi.Router)) *fixture {
	t.Helper()

	f := &fixture{t: t, session: session.New()}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			f.requests = append(f.requests, req.Clone(context.Background()))
			f.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})
	routes(r)

	srv := httptest.NewTLSServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)
	f.host = host

	client := vbrapi.New(vbrapi.Options{Port: port, HTTPClient: srv.Client()})

	mcpServer := server.NewMCPServer("test", "0.0.0", server.WithToolCapabilities(false))
	f.registry = registry.New(mcpServer, f.session, log.New(io.Discard))
	f.registry.Discover(Providers(Deps{Client: client, Defaults: defaults})...)

	return f
}

func (f *fixture) call(name string, args map[string]any) *mcp.CallToolResult {
	f.t.Helper()

	handler, ok := f.registry.Handler(name)
	if !ok {
		f.t.Fatalf("tool %s not registered", name)
	}

	var req mcp.CallToolRequest
	req.Params.Name = name
	if args != nil {
		req.Params.Arguments = args
	}

	result, err := handler(context.Background(), req)
	if err != nil {
		f.t.Fatalf("%s returned a protocol error: %v", name, err)
	}

	return result
}

func (f *fixture) login() {
	f.t.Helper()
	f.session.Set(f.host, "T")
}

func (f *fixture) hits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fixture) last() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func text(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	content, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		return ""
	}

	return content.Text
}

func code(result *mcp.CallToolResult) any {
	return result.Meta[tools.ErrorCodeKey]
}

func reply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func fail(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}
}
