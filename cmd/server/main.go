// Command server is the main entry point for the VBR MCP bridge
package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/middleware"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/registry"
	"github.com/theapemachine/mcp-server-vbr-bridge/core/session"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/config"
	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/telemetry"
	vbrtools "github.com/theapemachine/mcp-server-vbr-bridge/pkg/tools/vbr"
	vbrapi "github.com/theapemachine/mcp-server-vbr-bridge/pkg/vbr"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	// stdout carries the protocol
	logger := newLogger(os.Stderr, cfg)
	log.SetDefault(logger)
	logger.Info("Starting VBR MCP bridge...", "version", version)

	if err := cfg.Validate(); err != nil {
		logger.Warn("Configuration warning", "error", err)
	}

	ctx := context.Background()

	provider, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.Endpoint,
	})
	if err != nil {
		logger.Fatal("Telemetry setup failed", "error", err)
	}

	client := vbrapi.New(vbrapi.Options{
		Port:               cfg.VBR.Port,
		APIVersion:         cfg.VBR.APIVersion,
		InsecureSkipVerify: cfg.VBR.InsecureSkipVerify,
		Timeout:            cfg.VBR.RequestTimeout,
	})

	if cfg.VBR.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled for VBR requests")
	}

	mcpServer := server.NewMCPServer(
		"VBR MCP Bridge",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	tools := registry.New(mcpServer, session.New(), logger,
		middleware.Logging(logger),
		middleware.Telemetry(provider.Observer),
		middleware.Recovery(logger),
	)

	count := tools.Discover(vbrtools.Providers(vbrtools.Deps{
		Client: client,
		Defaults: vbrtools.Defaults{
			Host:     cfg.VBR.Host,
			Username: cfg.VBR.Username,
			Password: cfg.VBR.Password,
		},
	})...)

	logger.Info("Server started, waiting for requests...", "count", count, "tools", tools.Names())

	err = server.ServeStdio(mcpServer, server.WithErrorLogger(logger.StandardLog()))
	shutdown(provider, logger)

	if err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server shutdown complete")
}

func newLogger(w io.Writer, cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "vbr-mcp",
		ReportTimestamp: true,
	})

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", cfg.Log.Level)
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Log.Format == "json" {
		logger.SetFormatter(log.JSONFormatter)
	}

	return logger
}

func shutdown(provider *telemetry.Provider, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := provider.Shutdown(ctx); err != nil {
		logger.Warn("Telemetry shutdown failed", "error", err)
	}
}
