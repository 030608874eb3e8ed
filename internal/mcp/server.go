// Package mcp provides the Model Context Protocol (MCP) server implementation.
//
// This package exposes the debugging capabilities through MCP tools that can
// be used by AI assistants and other MCP clients:
//
// Session Management:
//   - attach: Attach to a browser tab or script runtime by host:port
//   - list_sessions: List active sessions
//   - select_session: Make a session the active default
//   - close_session: Close a session
//
// Breakpoints:
//   - set_breakpoint: Place a plain breakpoint (optionally conditional)
//   - set_logpoint: Place a logpoint with a message template and execution ceiling
//   - remove_breakpoint: Remove a breakpoint or logpoint
//   - list_breakpoints: List placed breakpoints
//   - reset_logpoint_counter: Re-arm a logpoint after a limit breach
//
// Execution & Inspection:
//   - pause, resume, step: Execution control
//   - get_call_stack, get_variables, evaluate, read_source: Paused-state inspection
//
// Tools that take a session accept a reference or id; when omitted they
// target the active session. Coordinates are 1-based on this boundary.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/inspectd/cdp-mcp/internal/cdp"
	"github.com/inspectd/cdp-mcp/internal/config"
	"github.com/inspectd/cdp-mcp/internal/debug"
	"github.com/inspectd/cdp-mcp/internal/registry"
	"github.com/inspectd/cdp-mcp/internal/version"
	"github.com/inspectd/cdp-mcp/pkg/types"
)

// Server wraps the MCP server with debugging capabilities
type Server struct {
	mcpServer *server.MCPServer
	registry  *registry.Registry
	config    *config.Config
}

// NewServer creates a new CDP-MCP server
func NewServer(cfg *config.Config) *Server {
	mcpServer := server.NewMCPServer(
		"cdp-mcp",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	reg := registry.New(cfg, func(ctx context.Context, host string, port, pageIndex int) (*debug.Session, types.RuntimeKind, error) {
		client, err := cdp.Connect(ctx, host, port, pageIndex)
		if err != nil {
			return nil, types.RuntimeKindUnknown, err
		}
		return debug.NewSession(client, nil, cfg), client.Kind(), nil
	})

	s := &Server{
		mcpServer: mcpServer,
		registry:  reg,
		config:    cfg,
	}

	s.registerTools()

	return s
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// Close shuts down the server and every session
func (s *Server) Close() {
	s.registry.Shutdown()
}

// Registry returns the session registry
func (s *Server) Registry() *registry.Registry {
	return s.registry
}
