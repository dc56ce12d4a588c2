// Package mcp exposes the running daemon's workspaces as MCP tools over
// stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wsbar/internal/ipc"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

const (
	ServerName    = "wsbar"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools call.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetWorkspaces() ([]workspaces.Workspace, error)
	ChangeWorkspace(id int) error
	ToggleSpecialWorkspace(id int) error
	Scroll(direction int) error
	GetTitle() (string, error)
}

// Server is the MCP server for workspace control.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates a server that forwards every tool call to daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the daemon's backend, monitors, running subscriptions and uptime.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_workspaces",
		Description: "List workspaces sorted by id. Special (scratchpad) workspaces have negative ids. Pass monitor to limit the list to one output.",
	}, s.handleListWorkspaces)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "change_workspace",
		Description: "Switch to the workspace with the given positive id. With virtual desktops enabled this switches the desktop on every monitor.",
	}, s.handleChangeWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_special_workspace",
		Description: "Show or hide the special workspace with the given negative id on its monitor.",
	}, s.handleToggleSpecialWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "scroll_workspaces",
		Description: "Move to the nearest workspace above (direction > 0) or below (direction < 0) the active one. Does nothing at either end.",
	}, s.handleScrollWorkspaces)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window_title",
		Description: "Return the focused window's title (or class, depending on config), already truncated for display.",
	}, s.handleGetWindowTitle)
}
