package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wsbar/internal/config"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{Status: *status}, nil
}

func (s *Server) handleListWorkspaces(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWorkspacesInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	list, err := s.daemon.GetWorkspaces()
	if err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	if args.Monitor != "" {
		list = workspaces.ForMonitor(list, config.VisibilityMonitorSpecificExclusive, args.Monitor, nil)
	}

	out := ListWorkspacesOutput{Workspaces: make([]WorkspaceInfo, 0, len(list))}
	for _, w := range list {
		out.Workspaces = append(out.Workspaces, workspaceInfo(w))
	}
	if active, ok := workspaces.FindActive(list); ok {
		id := active.ID
		out.Active = &id
	}
	return nil, out, nil
}

func (s *Server) handleChangeWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args WorkspaceInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if args.ID <= 0 {
		return nil, ActionOutput{}, fmt.Errorf("workspace id must be positive, got %d (use toggle_special_workspace for special workspaces)", args.ID)
	}
	if err := s.daemon.ChangeWorkspace(args.ID); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true}, nil
}

func (s *Server) handleToggleSpecialWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args WorkspaceInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if args.ID >= 0 {
		return nil, ActionOutput{}, fmt.Errorf("special workspace ids are negative, got %d", args.ID)
	}
	if err := s.daemon.ToggleSpecialWorkspace(args.ID); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true}, nil
}

func (s *Server) handleScrollWorkspaces(_ context.Context, _ *mcpsdk.CallToolRequest, args ScrollInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if args.Direction == 0 {
		return nil, ActionOutput{}, fmt.Errorf("direction must be non-zero")
	}
	if err := s.daemon.Scroll(args.Direction); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true}, nil
}

func (s *Server) handleGetWindowTitle(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetWindowTitleInput) (*mcpsdk.CallToolResult, GetWindowTitleOutput, error) {
	title, err := s.daemon.GetTitle()
	if err != nil {
		return nil, GetWindowTitleOutput{}, err
	}
	return nil, GetWindowTitleOutput{Title: title}, nil
}
