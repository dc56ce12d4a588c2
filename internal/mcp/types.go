package mcp

import (
	"github.com/1broseidon/wsbar/internal/ipc"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

type GetStatusInput struct{}

type GetStatusOutput struct {
	Status ipc.StatusData `json:"status"`
}

// ListWorkspacesInput is the input for the list_workspaces tool.
type ListWorkspacesInput struct {
	Monitor string `json:"monitor,omitempty" jsonschema:"Only return workspaces on this output (e.g. DP-1)"`
}

// WorkspaceInfo describes a single workspace.
type WorkspaceInfo struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Monitor   string `json:"monitor"`
	MonitorID *int   `json:"monitor_id,omitempty"`
	Displayed string `json:"displayed" jsonschema:"active, visible or hidden"`
	Windows   uint   `json:"windows"`
	Special   bool   `json:"special"`
}

func workspaceInfo(w workspaces.Workspace) WorkspaceInfo {
	return WorkspaceInfo{
		ID:        w.ID,
		Name:      w.Name,
		Monitor:   w.Monitor,
		MonitorID: w.MonitorID,
		Displayed: w.Displayed.String(),
		Windows:   w.Windows,
		Special:   w.IsSpecial(),
	}
}

// ListWorkspacesOutput is the output for the list_workspaces tool.
type ListWorkspacesOutput struct {
	Workspaces []WorkspaceInfo `json:"workspaces"`
	Active     *int            `json:"active,omitempty"`
}

// WorkspaceInput identifies one workspace.
type WorkspaceInput struct {
	ID int `json:"id" jsonschema:"Workspace id as reported by list_workspaces"`
}

// ScrollInput is the input for the scroll_workspaces tool.
type ScrollInput struct {
	Direction int `json:"direction" jsonschema:"Positive for the next workspace, negative for the previous one"`
}

// ActionOutput is returned by tools that only dispatch.
type ActionOutput struct {
	OK bool `json:"ok"`
}

type GetWindowTitleInput struct{}

type GetWindowTitleOutput struct {
	Title string `json:"title"`
}
