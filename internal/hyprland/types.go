package hyprland

// WorkspaceRef is the short workspace reference embedded in monitors and
// windows.
type WorkspaceRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Workspace is one entry of `j/workspaces` or `j/activeworkspace`.
type Workspace struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Monitor         string `json:"monitor"`
	MonitorID       *int   `json:"monitorID"`
	Windows         uint   `json:"windows"`
	HasFullscreen   bool   `json:"hasfullscreen"`
	LastWindow      string `json:"lastwindow"`
	LastWindowTitle string `json:"lastwindowtitle"`
}

// Monitor is one entry of `j/monitors`.
type Monitor struct {
	ID               int          `json:"id"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	Width            int          `json:"width"`
	Height           int          `json:"height"`
	X                int          `json:"x"`
	Y                int          `json:"y"`
	ActiveWorkspace  WorkspaceRef `json:"activeWorkspace"`
	SpecialWorkspace WorkspaceRef `json:"specialWorkspace"`
	Focused          bool         `json:"focused"`
}

// Window is the reply of `j/activewindow`.
type Window struct {
	Address   string       `json:"address"`
	Class     string       `json:"class"`
	Title     string       `json:"title"`
	Workspace WorkspaceRef `json:"workspace"`
	Monitor   int          `json:"monitor"`
	PID       int          `json:"pid"`
}
