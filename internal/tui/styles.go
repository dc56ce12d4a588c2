package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/wsbar/internal/workspaces"
)

// Per-monitor accents, indexed by monitor id (or workspace id with
// virtual desktops).
var workspaceColors = []lipgloss.Color{"62", "36", "172", "168", "71", "99"}

var specialColor = lipgloss.Color("133")

var (
	buttonStyle = lipgloss.NewStyle().Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	gap = lipgloss.NewStyle().SetString(" ")
)

func accent(w workspaces.Workspace, virtualDesktops bool) lipgloss.Color {
	if w.IsSpecial() {
		return specialColor
	}
	index := -1
	if virtualDesktops {
		index = w.ID - 1
	} else if w.MonitorID != nil {
		index = *w.MonitorID
	}
	if index < 0 {
		return workspaceColors[0]
	}
	return workspaceColors[index%len(workspaceColors)]
}

// buttonFor styles one workspace button. Active buttons are filled, visible
// ones underlined, and empty ones faint.
func buttonFor(w workspaces.Workspace, virtualDesktops bool) lipgloss.Style {
	color := accent(w, virtualDesktops)
	style := buttonStyle
	switch w.Displayed {
	case workspaces.Active:
		style = style.Bold(true).Foreground(lipgloss.Color("15")).Background(color)
	case workspaces.Visible:
		style = style.Foreground(color).Underline(true)
	default:
		style = style.Foreground(color)
	}
	if w.Windows == 0 && w.Displayed == workspaces.Hidden {
		style = style.Faint(true)
	}
	if w.IsSpecial() {
		style = style.Italic(true)
	}
	return style
}
