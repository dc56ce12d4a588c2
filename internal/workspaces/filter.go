package workspaces

import (
	"slices"
	"strings"

	"github.com/1broseidon/wsbar/internal/config"
)

// ForMonitor returns the workspaces a bar on monitor should show.
//
// An empty monitor means the bar's output is unknown and every workspace is
// shown. In monitor_specific mode, workspaces on outputs missing from known
// are also shown so they never disappear from every bar.
func ForMonitor(list []Workspace, mode config.VisibilityMode, monitor string, known []string) []Workspace {
	out := make([]Workspace, 0, len(list))
	for _, w := range list {
		if showOnMonitor(w, mode, monitor, known) {
			out = append(out, w)
		}
	}
	return out
}

func showOnMonitor(w Workspace, mode config.VisibilityMode, monitor string, known []string) bool {
	if monitor == "" {
		return true
	}
	switch mode {
	case config.VisibilityMonitorSpecific:
		return strings.Contains(monitor, w.Monitor) || !slices.Contains(known, w.Monitor)
	case config.VisibilityMonitorSpecificExclusive:
		return strings.Contains(monitor, w.Monitor)
	default:
		return true
	}
}
