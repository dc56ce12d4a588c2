package platform

import (
	"strconv"

	"github.com/1broseidon/wsbar/internal/config"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

// Root window properties whose changes affect the desktop list.
var ewmhWorkspaceAtoms = []string{
	"_NET_CURRENT_DESKTOP",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_DESKTOP_NAMES",
	"_NET_CLIENT_LIST",
}

var ewmhTitleAtoms = []string{"_NET_ACTIVE_WINDOW"}

// ewmhSnapshot is one read of the EWMH desktop hints.
type ewmhSnapshot struct {
	Count      int
	Current    int
	HasCurrent bool
	Names      []string     // _NET_DESKTOP_NAMES, index = desktop
	Windows    map[int]uint // desktop index -> window count
}

// reconcileEWMH maps desktops onto workspaces with id = index + 1. EWMH
// desktops already span all monitors, so virtual desktop mode is a no-op.
func reconcileEWMH(s ewmhSnapshot, cfg config.WorkspacesConfig) []workspaces.Workspace {
	out := make([]workspaces.Workspace, 0, s.Count)
	for i := 0; i < s.Count; i++ {
		id := i + 1
		displayed := workspaces.Hidden
		if s.HasCurrent && i == s.Current {
			displayed = workspaces.Active
		}
		out = append(out, workspaces.Workspace{
			ID:        id,
			Name:      ewmhDesktopName(id, cfg.WorkspaceNames, s.Names),
			Displayed: displayed,
			Windows:   s.Windows[i],
		})
	}
	if cfg.EnableWorkspaceFilling && len(out) > 0 {
		out = workspaces.FillMissing(out, cfg.MaxWorkspaces, cfg.WorkspaceNames)
	}
	workspaces.SortByID(out)
	return out
}

// ewmhDesktopName prefers the configured name, then the window manager's.
func ewmhDesktopName(id int, configured, published []string) string {
	if id <= len(configured) && configured[id-1] != "" {
		return configured[id-1]
	}
	if id <= len(published) && published[id-1] != "" {
		return published[id-1]
	}
	return strconv.Itoa(id)
}
