// Package workspaces holds the normalized workspace model shared by every
// backend and the controller that keeps it current.
package workspaces

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/1broseidon/wsbar/internal/config"
)

// Displayed is how a workspace is currently shown.
type Displayed int

const (
	Hidden Displayed = iota
	Visible
	Active
)

func (d Displayed) String() string {
	switch d {
	case Active:
		return "active"
	case Visible:
		return "visible"
	default:
		return "hidden"
	}
}

func (d Displayed) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Displayed) UnmarshalText(text []byte) error {
	switch string(text) {
	case "active":
		*d = Active
	case "visible":
		*d = Visible
	case "hidden", "":
		*d = Hidden
	default:
		return fmt.Errorf("invalid displayed state %q", string(text))
	}
	return nil
}

// Workspace is one addressable workspace slot. Negative IDs are special
// (scratchpad) workspaces.
type Workspace struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	MonitorID *int      `json:"monitor_id,omitempty"`
	Monitor   string    `json:"monitor"`
	Displayed Displayed `json:"displayed"`
	Windows   uint      `json:"windows"`
}

// IsSpecial reports whether w is a special workspace.
func (w Workspace) IsSpecial() bool { return w.ID < 0 }

// VirtualDesktop aggregates per-monitor workspaces during one reconciliation.
type VirtualDesktop struct {
	Active  bool
	Windows uint
}

// ResolveName returns names[id-1] when configured, otherwise the decimal id.
// A configured empty string is used as is.
func ResolveName(id int, names []string) string {
	if id > 0 && id <= len(names) {
		return names[id-1]
	}
	return strconv.Itoa(id)
}

// VirtualDesktopID maps a per-monitor workspace id onto its virtual desktop.
// A monitor count below one is treated as one.
func VirtualDesktopID(id, monitorCount int) int {
	if monitorCount < 1 {
		monitorCount = 1
	}
	return (id-1)/monitorCount + 1
}

// SortByID sorts list ascending by ID in place.
func SortByID(list []Workspace) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}

// FillMissing appends hidden, windowless placeholders for every positive id
// up to the larger of the highest existing id and maxWorkspaces. The
// configured bound is clamped to config.MaxWorkspacesLimit.
func FillMissing(list []Workspace, maxWorkspaces *uint, names []string) []Workspace {
	present := make(map[int]struct{}, len(list))
	maxID := 0
	for _, w := range list {
		if w.ID <= 0 {
			continue
		}
		present[w.ID] = struct{}{}
		if w.ID > maxID {
			maxID = w.ID
		}
	}
	if maxWorkspaces != nil {
		limit := min(*maxWorkspaces, config.MaxWorkspacesLimit)
		if int(limit) > maxID {
			maxID = int(limit)
		}
	}

	for id := 1; id <= maxID; id++ {
		if _, ok := present[id]; ok {
			continue
		}
		list = append(list, Workspace{
			ID:        id,
			Name:      ResolveName(id, names),
			Displayed: Hidden,
		})
	}
	return list
}

// Clone returns a deep copy of list.
func Clone(list []Workspace) []Workspace {
	if list == nil {
		return nil
	}
	out := make([]Workspace, len(list))
	for i, w := range list {
		if w.MonitorID != nil {
			id := *w.MonitorID
			w.MonitorID = &id
		}
		out[i] = w
	}
	return out
}

// Find returns the workspace with the given id.
func Find(list []Workspace, id int) (Workspace, bool) {
	for _, w := range list {
		if w.ID == id {
			return w, true
		}
	}
	return Workspace{}, false
}

// FindActive returns the active workspace, preferring a normal one over an
// active special overlay. Scrolling and pickers step from the workspace
// underneath an open special workspace, so the special one is only a fallback.
func FindActive(list []Workspace) (Workspace, bool) {
	var special *Workspace
	for i := range list {
		if list[i].Displayed != Active {
			continue
		}
		if !list[i].IsSpecial() {
			return list[i], true
		}
		if special == nil {
			special = &list[i]
		}
	}
	if special != nil {
		return *special, true
	}
	return Workspace{}, false
}
