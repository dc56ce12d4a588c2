package platform

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/1broseidon/wsbar/internal/config"
	"github.com/1broseidon/wsbar/internal/hyprland"
	"github.com/1broseidon/wsbar/internal/subscription"
	"github.com/1broseidon/wsbar/internal/windowtitle"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

// hyprlandClient is the subset of *hyprland.Client the backend uses.
type hyprlandClient interface {
	Workspaces() ([]hyprland.Workspace, error)
	Monitors() ([]hyprland.Monitor, error)
	ActiveWorkspace() (*hyprland.Workspace, error)
	ActiveWindow() (*hyprland.Window, error)
	Dispatch(d hyprland.Dispatch) error
	Subscribe(ctx context.Context, kinds []hyprland.EventKind, fn func(hyprland.Event)) error
}

// Hyprland is the full-featured backend.
type Hyprland struct {
	client hyprlandClient
	logger *slog.Logger
}

var _ Backend = (*Hyprland)(nil)

// NewHyprland connects to the instance named by HYPRLAND_INSTANCE_SIGNATURE.
func NewHyprland(logger *slog.Logger) (*Hyprland, error) {
	client, err := hyprland.NewClient()
	if err != nil {
		return nil, err
	}
	return newHyprland(client, logger), nil
}

func newHyprland(client hyprlandClient, logger *slog.Logger) *Hyprland {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hyprland{client: client, logger: logger}
}

func (h *Hyprland) Name() string { return string(config.BackendHyprland) }

// Workspaces fetches current state and reconciles it. Fetch failures are
// logged and treated as empty data.
func (h *Hyprland) Workspaces(cfg config.WorkspacesConfig) []workspaces.Workspace {
	active, err := h.client.ActiveWorkspace()
	if err != nil {
		h.logger.Debug("failed to query active workspace", "error", err)
		active = nil
	}
	monitors, err := h.client.Monitors()
	if err != nil {
		h.logger.Debug("failed to query monitors", "error", err)
		monitors = nil
	}
	raw, err := h.client.Workspaces()
	if err != nil {
		h.logger.Debug("failed to query workspaces", "error", err)
		raw = nil
	}
	return reconcileHyprland(active, monitors, raw, cfg)
}

// reconcileHyprland builds the normalized, sorted workspace list from one
// snapshot of Hyprland state.
func reconcileHyprland(active *hyprland.Workspace, monitors []hyprland.Monitor, raw []hyprland.Workspace, cfg config.WorkspacesConfig) []workspaces.Workspace {
	// Hyprland occasionally reports the same workspace twice.
	seen := make(map[int]struct{}, len(raw))
	var special, normal []hyprland.Workspace
	for _, w := range raw {
		if _, dup := seen[w.ID]; dup {
			continue
		}
		seen[w.ID] = struct{}{}
		if w.ID < 0 {
			special = append(special, w)
		} else {
			normal = append(normal, w)
		}
	}

	activeID, hasActive := 0, active != nil
	if hasActive {
		activeID = active.ID
	}

	out := make([]workspaces.Workspace, 0, len(special)+len(normal))
	for _, w := range special {
		displayed := workspaces.Hidden
		for _, m := range monitors {
			if m.SpecialWorkspace.ID == w.ID {
				displayed = workspaces.Active
				break
			}
		}
		out = append(out, workspaces.Workspace{
			ID:        w.ID,
			Name:      specialDisplayName(w.Name),
			MonitorID: copyInt(w.MonitorID),
			Monitor:   w.Monitor,
			Displayed: displayed,
			Windows:   w.Windows,
		})
	}

	if cfg.EnableVirtualDesktops {
		desktops := make(map[int]*workspaces.VirtualDesktop)
		for _, w := range normal {
			id := workspaces.VirtualDesktopID(w.ID, len(monitors))
			vd, ok := desktops[id]
			if !ok {
				vd = &workspaces.VirtualDesktop{}
				desktops[id] = vd
			}
			vd.Windows += w.Windows
			vd.Active = vd.Active || (hasActive && w.ID == activeID)
		}
		for id, vd := range desktops {
			displayed := workspaces.Hidden
			if vd.Active {
				displayed = workspaces.Active
			}
			out = append(out, workspaces.Workspace{
				ID:        id,
				Name:      workspaces.ResolveName(id, cfg.WorkspaceNames),
				Displayed: displayed,
				Windows:   vd.Windows,
			})
		}
	} else {
		perMonitor := make([]workspaces.Workspace, 0, len(normal))
		for _, w := range normal {
			displayed := workspaces.Hidden
			switch {
			case hasActive && w.ID == activeID:
				displayed = workspaces.Active
			case shownOnMonitor(monitors, w.ID):
				displayed = workspaces.Visible
			}
			perMonitor = append(perMonitor, workspaces.Workspace{
				ID:        w.ID,
				Name:      workspaces.ResolveName(w.ID, cfg.WorkspaceNames),
				MonitorID: copyInt(w.MonitorID),
				Monitor:   w.Monitor,
				Displayed: displayed,
				Windows:   w.Windows,
			})
		}
		if cfg.EnableWorkspaceFilling && len(perMonitor) > 0 {
			perMonitor = workspaces.FillMissing(perMonitor, cfg.MaxWorkspaces, cfg.WorkspaceNames)
		}
		out = append(out, perMonitor...)
	}

	workspaces.SortByID(out)
	return out
}

// specialDisplayName strips the "special:" style prefix.
func specialDisplayName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func shownOnMonitor(monitors []hyprland.Monitor, id int) bool {
	for _, m := range monitors {
		if m.ActiveWorkspace.ID == id {
			return true
		}
	}
	return false
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (h *Hyprland) Subscription(cfg config.WorkspacesConfig) subscription.Subscription {
	return subscription.Subscription{
		ID: workspaces.SubscriptionID(h.Name(), cfg),
		Run: func(ctx context.Context, out *subscription.Output) {
			h.listen(ctx, out, hyprland.WorkspaceEvents, workspaces.WorkspacesChanged{})
		},
	}
}

func (h *Hyprland) listen(ctx context.Context, out *subscription.Output, kinds []hyprland.EventKind, tick any) {
	listenForever(ctx, h.logger, out, tick, func(ctx context.Context) error {
		return h.client.Subscribe(ctx, kinds, func(hyprland.Event) {
			out.TrySend(tick)
		})
	})
}

// ChangeWorkspace switches workspace, or virtual desktop when enabled.
func (h *Hyprland) ChangeWorkspace(id int, cfg config.WorkspacesConfig) error {
	d := hyprland.WorkspaceByID(id)
	if cfg.EnableVirtualDesktops {
		d = hyprland.Custom("vdesk", strconv.Itoa(id))
	}
	if err := h.client.Dispatch(d); err != nil {
		return fmt.Errorf("failed to change workspace: %w", err)
	}
	return nil
}

// ToggleSpecialWorkspace focuses the owning monitor, then toggles ws.
func (h *Hyprland) ToggleSpecialWorkspace(ws workspaces.Workspace) error {
	monitor := 0
	if ws.MonitorID != nil {
		monitor = *ws.MonitorID
	}
	if err := h.client.Dispatch(hyprland.FocusMonitorByID(monitor)); err != nil {
		return fmt.Errorf("failed to focus monitor %d: %w", monitor, err)
	}
	if err := h.client.Dispatch(hyprland.ToggleSpecialWorkspace(ws.Name)); err != nil {
		return fmt.Errorf("failed to toggle special workspace %q: %w", ws.Name, err)
	}
	return nil
}

func (h *Hyprland) ActiveWindow() (windowtitle.Window, bool) {
	win, err := h.client.ActiveWindow()
	if err != nil {
		h.logger.Debug("failed to query active window", "error", err)
		return windowtitle.Window{}, false
	}
	if win == nil {
		return windowtitle.Window{}, false
	}
	return windowtitle.Window{Title: win.Title, Class: win.Class}, true
}

func (h *Hyprland) TitleSubscription() subscription.Subscription {
	// An empty workspace has no active window, so switching to one must
	// refresh the title too.
	kinds := []hyprland.EventKind{hyprland.EventActiveWindowChanged, hyprland.EventWindowClosed, hyprland.EventWorkspaceChanged}
	return subscription.Subscription{
		ID: "window_title/" + h.Name(),
		Run: func(ctx context.Context, out *subscription.Output) {
			h.listen(ctx, out, kinds, windowtitle.TitleChanged{})
		},
	}
}

func (h *Hyprland) Monitors() []Monitor {
	monitors, err := h.client.Monitors()
	if err != nil {
		h.logger.Debug("failed to query monitors", "error", err)
		return nil
	}
	out := make([]Monitor, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, Monitor{ID: m.ID, Name: m.Name, Focused: m.Focused})
	}
	return out
}

func (h *Hyprland) Close() {}
