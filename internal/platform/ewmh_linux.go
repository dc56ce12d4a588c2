//go:build linux

package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/wsbar/internal/config"
	"github.com/1broseidon/wsbar/internal/subscription"
	"github.com/1broseidon/wsbar/internal/windowtitle"
	"github.com/1broseidon/wsbar/internal/workspaces"
	"github.com/1broseidon/wsbar/internal/x11"
)

// EWMH drives X11 window managers through the EWMH desktop hints.
type EWMH struct {
	conn   *x11.Connection
	logger *slog.Logger
}

var _ Backend = (*EWMH)(nil)

// NewEWMH opens the X11 connection used for queries and dispatches. Event
// sessions open their own connections.
func NewEWMH(logger *slog.Logger) (*EWMH, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &EWMH{conn: conn, logger: logger}, nil
}

func (e *EWMH) Name() string { return string(config.BackendEWMH) }

func (e *EWMH) Workspaces(cfg config.WorkspacesConfig) []workspaces.Workspace {
	return reconcileEWMH(e.snapshot(), cfg)
}

func (e *EWMH) snapshot() ewmhSnapshot {
	var s ewmhSnapshot
	count, err := e.conn.GetDesktopCount()
	if err != nil {
		e.logger.Debug("failed to query desktops", "error", err)
		return s
	}
	s.Count = count

	if current, err := e.conn.GetCurrentDesktop(); err == nil {
		s.Current, s.HasCurrent = current, true
	} else {
		e.logger.Debug("failed to query current desktop", "error", err)
	}
	if names, err := e.conn.GetDesktopNames(); err == nil {
		s.Names = names
	}
	if counts, err := e.conn.DesktopWindowCounts(); err == nil {
		s.Windows = counts
	} else {
		e.logger.Debug("failed to count windows", "error", err)
	}
	return s
}

func (e *EWMH) Subscription(cfg config.WorkspacesConfig) subscription.Subscription {
	return subscription.Subscription{
		ID: workspaces.SubscriptionID(e.Name(), cfg),
		Run: func(ctx context.Context, out *subscription.Output) {
			e.listen(ctx, out, ewmhWorkspaceAtoms, workspaces.WorkspacesChanged{})
		},
	}
}

func (e *EWMH) listen(ctx context.Context, out *subscription.Output, atoms []string, tick any) {
	listenForever(ctx, e.logger, out, tick, func(ctx context.Context) error {
		conn, err := x11.NewConnection()
		if err != nil {
			return fmt.Errorf("failed to connect to X11: %w", err)
		}
		if err := conn.WatchRootProperties(atoms, func(string) { out.TrySend(tick) }); err != nil {
			conn.Close()
			return err
		}
		return conn.Run(ctx)
	})
}

func (e *EWMH) ChangeWorkspace(id int, _ config.WorkspacesConfig) error {
	if id < 1 {
		return fmt.Errorf("invalid desktop id %d", id)
	}
	if err := e.conn.SetCurrentDesktop(id - 1); err != nil {
		return fmt.Errorf("failed to change desktop: %w", err)
	}
	return nil
}

// ToggleSpecialWorkspace is a no-op: EWMH has no special workspaces.
func (e *EWMH) ToggleSpecialWorkspace(workspaces.Workspace) error { return nil }

func (e *EWMH) ActiveWindow() (windowtitle.Window, bool) {
	win, err := e.conn.GetActiveWindow()
	if err != nil || win == 0 {
		return windowtitle.Window{}, false
	}
	return windowtitle.Window{
		Title: e.conn.WindowTitle(win),
		Class: e.conn.WindowClass(win),
	}, true
}

func (e *EWMH) TitleSubscription() subscription.Subscription {
	return subscription.Subscription{
		ID: "window_title/" + e.Name(),
		Run: func(ctx context.Context, out *subscription.Output) {
			e.listen(ctx, out, ewmhTitleAtoms, windowtitle.TitleChanged{})
		},
	}
}

func (e *EWMH) Monitors() []Monitor {
	monitors, err := e.conn.GetMonitors()
	if err != nil {
		e.logger.Debug("failed to query monitors", "error", err)
		return nil
	}
	active := e.conn.ActiveMonitorIndex(monitors)
	out := make([]Monitor, 0, len(monitors))
	for i, m := range monitors {
		out = append(out, Monitor{ID: m.ID, Name: m.Name, Focused: i == active})
	}
	return out
}

// Close disconnects from the X11 server.
func (e *EWMH) Close() {
	if e != nil && e.conn != nil {
		e.conn.Close()
	}
}
