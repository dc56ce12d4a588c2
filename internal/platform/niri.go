package platform

import (
	"log/slog"

	"github.com/1broseidon/wsbar/internal/config"
	"github.com/1broseidon/wsbar/internal/subscription"
	"github.com/1broseidon/wsbar/internal/windowtitle"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

// Niri is the degraded backend: workspace introspection is unsupported, so
// it reports nothing and accepts every command as a no-op.
type Niri struct {
	logger *slog.Logger
}

var _ Backend = (*Niri)(nil)

func NewNiri(logger *slog.Logger) *Niri {
	if logger == nil {
		logger = slog.Default()
	}
	return &Niri{logger: logger}
}

func (n *Niri) Name() string { return string(config.BackendNiri) }

func (n *Niri) Workspaces(config.WorkspacesConfig) []workspaces.Workspace {
	return []workspaces.Workspace{}
}

func (n *Niri) Subscription(cfg config.WorkspacesConfig) subscription.Subscription {
	return subscription.Subscription{ID: workspaces.SubscriptionID(n.Name(), cfg), Run: park}
}

func (n *Niri) ChangeWorkspace(int, config.WorkspacesConfig) error { return nil }

func (n *Niri) ToggleSpecialWorkspace(workspaces.Workspace) error { return nil }

func (n *Niri) ActiveWindow() (windowtitle.Window, bool) { return windowtitle.Window{}, false }

func (n *Niri) TitleSubscription() subscription.Subscription {
	return subscription.Subscription{ID: "window_title/" + n.Name(), Run: park}
}

func (n *Niri) Monitors() []Monitor { return nil }

func (n *Niri) Close() {}
