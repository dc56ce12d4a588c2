package workspaces

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/wsbar/internal/config"
	"github.com/1broseidon/wsbar/internal/metrics"
	"github.com/1broseidon/wsbar/internal/subscription"
)

// Manager is implemented by each window-manager backend.
//
// Workspaces never fails: query errors yield an empty or partial list.
type Manager interface {
	Name() string
	Workspaces(cfg config.WorkspacesConfig) []Workspace
	Subscription(cfg config.WorkspacesConfig) subscription.Subscription
	ChangeWorkspace(id int, cfg config.WorkspacesConfig) error
	ToggleSpecialWorkspace(ws Workspace) error
}

// SubscriptionID builds the identity key for a backend's workspace
// subscription. It changes whenever a flag that alters valid commands changes.
func SubscriptionID(backend string, cfg config.WorkspacesConfig) string {
	return fmt.Sprintf("workspaces/%s?filling=%t&vdesk=%t",
		backend, cfg.EnableWorkspaceFilling, cfg.EnableVirtualDesktops)
}

// Controller owns the current workspace list. It is not safe for concurrent
// use; a single goroutine drives Update.
type Controller struct {
	cfg     config.WorkspacesConfig
	wm      Manager
	logger  *slog.Logger
	metrics *metrics.Metrics

	workspaces []Workspace
}

// NewController queries the backend once so the list is populated immediately.
func NewController(cfg config.WorkspacesConfig, wm Manager, logger *slog.Logger, m *metrics.Metrics) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		cfg:     cfg.Clone(),
		wm:      wm,
		logger:  logger,
		metrics: m,
	}
	c.reconcile()
	return c
}

// Update applies one message.
func (c *Controller) Update(msg Message) {
	switch msg := msg.(type) {
	case WorkspacesChanged:
		c.reconcile()

	case ChangeWorkspace:
		if msg.ID <= 0 {
			return
		}
		if ws, ok := Find(c.workspaces, msg.ID); ok && ws.Displayed == Active {
			return
		}
		if err := c.wm.ChangeWorkspace(msg.ID, c.cfg); err != nil {
			c.metrics.DispatchFailed("change_workspace")
			c.logger.Error("failed to change workspace", "id", msg.ID, "backend", c.wm.Name(), "error", err)
		}

	case ToggleSpecialWorkspace:
		ws, ok := Find(c.workspaces, msg.ID)
		if !ok || !ws.IsSpecial() {
			return
		}
		if err := c.wm.ToggleSpecialWorkspace(ws); err != nil {
			c.metrics.DispatchFailed("toggle_special_workspace")
			c.logger.Error("failed to toggle special workspace", "id", ws.ID, "name", ws.Name, "error", err)
		}

	case Scroll:
		if next, ok := c.scrollTarget(msg.Direction); ok {
			c.Update(ChangeWorkspace{ID: next})
		}
	}
}

func (c *Controller) scrollTarget(direction int) (int, bool) {
	if direction == 0 {
		return 0, false
	}
	active, ok := FindActive(c.workspaces)
	if !ok {
		return 0, false
	}

	found := false
	best := 0
	for _, w := range c.workspaces {
		switch {
		case direction > 0 && w.ID > active.ID:
			if !found || w.ID < best {
				best, found = w.ID, true
			}
		case direction < 0 && w.ID < active.ID:
			if !found || w.ID > best {
				best, found = w.ID, true
			}
		}
	}
	return best, found
}

func (c *Controller) reconcile() {
	c.workspaces = c.wm.Workspaces(c.cfg)
	c.metrics.ObserveReconcile(c.wm.Name(), len(c.workspaces))
}

// Workspaces returns a copy of the current list.
func (c *Controller) Workspaces() []Workspace {
	return Clone(c.workspaces)
}

// Config returns the configuration the controller was built with.
func (c *Controller) Config() config.WorkspacesConfig {
	return c.cfg.Clone()
}

// Backend returns the backend name.
func (c *Controller) Backend() string {
	return c.wm.Name()
}

// Subscription returns the backend's change subscription for this config.
func (c *Controller) Subscription() subscription.Subscription {
	return c.wm.Subscription(c.cfg)
}
