package config

import (
	"fmt"
	"strings"
	"time"
)

// Backend selects which window-manager integration drives the bar.
type Backend string

const (
	BackendAuto     Backend = "auto"     // Detect from the session environment.
	BackendHyprland Backend = "hyprland" // Full-featured Hyprland IPC.
	BackendNiri     Backend = "niri"     // Placeholder without workspace introspection.
	BackendEWMH     Backend = "ewmh"     // X11 desktops via EWMH hints.
)

// VisibilityMode controls which workspaces a per-monitor bar shows.
type VisibilityMode string

const (
	VisibilityAll                      VisibilityMode = "all"
	VisibilityMonitorSpecific          VisibilityMode = "monitor_specific"
	VisibilityMonitorSpecificExclusive VisibilityMode = "monitor_specific_exclusive"
)

// WindowTitleMode selects which window property the title module shows.
type WindowTitleMode string

const (
	WindowTitleModeTitle WindowTitleMode = "title"
	WindowTitleModeClass WindowTitleMode = "class"
)

const (
	DefaultTruncateTitleAfterLength = 150
	DefaultLogLevel                 = "info"

	// MaxWorkspacesLimit bounds max_workspaces so filling stays cheap.
	MaxWorkspacesLimit = 1000
)

// WorkspacesConfig configures the workspaces module.
type WorkspacesConfig struct {
	VisibilityMode         VisibilityMode `yaml:"visibility_mode"`
	EnableWorkspaceFilling bool           `yaml:"enable_workspace_filling"`
	EnableVirtualDesktops  bool           `yaml:"enable_virtual_desktops"`
	// MaxWorkspaces extends workspace filling up to this id. nil = only up to
	// the highest existing workspace.
	MaxWorkspaces *uint `yaml:"max_workspaces,omitempty"`
	// WorkspaceNames overrides labels; index = workspace id - 1.
	WorkspaceNames []string `yaml:"workspace_names,omitempty"`
}

// WindowTitleConfig configures the window title module.
type WindowTitleConfig struct {
	Mode WindowTitleMode `yaml:"mode"`
	// TruncateTitleAfterLength limits the displayed width. 0 = unlimited.
	TruncateTitleAfterLength int `yaml:"truncate_title_after_length"`
}

// Config is the effective configuration used by the daemon and CLI.
type Config struct {
	Backend        Backend           `yaml:"backend"`
	LogLevel       string            `yaml:"log_level"`
	PollInterval   time.Duration     `yaml:"poll_interval"`
	MetricsAddress string            `yaml:"metrics_address,omitempty"`
	Workspaces     WorkspacesConfig  `yaml:"workspaces"`
	WindowTitle    WindowTitleConfig `yaml:"window_title"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Backend:      BackendAuto,
		LogLevel:     DefaultLogLevel,
		PollInterval: 0,
		Workspaces: WorkspacesConfig{
			VisibilityMode: VisibilityAll,
		},
		WindowTitle: WindowTitleConfig{
			Mode:                     WindowTitleModeTitle,
			TruncateTitleAfterLength: DefaultTruncateTitleAfterLength,
		},
	}
}

// Validate checks that enum fields hold known values and numbers are in range.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendHyprland, BackendNiri, BackendEWMH:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("%w %q (expected auto, hyprland, niri or ewmh)", ErrUnknownBackend, c.Backend)}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("unknown level %q (expected debug, info, warn or error)", c.LogLevel)}
	}

	if c.PollInterval < 0 {
		return &ValidationError{Path: "poll_interval", Err: fmt.Errorf("must be >= 0")}
	}

	switch c.Workspaces.VisibilityMode {
	case VisibilityAll, VisibilityMonitorSpecific, VisibilityMonitorSpecificExclusive:
	default:
		return &ValidationError{Path: "workspaces.visibility_mode", Err: fmt.Errorf("unknown mode %q", c.Workspaces.VisibilityMode)}
	}

	if m := c.Workspaces.MaxWorkspaces; m != nil && *m > MaxWorkspacesLimit {
		return &ValidationError{Path: "workspaces.max_workspaces", Err: fmt.Errorf("must be <= %d, got %d", MaxWorkspacesLimit, *m)}
	}

	switch c.WindowTitle.Mode {
	case WindowTitleModeTitle, WindowTitleModeClass:
	default:
		return &ValidationError{Path: "window_title.mode", Err: fmt.Errorf("unknown mode %q (expected title or class)", c.WindowTitle.Mode)}
	}
	if c.WindowTitle.TruncateTitleAfterLength < 0 {
		return &ValidationError{Path: "window_title.truncate_title_after_length", Err: fmt.Errorf("must be >= 0")}
	}

	return nil
}

// Clone returns a deep copy so callers can hold a config immutable for the
// lifetime of a controller.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.Workspaces = c.Workspaces.Clone()
	return &out
}

// Clone returns a deep copy of the workspaces section.
func (w WorkspacesConfig) Clone() WorkspacesConfig {
	out := w
	if w.MaxWorkspaces != nil {
		v := *w.MaxWorkspaces
		out.MaxWorkspaces = &v
	}
	if w.WorkspaceNames != nil {
		out.WorkspaceNames = append([]string(nil), w.WorkspaceNames...)
	}
	return out
}
