package config

import "time"

type RawWorkspacesConfig struct {
	VisibilityMode         *VisibilityMode `yaml:"visibility_mode"`
	EnableWorkspaceFilling *bool           `yaml:"enable_workspace_filling"`
	EnableVirtualDesktops  *bool           `yaml:"enable_virtual_desktops"`
	MaxWorkspaces          *uint           `yaml:"max_workspaces"`
	WorkspaceNames         []string        `yaml:"workspace_names"`
}

type RawWindowTitleConfig struct {
	Mode                     *WindowTitleMode `yaml:"mode"`
	TruncateTitleAfterLength *int             `yaml:"truncate_title_after_length"`
}

// RawConfig mirrors Config with optional fields so that files and
// environment overrides only replace what they set.
type RawConfig struct {
	Backend        *Backend              `yaml:"backend"`
	LogLevel       *string               `yaml:"log_level"`
	PollInterval   *time.Duration        `yaml:"poll_interval"`
	MetricsAddress *string               `yaml:"metrics_address"`
	Workspaces     *RawWorkspacesConfig  `yaml:"workspaces"`
	WindowTitle    *RawWindowTitleConfig `yaml:"window_title"`
}

// RawEnv is filled from WSBAR_* variables by envconfig.
type RawEnv struct {
	Backend                  *Backend         `envconfig:"BACKEND"`
	LogLevel                 *string          `envconfig:"LOG_LEVEL"`
	PollInterval             *time.Duration   `envconfig:"POLL_INTERVAL"`
	MetricsAddress           *string          `envconfig:"METRICS_ADDRESS"`
	VisibilityMode           *VisibilityMode  `envconfig:"VISIBILITY_MODE"`
	EnableWorkspaceFilling   *bool            `envconfig:"ENABLE_WORKSPACE_FILLING"`
	EnableVirtualDesktops    *bool            `envconfig:"ENABLE_VIRTUAL_DESKTOPS"`
	MaxWorkspaces            *uint            `envconfig:"MAX_WORKSPACES"`
	WorkspaceNames           []string         `envconfig:"WORKSPACE_NAMES"`
	WindowTitleMode          *WindowTitleMode `envconfig:"WINDOW_TITLE_MODE"`
	TruncateTitleAfterLength *int             `envconfig:"TRUNCATE_TITLE_AFTER_LENGTH"`
}

// toRaw maps the flat environment overrides onto the nested file shape.
func (e RawEnv) toRaw() RawConfig {
	raw := RawConfig{
		Backend:        e.Backend,
		LogLevel:       e.LogLevel,
		PollInterval:   e.PollInterval,
		MetricsAddress: e.MetricsAddress,
	}
	if e.VisibilityMode != nil || e.EnableWorkspaceFilling != nil || e.EnableVirtualDesktops != nil ||
		e.MaxWorkspaces != nil || e.WorkspaceNames != nil {
		raw.Workspaces = &RawWorkspacesConfig{
			VisibilityMode:         e.VisibilityMode,
			EnableWorkspaceFilling: e.EnableWorkspaceFilling,
			EnableVirtualDesktops:  e.EnableVirtualDesktops,
			MaxWorkspaces:          e.MaxWorkspaces,
			WorkspaceNames:         e.WorkspaceNames,
		}
	}
	if e.WindowTitleMode != nil || e.TruncateTitleAfterLength != nil {
		raw.WindowTitle = &RawWindowTitleConfig{
			Mode:                     e.WindowTitleMode,
			TruncateTitleAfterLength: e.TruncateTitleAfterLength,
		}
	}
	return raw
}

// envSourcePaths lists the YAML paths an environment override touched.
func (e RawEnv) envSourcePaths() map[string]string {
	out := make(map[string]string)
	add := func(set bool, path, name string) {
		if set {
			out[path] = name
		}
	}
	add(e.Backend != nil, "backend", "WSBAR_BACKEND")
	add(e.LogLevel != nil, "log_level", "WSBAR_LOG_LEVEL")
	add(e.PollInterval != nil, "poll_interval", "WSBAR_POLL_INTERVAL")
	add(e.MetricsAddress != nil, "metrics_address", "WSBAR_METRICS_ADDRESS")
	add(e.VisibilityMode != nil, "workspaces.visibility_mode", "WSBAR_VISIBILITY_MODE")
	add(e.EnableWorkspaceFilling != nil, "workspaces.enable_workspace_filling", "WSBAR_ENABLE_WORKSPACE_FILLING")
	add(e.EnableVirtualDesktops != nil, "workspaces.enable_virtual_desktops", "WSBAR_ENABLE_VIRTUAL_DESKTOPS")
	add(e.MaxWorkspaces != nil, "workspaces.max_workspaces", "WSBAR_MAX_WORKSPACES")
	add(e.WorkspaceNames != nil, "workspaces.workspace_names", "WSBAR_WORKSPACE_NAMES")
	add(e.WindowTitleMode != nil, "window_title.mode", "WSBAR_WINDOW_TITLE_MODE")
	add(e.TruncateTitleAfterLength != nil, "window_title.truncate_title_after_length", "WSBAR_TRUNCATE_TITLE_AFTER_LENGTH")
	return out
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	if overlay.Backend != nil {
		out.Backend = overlay.Backend
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.PollInterval != nil {
		out.PollInterval = overlay.PollInterval
	}
	if overlay.MetricsAddress != nil {
		out.MetricsAddress = overlay.MetricsAddress
	}
	if overlay.Workspaces != nil {
		base := RawWorkspacesConfig{}
		if out.Workspaces != nil {
			base = *out.Workspaces
		}
		merged := mergeRawWorkspaces(base, *overlay.Workspaces)
		out.Workspaces = &merged
	}
	if overlay.WindowTitle != nil {
		base := RawWindowTitleConfig{}
		if out.WindowTitle != nil {
			base = *out.WindowTitle
		}
		merged := mergeRawWindowTitle(base, *overlay.WindowTitle)
		out.WindowTitle = &merged
	}
	return out
}

func mergeRawWorkspaces(base RawWorkspacesConfig, overlay RawWorkspacesConfig) RawWorkspacesConfig {
	out := base
	if overlay.VisibilityMode != nil {
		out.VisibilityMode = overlay.VisibilityMode
	}
	if overlay.EnableWorkspaceFilling != nil {
		out.EnableWorkspaceFilling = overlay.EnableWorkspaceFilling
	}
	if overlay.EnableVirtualDesktops != nil {
		out.EnableVirtualDesktops = overlay.EnableVirtualDesktops
	}
	if overlay.MaxWorkspaces != nil {
		out.MaxWorkspaces = overlay.MaxWorkspaces
	}
	if overlay.WorkspaceNames != nil {
		out.WorkspaceNames = overlay.WorkspaceNames
	}
	return out
}

func mergeRawWindowTitle(base RawWindowTitleConfig, overlay RawWindowTitleConfig) RawWindowTitleConfig {
	out := base
	if overlay.Mode != nil {
		out.Mode = overlay.Mode
	}
	if overlay.TruncateTitleAfterLength != nil {
		out.TruncateTitleAfterLength = overlay.TruncateTitleAfterLength
	}
	return out
}
