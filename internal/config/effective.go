package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBackend is returned for backend names wsbar does not implement.
var ErrUnknownBackend = errors.New("unknown backend")

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceEnv && e.Source.Name != "" {
		return fmt.Sprintf("%s (%s): %v", e.Path, e.Source.Name, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw overrides on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Backend != nil {
		cfg.Backend = Backend(strings.ToLower(strings.TrimSpace(string(*raw.Backend))))
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	if raw.PollInterval != nil {
		cfg.PollInterval = *raw.PollInterval
	}
	if raw.MetricsAddress != nil {
		cfg.MetricsAddress = strings.TrimSpace(*raw.MetricsAddress)
	}

	if ws := raw.Workspaces; ws != nil {
		if ws.VisibilityMode != nil {
			cfg.Workspaces.VisibilityMode = *ws.VisibilityMode
		}
		if ws.EnableWorkspaceFilling != nil {
			cfg.Workspaces.EnableWorkspaceFilling = *ws.EnableWorkspaceFilling
		}
		if ws.EnableVirtualDesktops != nil {
			cfg.Workspaces.EnableVirtualDesktops = *ws.EnableVirtualDesktops
		}
		if ws.MaxWorkspaces != nil {
			v := *ws.MaxWorkspaces
			cfg.Workspaces.MaxWorkspaces = &v
		}
		if ws.WorkspaceNames != nil {
			cfg.Workspaces.WorkspaceNames = append([]string(nil), ws.WorkspaceNames...)
		}
	}

	if wt := raw.WindowTitle; wt != nil {
		if wt.Mode != nil {
			cfg.WindowTitle.Mode = *wt.Mode
		}
		if wt.TruncateTitleAfterLength != nil {
			cfg.WindowTitle.TruncateTitleAfterLength = *wt.TruncateTitleAfterLength
		}
	}

	return cfg
}
