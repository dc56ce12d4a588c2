package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	backend
//	log_level
//	poll_interval
//	metrics_address
//	workspaces.visibility_mode
//	workspaces.enable_workspace_filling
//	workspaces.enable_virtual_desktops
//	workspaces.max_workspaces
//	workspaces.workspace_names
//	window_title.mode
//	window_title.truncate_title_after_length
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "backend":
		return string(cfg.Backend), nil
	case "log_level":
		return cfg.LogLevel, nil
	case "poll_interval":
		return cfg.PollInterval.String(), nil
	case "metrics_address":
		return cfg.MetricsAddress, nil
	case "workspaces.visibility_mode":
		return string(cfg.Workspaces.VisibilityMode), nil
	case "workspaces.enable_workspace_filling":
		return cfg.Workspaces.EnableWorkspaceFilling, nil
	case "workspaces.enable_virtual_desktops":
		return cfg.Workspaces.EnableVirtualDesktops, nil
	case "workspaces.max_workspaces":
		if cfg.Workspaces.MaxWorkspaces == nil {
			return nil, nil
		}
		return *cfg.Workspaces.MaxWorkspaces, nil
	case "workspaces.workspace_names":
		return append([]string(nil), cfg.Workspaces.WorkspaceNames...), nil
	case "window_title.mode":
		return string(cfg.WindowTitle.Mode), nil
	case "window_title.truncate_title_after_length":
		return cfg.WindowTitle.TruncateTitleAfterLength, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
