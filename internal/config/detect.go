package config

import "os"

// ResolveBackend turns BackendAuto into a concrete backend using the
// session environment. Explicit choices are returned unchanged.
//
// Detection order: Hyprland, Niri, any X11 display. Sessions without a
// recognised compositor get the Niri placeholder so the bar still runs.
func (c *Config) ResolveBackend() Backend {
	return resolveBackend(c.Backend, os.Getenv)
}

func resolveBackend(b Backend, getenv func(string) string) Backend {
	if b != BackendAuto && b != "" {
		return b
	}
	switch {
	case getenv("HYPRLAND_INSTANCE_SIGNATURE") != "":
		return BackendHyprland
	case getenv("NIRI_SOCKET") != "":
		return BackendNiri
	case getenv("DISPLAY") != "" && getenv("WAYLAND_DISPLAY") == "":
		return BackendEWMH
	default:
		return BackendNiri
	}
}
