//go:build !linux

package platform

import (
	"errors"
	"log/slog"
)

// EWMH is only available on linux builds.
type EWMH struct{ Niri }

func NewEWMH(*slog.Logger) (*EWMH, error) {
	return nil, errors.New("ewmh backend is only supported on linux")
}
