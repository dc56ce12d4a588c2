// Package palette shows a list in an external launcher (rofi, fuzzel, wofi
// or dmenu) and returns the chosen row. Bars bind it to a click so picking
// a workspace works without a terminal.
package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the launcher without choosing.
var ErrCancelled = errors.New("palette cancelled")

// Item is one selectable row.
type Item struct {
	Label  string
	Value  int
	Active bool // highlighted and preselected where the launcher supports it
	Urgent bool
}

// Backend shows items and returns the chosen one.
type Backend interface {
	Show(prompt string, items []Item) (Item, error)
	Name() string
}

// launchers lists supported commands in detection order.
var launchers = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// DetectBackend returns the first launcher found in PATH.
func DetectBackend() (string, error) {
	for _, name := range launchers {
		if _, err := lookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(launchers, ", "))
}

// NewBackend creates a backend by name. "" and "auto" detect one.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}

	var b *launcher
	switch name {
	case "rofi":
		b = newRofi()
	case "fuzzel":
		b = newFuzzel()
	case "wofi":
		b = newWofi()
	case "dmenu":
		b = newDmenu()
	default:
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(launchers, ", "))
	}
	if _, err := lookPath(b.command); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", b.command)
	}
	return b, nil
}
