package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

type launcherKind int

const (
	kindRofi launcherKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

// launcher drives any dmenu-compatible program over stdin/stdout.
type launcher struct {
	command string
	kind    launcherKind

	markup      bool // rows are pango markup
	indexOutput bool // prints the chosen row index instead of its text
	rowStates   bool // supports -a/-u/-selected-row
}

func newRofi() *launcher {
	return &launcher{command: "rofi", kind: kindRofi, markup: true, indexOutput: true, rowStates: true}
}

func newFuzzel() *launcher {
	return &launcher{command: "fuzzel", kind: kindFuzzel, indexOutput: true}
}

func newWofi() *launcher {
	return &launcher{command: "wofi", kind: kindWofi, markup: true}
}

func newDmenu() *launcher {
	return &launcher{command: "dmenu", kind: kindDmenu}
}

func (l *launcher) Name() string { return l.command }

func (l *launcher) Show(prompt string, items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	rows := l.rows(items)
	cmd := exec.Command(l.command, l.args(prompt, items)...)
	cmd.Stdin = strings.NewReader(strings.Join(rows, "\n"))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", l.command, msg)
		}
		return Item{}, fmt.Errorf("%s failed: %w", l.command, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return l.parseSelection(selection, items, rows)
}

func (l *launcher) args(prompt string, items []Item) []string {
	var args []string
	switch l.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		var active, urgent []int
		selected := -1
		for i, item := range items {
			if item.Active {
				active = append(active, i)
				if selected < 0 {
					selected = i
				}
			}
			if item.Urgent {
				urgent = append(urgent, i)
			}
		}
		if len(active) > 0 {
			args = append(args, "-a", formatIndices(active))
		}
		if len(urgent) > 0 {
			args = append(args, "-u", formatIndices(urgent))
		}
		if selected >= 0 {
			args = append(args, "-selected-row", strconv.Itoa(selected))
		}

	case kindFuzzel:
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}

	case kindWofi:
		args = []string{"--dmenu", "--allow-markup"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}

	case kindDmenu:
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}
	return args
}

// rows renders one line per item. Launchers that answer with text get
// unique labels so the answer maps back to a single item.
func (l *launcher) rows(items []Item) []string {
	rows := make([]string, len(items))
	seen := make(map[string]int)
	for i, item := range items {
		label := sanitizeLabel(item.Label)
		if !l.indexOutput {
			if n := seen[label]; n > 0 {
				label = fmt.Sprintf("%s (%d)", label, n+1)
			}
			seen[sanitizeLabel(item.Label)]++
		}
		if l.markup {
			label = html.EscapeString(label)
			if item.Active && !l.rowStates {
				label = "<b>" + label + "</b>"
			}
		}
		rows[i] = label
	}
	return rows
}

func (l *launcher) parseSelection(selection string, items []Item, rows []string) (Item, error) {
	if l.indexOutput {
		idx, err := strconv.Atoi(selection)
		if err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for i, row := range rows {
		if row == selection || html.UnescapeString(stripBold(row)) == selection {
			return items[i], nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func stripBold(s string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, "<b>"), "</b>")
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func formatIndices(indices []int) string {
	parts := make([]string, 0, len(indices))
	for _, i := range indices {
		parts = append(parts, strconv.Itoa(i))
	}
	return strings.Join(parts, ",")
}

// isCancelExit reports the exit codes launchers use for "nothing chosen":
// 1 for Escape, 130 for Ctrl+C.
func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
