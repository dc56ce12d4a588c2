package tui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/1broseidon/wsbar/internal/palette"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

// Picker is what Pick needs from the daemon. *ipc.Client satisfies it.
type Picker interface {
	GetWorkspaces() ([]workspaces.Workspace, error)
	ChangeWorkspace(id int) error
	ToggleSpecialWorkspace(id int) error
}

// ErrNoWorkspaces is returned by Pick when the daemon reports nothing to pick.
var ErrNoWorkspaces = errors.New("no workspaces reported")

// Pick prompts for a workspace and switches to it. Aborting the prompt is
// not an error.
func Pick(source Picker) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("pick requires an interactive terminal")
	}

	list, err := source.GetWorkspaces()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return ErrNoWorkspaces
	}

	choice := list[0].ID
	if active, ok := workspaces.FindActive(list); ok {
		choice = active.ID
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Switch workspace").
				Options(pickOptions(list)...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}
	return activate(source, list, choice)
}

// PickMenu is Pick through an external launcher instead of the terminal.
func PickMenu(source Picker, menu palette.Backend) error {
	list, err := source.GetWorkspaces()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return ErrNoWorkspaces
	}

	choice, err := menu.Show("workspace", menuItems(list))
	if err != nil {
		if errors.Is(err, palette.ErrCancelled) {
			return nil
		}
		return err
	}
	return activate(source, list, choice.Value)
}

func menuItems(list []workspaces.Workspace) []palette.Item {
	items := make([]palette.Item, 0, len(list))
	for _, w := range list {
		items = append(items, palette.Item{
			Label:  pickLabel(w),
			Value:  w.ID,
			Active: w.Displayed == workspaces.Active,
		})
	}
	return items
}

func pickOptions(list []workspaces.Workspace) []huh.Option[int] {
	opts := make([]huh.Option[int], 0, len(list))
	for _, w := range list {
		opts = append(opts, huh.NewOption(pickLabel(w), w.ID))
	}
	return opts
}

func pickLabel(w workspaces.Workspace) string {
	label := w.Name
	if w.IsSpecial() {
		label = "special: " + label
	}
	if w.Monitor != "" {
		label += " (" + w.Monitor + ")"
	}
	switch {
	case w.Displayed == workspaces.Active:
		label += " *"
	case w.Windows > 0:
		label += fmt.Sprintf(" [%d]", w.Windows)
	}
	return label
}

func activate(source Picker, list []workspaces.Workspace, id int) error {
	w, ok := workspaces.Find(list, id)
	if !ok {
		return fmt.Errorf("workspace %d not found", id)
	}
	if w.IsSpecial() {
		return source.ToggleSpecialWorkspace(w.ID)
	}
	return source.ChangeWorkspace(w.ID)
}
