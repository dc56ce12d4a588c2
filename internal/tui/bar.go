// Package tui renders the terminal bar and the workspace picker on top of
// a running daemon.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/wsbar/internal/config"
	"github.com/1broseidon/wsbar/internal/ipc"
	"github.com/1broseidon/wsbar/internal/windowtitle"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

// Source is the daemon connection the bar drives. *ipc.Client satisfies it.
type Source interface {
	Watch(ctx context.Context, fn func(ipc.StateData) error) error
	ChangeWorkspace(id int) error
	ToggleSpecialWorkspace(id int) error
	Scroll(direction int) error
}

// BarOptions selects what the bar shows.
type BarOptions struct {
	// Monitor is the output this bar sits on; empty shows every workspace.
	Monitor string
	// Known lists connected output names, used by monitor_specific mode.
	Known  []string
	Config config.WorkspacesConfig
}

type stateMsg ipc.StateData

type errMsg struct{ err error }

type watchClosedMsg struct{ err error }

// span is the column range a rendered button occupies on the first row.
type span struct {
	start, end int
	ws         workspaces.Workspace
}

type barModel struct {
	source Source
	opts   BarOptions
	keys   KeyMap
	help   help.Model

	states   <-chan ipc.StateData
	watchErr <-chan error

	workspaces []workspaces.Workspace
	title      string
	row        string
	spans      []span
	width      int
	err        error
}

func newBarModel(source Source, opts BarOptions, states <-chan ipc.StateData, watchErr <-chan error) barModel {
	return barModel{
		source:   source,
		opts:     opts,
		keys:     DefaultKeyMap,
		help:     help.New(),
		states:   states,
		watchErr: watchErr,
		width:    80,
	}
}

// RunBar shows the bar until the user quits or the daemon goes away.
func RunBar(ctx context.Context, source Source, opts BarOptions) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("bar requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	states := make(chan ipc.StateData)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- source.Watch(ctx, func(s ipc.StateData) error {
			select {
			case states <- s:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	m := newBarModel(source, opts, states, watchErr)
	final, err := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	if bm, ok := final.(barModel); ok && bm.err != nil {
		return bm.err
	}
	return nil
}

func (m barModel) waitForState() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.states:
			return stateMsg(s)
		case err := <-m.watchErr:
			return watchClosedMsg{err: err}
		}
	}
}

// Init implements tea.Model.
func (m barModel) Init() tea.Cmd {
	return m.waitForState()
}

// Update implements tea.Model.
func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.workspaces = workspaces.ForMonitor(msg.Workspaces, m.opts.Config.VisibilityMode, m.opts.Monitor, m.opts.Known)
		m.title = msg.Title
		m.err = nil
		m.layout()
		return m, m.waitForState()

	case watchClosedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("lost daemon connection: %w", msg.err)
		}
		return m, tea.Quit

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	}
	return m, nil
}

func (m barModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Prev):
		return m, m.scroll(-1)
	case key.Matches(msg, m.keys.Next):
		return m, m.scroll(1)
	case key.Matches(msg, m.keys.Jump):
		id, err := strconv.Atoi(msg.String())
		if err != nil {
			return m, nil
		}
		return m, m.call(func() error { return m.source.ChangeWorkspace(id) })
	case key.Matches(msg, m.keys.Special):
		for _, w := range m.workspaces {
			if w.IsSpecial() {
				return m, m.activate(w)
			}
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// handleMouse maps wheel down to the next workspace and a left click on a
// button to that workspace.
func (m barModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		return m.scroll(1)
	case tea.MouseButtonWheelUp:
		return m.scroll(-1)
	case tea.MouseButtonLeft:
		if msg.Y != 0 {
			return nil
		}
		for _, s := range m.spans {
			if msg.X >= s.start && msg.X < s.end {
				return m.activate(s.ws)
			}
		}
	}
	return nil
}

func (m barModel) activate(w workspaces.Workspace) tea.Cmd {
	if w.ID > 0 {
		return m.call(func() error { return m.source.ChangeWorkspace(w.ID) })
	}
	return m.call(func() error { return m.source.ToggleSpecialWorkspace(w.ID) })
}

func (m barModel) scroll(direction int) tea.Cmd {
	return m.call(func() error { return m.source.Scroll(direction) })
}

func (m barModel) call(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// layout renders the button row and records where each button landed.
func (m *barModel) layout() {
	m.spans = nil
	var parts []string
	col := 0
	for i, w := range m.workspaces {
		if i > 0 {
			parts = append(parts, gap.String())
			col += lipgloss.Width(gap.String())
		}
		button := buttonFor(w, m.opts.Config.EnableVirtualDesktops).Render(w.Name)
		width := lipgloss.Width(button)
		m.spans = append(m.spans, span{start: col, end: col + width, ws: w})
		parts = append(parts, button)
		col += width
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if room := m.width - col - titleStyle.GetPaddingLeft(); m.title != "" && room > 0 {
		row += titleStyle.Render(windowtitle.Truncate(m.title, room))
	}
	m.row = row
}

// View implements tea.Model.
func (m barModel) View() string {
	lines := []string{m.row}
	if m.err != nil {
		lines = append(lines, errorStyle.Render(m.err.Error()))
	}
	lines = append(lines, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
