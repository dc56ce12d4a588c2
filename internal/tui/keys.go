package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bar's key bindings.
type KeyMap struct {
	Prev    key.Binding
	Next    key.Binding
	Jump    key.Binding
	Special key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap mirrors the mouse wheel with h/l and arrow keys.
var DefaultKeyMap = KeyMap{
	Prev: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "previous"),
	),
	Next: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "next"),
	),
	Jump: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "go to"),
	),
	Special: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "toggle special"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Jump},
		{k.Special, k.Help, k.Quit},
	}
}
