// Package windowtitle tracks the focused window's title or class.
package windowtitle

import (
	"github.com/charmbracelet/x/ansi"

	"github.com/1broseidon/wsbar/internal/config"
	"github.com/1broseidon/wsbar/internal/subscription"
)

// Window is the focused window as reported by the backend.
type Window struct {
	Title string `json:"title"`
	Class string `json:"class"`
}

// TitleChanged asks the Title to re-query the focused window.
type TitleChanged struct{}

// Manager is implemented by backends that can report the focused window.
type Manager interface {
	ActiveWindow() (Window, bool)
	TitleSubscription() subscription.Subscription
}

// Title holds the current display value.
type Title struct {
	cfg   config.WindowTitleConfig
	wm    Manager
	value string
}

// New queries the backend once.
func New(cfg config.WindowTitleConfig, wm Manager) *Title {
	t := &Title{cfg: cfg, wm: wm}
	t.refresh()
	return t
}

// Update re-queries on TitleChanged and ignores everything else.
func (t *Title) Update(msg any) {
	if _, ok := msg.(TitleChanged); ok {
		t.refresh()
	}
}

func (t *Title) refresh() {
	win, ok := t.wm.ActiveWindow()
	if !ok {
		t.value = ""
		return
	}
	text := win.Title
	if t.cfg.Mode == config.WindowTitleModeClass {
		text = win.Class
	}
	t.value = Truncate(text, t.cfg.TruncateTitleAfterLength)
}

// Value returns the truncated text, empty when nothing is focused.
func (t *Title) Value() string { return t.value }

// Subscription returns the backend's focus-change subscription.
func (t *Title) Subscription() subscription.Subscription {
	return t.wm.TitleSubscription()
}

// Truncate shortens s to at most max display cells, ending in "...".
// max <= 0 disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 || ansi.StringWidth(s) <= max {
		return s
	}
	return ansi.Truncate(s, max, "...")
}
