package windowtitle

import (
	"context"
	"testing"

	"github.com/1broseidon/wsbar/internal/config"
	"github.com/1broseidon/wsbar/internal/subscription"
)

type fakeWindows struct {
	win Window
	ok  bool
}

func (f *fakeWindows) ActiveWindow() (Window, bool) { return f.win, f.ok }

func (f *fakeWindows) TitleSubscription() subscription.Subscription {
	return subscription.Subscription{
		ID:  "window_title/fake",
		Run: func(ctx context.Context, out *subscription.Output) { <-ctx.Done() },
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 10, "abcdefghij"},
		{"abcdefghijk", 10, "abcdefg..."},
		{"anything", 0, "anything"},
	}
	for _, tc := range cases {
		if got := Truncate(tc.in, tc.max); got != tc.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestTitle_ModesAndUpdates(t *testing.T) {
	wm := &fakeWindows{win: Window{Title: "main.go - editor", Class: "code"}, ok: true}
	cfg := config.WindowTitleConfig{Mode: config.WindowTitleModeTitle, TruncateTitleAfterLength: 150}

	title := New(cfg, wm)
	if title.Value() != "main.go - editor" {
		t.Fatalf("unexpected title %q", title.Value())
	}

	wm.win.Title = "other"
	title.Update(struct{}{})
	if title.Value() != "main.go - editor" {
		t.Fatalf("unrelated messages must not refresh")
	}
	title.Update(TitleChanged{})
	if title.Value() != "other" {
		t.Fatalf("expected refresh, got %q", title.Value())
	}

	wm.ok = false
	title.Update(TitleChanged{})
	if title.Value() != "" {
		t.Fatalf("expected empty title without focus, got %q", title.Value())
	}

	cfg.Mode = config.WindowTitleModeClass
	wm.ok = true
	if got := New(cfg, wm).Value(); got != "code" {
		t.Fatalf("expected class, got %q", got)
	}
}
