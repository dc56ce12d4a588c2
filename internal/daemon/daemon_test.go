package daemon

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/wsbar/internal/config"
	"github.com/1broseidon/wsbar/internal/ipc"
	"github.com/1broseidon/wsbar/internal/metrics"
	"github.com/1broseidon/wsbar/internal/platform"
	"github.com/1broseidon/wsbar/internal/subscription"
	"github.com/1broseidon/wsbar/internal/windowtitle"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

type fakeBackend struct {
	mu         sync.Mutex
	workspaces []workspaces.Workspace
	title      string
	dispatched []int
	closed     bool

	events chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		workspaces: []workspaces.Workspace{
			{ID: 1, Name: "1", Displayed: workspaces.Active, Windows: 2},
			{ID: 2, Name: "2", Displayed: workspaces.Hidden},
		},
		title:  "editor",
		events: make(chan struct{}, 4),
	}
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Workspaces(config.WorkspacesConfig) []workspaces.Workspace {
	f.mu.Lock()
	defer f.mu.Unlock()
	return workspaces.Clone(f.workspaces)
}

func (f *fakeBackend) Subscription(cfg config.WorkspacesConfig) subscription.Subscription {
	return subscription.Subscription{
		ID: workspaces.SubscriptionID(f.Name(), cfg),
		Run: func(ctx context.Context, out *subscription.Output) {
			for {
				select {
				case <-ctx.Done():
					return
				case <-f.events:
					out.TrySend(workspaces.WorkspacesChanged{})
				}
			}
		},
	}
}

func (f *fakeBackend) ChangeWorkspace(id int, _ config.WorkspacesConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, id)
	return nil
}

func (f *fakeBackend) ToggleSpecialWorkspace(workspaces.Workspace) error { return nil }

func (f *fakeBackend) ActiveWindow() (windowtitle.Window, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return windowtitle.Window{Title: f.title, Class: "fake"}, f.title != ""
}

func (f *fakeBackend) TitleSubscription() subscription.Subscription {
	return subscription.Subscription{
		ID:  "window_title/fake",
		Run: func(ctx context.Context, _ *subscription.Output) { <-ctx.Done() },
	}
}

func (f *fakeBackend) Monitors() []platform.Monitor {
	return []platform.Monitor{{ID: 0, Name: "DP-1", Focused: true}}
}

func (f *fakeBackend) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeBackend) setWorkspaces(list []workspaces.Workspace) {
	f.mu.Lock()
	f.workspaces = list
	f.mu.Unlock()
}

func (f *fakeBackend) dispatchedIDs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.dispatched...)
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// startDaemon runs a daemon over a fake backend until the test ends.
func startDaemon(t *testing.T, configBody string) (*fakeBackend, *ipc.Client, string) {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	writeConfig(t, configPath, configBody)
	socket := filepath.Join(dir, "wsbar.sock")

	backend := newFakeBackend()
	d, err := New(Options{
		ConfigPath: configPath,
		SocketPath: socket,
		Logger:     slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		Metrics:    metrics.New(),
		NewBackend: func(*config.Config, *slog.Logger) (platform.Backend, error) {
			return backend, nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
	})

	client := ipc.NewClientWithSocket(socket)
	deadline := time.Now().Add(2 * time.Second)
	for client.Ping() != nil {
		if time.Now().After(deadline) {
			t.Fatal("daemon did not start")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return backend, client, configPath
}

func TestDaemonServesQueries(t *testing.T) {
	_, client, _ := startDaemon(t, "backend: niri\n")

	list, err := client.GetWorkspaces()
	if err != nil {
		t.Fatalf("GetWorkspaces: %v", err)
	}
	if len(list) != 2 || list[0].ID != 1 || list[0].Displayed != workspaces.Active {
		t.Fatalf("unexpected workspaces %+v", list)
	}

	title, err := client.GetTitle()
	if err != nil {
		t.Fatalf("GetTitle: %v", err)
	}
	if title != "editor" {
		t.Fatalf("title = %q, want editor", title)
	}

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Backend != "fake" || status.Workspaces != 2 || len(status.Monitors) != 1 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestDaemonCommandsReachBackend(t *testing.T) {
	backend, client, _ := startDaemon(t, "backend: niri\n")

	if err := client.ChangeWorkspace(2); err != nil {
		t.Fatalf("ChangeWorkspace: %v", err)
	}
	if err := client.Scroll(1); err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	if err := client.ChangeWorkspace(0); err == nil {
		t.Fatal("expected an error for workspace 0")
	}
	if err := client.ToggleSpecialWorkspace(1); err == nil {
		t.Fatal("expected an error toggling a normal workspace")
	}

	got := backend.dispatchedIDs()
	if len(got) != 2 || got[0] != 2 || got[1] != 2 {
		t.Fatalf("dispatched = %v, want [2 2]", got)
	}
}

func TestDaemonPublishesEventUpdates(t *testing.T) {
	backend, client, _ := startDaemon(t, "backend: niri\n")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errDone := errors.New("done")
	sawInitial := false
	err := client.Watch(ctx, func(state ipc.StateData) error {
		if !sawInitial {
			sawInitial = true
			backend.setWorkspaces([]workspaces.Workspace{
				{ID: 1, Name: "1", Displayed: workspaces.Hidden},
				{ID: 3, Name: "3", Displayed: workspaces.Active, Windows: 1},
			})
			backend.events <- struct{}{}
			return nil
		}
		if len(state.Workspaces) == 2 && state.Workspaces[1].ID == 3 {
			return errDone
		}
		return nil
	})
	if !errors.Is(err, errDone) {
		t.Fatalf("Watch returned %v", err)
	}
}

func TestDaemonReloadResyncsSubscriptions(t *testing.T) {
	_, client, configPath := startDaemon(t, "backend: niri\n")

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !containsPrefix(status.Subscriptions, "workspaces/fake?filling=false&vdesk=false") {
		t.Fatalf("subscriptions = %v", status.Subscriptions)
	}

	writeConfig(t, configPath, "backend: niri\npoll_interval: 1m\nworkspaces:\n  enable_virtual_desktops: true\n")
	if err := client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	status, err = client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !containsPrefix(status.Subscriptions, "workspaces/fake?filling=false&vdesk=true") {
		t.Fatalf("subscriptions after reload = %v", status.Subscriptions)
	}
	if containsPrefix(status.Subscriptions, "workspaces/fake?filling=false&vdesk=false") {
		t.Fatalf("stale subscription kept: %v", status.Subscriptions)
	}
	if !containsPrefix(status.Subscriptions, "poll/") {
		t.Fatalf("poll subscription missing: %v", status.Subscriptions)
	}
}

func TestDaemonReloadRejectsInvalidConfig(t *testing.T) {
	_, client, configPath := startDaemon(t, "backend: niri\n")

	writeConfig(t, configPath, "backend: niri\nunknown_key: 1\n")
	if err := client.Reload(); err == nil {
		t.Fatal("expected reload to fail")
	}
	if _, err := client.GetWorkspaces(); err != nil {
		t.Fatalf("daemon unusable after failed reload: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func containsPrefix(list []string, prefix string) bool {
	for _, s := range list {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
