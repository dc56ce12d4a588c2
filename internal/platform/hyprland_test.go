package platform

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/wsbar/internal/config"
	"github.com/1broseidon/wsbar/internal/hyprland"
	"github.com/1broseidon/wsbar/internal/subscription"
	"github.com/1broseidon/wsbar/internal/windowtitle"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

type fakeHyprClient struct {
	active     *hyprland.Workspace
	monitors   []hyprland.Monitor
	workspaces []hyprland.Workspace
	window     *hyprland.Window
	queryErr   error

	dispatchErr map[string]error
	dispatched  []string

	mu        sync.Mutex
	sessions  int
	kinds     [][]hyprland.EventKind
	subscribe func(ctx context.Context, session int, fn func(hyprland.Event)) error
}

func (f *fakeHyprClient) Workspaces() ([]hyprland.Workspace, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.workspaces, nil
}

func (f *fakeHyprClient) Monitors() ([]hyprland.Monitor, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.monitors, nil
}

func (f *fakeHyprClient) ActiveWorkspace() (*hyprland.Workspace, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.active, nil
}

func (f *fakeHyprClient) ActiveWindow() (*hyprland.Window, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.window, nil
}

func (f *fakeHyprClient) Dispatch(d hyprland.Dispatch) error {
	f.dispatched = append(f.dispatched, d.String())
	return f.dispatchErr[d.String()]
}

func (f *fakeHyprClient) Subscribe(ctx context.Context, kinds []hyprland.EventKind, fn func(hyprland.Event)) error {
	f.mu.Lock()
	f.sessions++
	session := f.sessions
	f.kinds = append(f.kinds, kinds)
	f.mu.Unlock()
	return f.subscribe(ctx, session, fn)
}

func intp(v int) *int { return &v }

// twoMonitors: DP-1 shows 1 (focused, active), DP-2 shows 4 and special -98.
func twoMonitors() *fakeHyprClient {
	return &fakeHyprClient{
		active: &hyprland.Workspace{ID: 1},
		monitors: []hyprland.Monitor{
			{ID: 0, Name: "DP-1", ActiveWorkspace: hyprland.WorkspaceRef{ID: 1}, Focused: true},
			{ID: 1, Name: "DP-2", ActiveWorkspace: hyprland.WorkspaceRef{ID: 4}, SpecialWorkspace: hyprland.WorkspaceRef{ID: -98, Name: "special:scratch"}},
		},
		workspaces: []hyprland.Workspace{
			{ID: 4, Name: "4", Monitor: "DP-2", MonitorID: intp(1), Windows: 4},
			{ID: 1, Name: "1", Monitor: "DP-1", MonitorID: intp(0), Windows: 1},
			{ID: -98, Name: "special:scratch", Monitor: "DP-2", MonitorID: intp(1), Windows: 1},
			{ID: 3, Name: "3", Monitor: "DP-1", MonitorID: intp(0), Windows: 3},
			{ID: 1, Name: "dup", Monitor: "DP-2", MonitorID: intp(1), Windows: 9},
			{ID: 2, Name: "2", Monitor: "DP-2", MonitorID: intp(1), Windows: 2},
			{ID: -99, Name: "special:music", Monitor: "DP-1", MonitorID: intp(0)},
		},
	}
}

func ids(list []workspaces.Workspace) []int {
	out := make([]int, 0, len(list))
	for _, w := range list {
		out = append(out, w.ID)
	}
	return out
}

func byID(t *testing.T, list []workspaces.Workspace, id int) workspaces.Workspace {
	t.Helper()
	w, ok := workspaces.Find(list, id)
	if !ok {
		t.Fatalf("workspace %d missing from %v", id, ids(list))
	}
	return w
}

func TestHyprlandWorkspaces_PerMonitor(t *testing.T) {
	h := newHyprland(twoMonitors(), nil)
	got := h.Workspaces(config.WorkspacesConfig{WorkspaceNames: []string{"web"}})

	if want := []int{-99, -98, 1, 2, 3, 4}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids = %v, want %v", ids(got), want)
	}

	first := byID(t, got, 1)
	if first.Name != "web" || first.Windows != 1 || first.Monitor != "DP-1" || first.Displayed != workspaces.Active {
		t.Fatalf("duplicate must keep first occurrence: %+v", first)
	}
	if byID(t, got, 4).Displayed != workspaces.Visible {
		t.Fatalf("workspace shown on DP-2 should be visible")
	}
	if byID(t, got, 2).Displayed != workspaces.Hidden || byID(t, got, 2).Name != "2" {
		t.Fatalf("unexpected workspace 2: %+v", byID(t, got, 2))
	}

	scratch := byID(t, got, -98)
	if scratch.Name != "scratch" || scratch.Displayed != workspaces.Active || scratch.MonitorID == nil || *scratch.MonitorID != 1 {
		t.Fatalf("unexpected special workspace %+v", scratch)
	}
	if byID(t, got, -99).Displayed != workspaces.Hidden {
		t.Fatalf("special workspace not on any monitor must be hidden")
	}

	active := 0
	for _, w := range got {
		if !w.IsSpecial() && w.Displayed == workspaces.Active {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active normal workspace, got %d", active)
	}
}

func TestHyprlandWorkspaces_Idempotent(t *testing.T) {
	h := newHyprland(twoMonitors(), nil)
	cfg := config.WorkspacesConfig{EnableWorkspaceFilling: true}
	if a, b := h.Workspaces(cfg), h.Workspaces(cfg); !reflect.DeepEqual(a, b) {
		t.Fatalf("repeated queries differ:\n%+v\n%+v", a, b)
	}
}

func TestHyprlandWorkspaces_VirtualDesktops(t *testing.T) {
	client := twoMonitors()
	client.active = &hyprland.Workspace{ID: 3}
	h := newHyprland(client, nil)

	got := h.Workspaces(config.WorkspacesConfig{EnableVirtualDesktops: true, WorkspaceNames: []string{"one"}})
	if want := []int{-99, -98, 1, 2}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids = %v, want %v", ids(got), want)
	}

	vd1 := byID(t, got, 1)
	if vd1.Windows != 3 || vd1.Displayed != workspaces.Hidden || vd1.Name != "one" || vd1.MonitorID != nil || vd1.Monitor != "" {
		t.Fatalf("unexpected vdesk 1: %+v", vd1)
	}
	vd2 := byID(t, got, 2)
	if vd2.Windows != 7 || vd2.Displayed != workspaces.Active || vd2.Name != "2" {
		t.Fatalf("unexpected vdesk 2: %+v", vd2)
	}
}

func TestHyprlandWorkspaces_VirtualDesktopsWithoutMonitors(t *testing.T) {
	client := twoMonitors()
	client.monitors = nil
	h := newHyprland(client, nil)

	got := h.Workspaces(config.WorkspacesConfig{EnableVirtualDesktops: true})
	if want := []int{-99, -98, 1, 2, 3, 4}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids = %v, want %v", ids(got), want)
	}
	if byID(t, got, -98).Displayed != workspaces.Hidden {
		t.Fatalf("special workspace cannot be shown without monitors")
	}
}

func TestHyprlandWorkspaces_Filling(t *testing.T) {
	client := &fakeHyprClient{
		active:     &hyprland.Workspace{ID: 1},
		workspaces: []hyprland.Workspace{{ID: 1, Windows: 1}, {ID: 3, Windows: 2}, {ID: -98, Name: "special:s"}},
	}
	h := newHyprland(client, nil)

	got := h.Workspaces(config.WorkspacesConfig{EnableWorkspaceFilling: true})
	if want := []int{-98, 1, 2, 3}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids = %v, want %v", ids(got), want)
	}
	filled := byID(t, got, 2)
	if filled.Windows != 0 || filled.Displayed != workspaces.Hidden || filled.MonitorID != nil {
		t.Fatalf("unexpected placeholder %+v", filled)
	}

	if got := h.Workspaces(config.WorkspacesConfig{}); len(got) != 3 {
		t.Fatalf("filling disabled must not synthesize, got %v", ids(got))
	}

	max := uint(5)
	got = h.Workspaces(config.WorkspacesConfig{EnableWorkspaceFilling: true, MaxWorkspaces: &max})
	if want := []int{-98, 1, 2, 3, 4, 5}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids = %v, want %v", ids(got), want)
	}

	client.workspaces = []hyprland.Workspace{{ID: -98, Name: "special:s"}}
	got = h.Workspaces(config.WorkspacesConfig{EnableWorkspaceFilling: true, MaxWorkspaces: &max})
	if want := []int{-98}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("no normal workspaces means no filling, got %v", ids(got))
	}
}

func TestHyprlandWorkspaces_QueryFailureIsEmpty(t *testing.T) {
	client := twoMonitors()
	client.queryErr = errors.New("socket gone")
	h := newHyprland(client, nil)

	got := h.Workspaces(config.WorkspacesConfig{EnableWorkspaceFilling: true})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
	if _, ok := h.ActiveWindow(); ok {
		t.Fatalf("expected no active window on failure")
	}
	if h.Monitors() != nil {
		t.Fatalf("expected nil monitors on failure")
	}
}

func TestHyprlandWorkspaces_NoActiveWorkspace(t *testing.T) {
	client := twoMonitors()
	client.active = nil
	got := newHyprland(client, nil).Workspaces(config.WorkspacesConfig{})
	for _, w := range got {
		if !w.IsSpecial() && w.Displayed == workspaces.Active {
			t.Fatalf("no workspace may be active, got %+v", w)
		}
	}
}

func TestSpecialDisplayName(t *testing.T) {
	cases := map[string]string{"special:scratch": "scratch", "special": "special", "a:b:c": "c", "special:": ""}
	for in, want := range cases {
		if got := specialDisplayName(in); got != want {
			t.Fatalf("specialDisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHyprlandChangeWorkspace(t *testing.T) {
	client := &fakeHyprClient{dispatchErr: map[string]error{"workspace 9": errors.New("nope")}}
	h := newHyprland(client, nil)

	if err := h.ChangeWorkspace(3, config.WorkspacesConfig{}); err != nil {
		t.Fatalf("change: %v", err)
	}
	if err := h.ChangeWorkspace(2, config.WorkspacesConfig{EnableVirtualDesktops: true}); err != nil {
		t.Fatalf("vdesk: %v", err)
	}
	if err := h.ChangeWorkspace(9, config.WorkspacesConfig{}); err == nil {
		t.Fatalf("expected dispatch error to propagate")
	}
	want := []string{"workspace 3", "vdesk 2", "workspace 9"}
	if !reflect.DeepEqual(client.dispatched, want) {
		t.Fatalf("dispatched = %v, want %v", client.dispatched, want)
	}
}

func TestHyprlandToggleSpecialWorkspace(t *testing.T) {
	client := &fakeHyprClient{}
	h := newHyprland(client, nil)

	if err := h.ToggleSpecialWorkspace(workspaces.Workspace{ID: -98, Name: "scratch", MonitorID: intp(1)}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := h.ToggleSpecialWorkspace(workspaces.Workspace{ID: -99, Name: "music"}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	want := []string{"focusmonitor 1", "togglespecialworkspace scratch", "focusmonitor 0", "togglespecialworkspace music"}
	if !reflect.DeepEqual(client.dispatched, want) {
		t.Fatalf("dispatched = %v, want %v", client.dispatched, want)
	}

	client = &fakeHyprClient{dispatchErr: map[string]error{"focusmonitor 2": errors.New("no monitor")}}
	h = newHyprland(client, nil)
	if err := h.ToggleSpecialWorkspace(workspaces.Workspace{ID: -98, Name: "scratch", MonitorID: intp(2)}); err == nil {
		t.Fatalf("expected focus error")
	}
	if !reflect.DeepEqual(client.dispatched, []string{"focusmonitor 2"}) {
		t.Fatalf("toggle must not run after focus failure: %v", client.dispatched)
	}
}

func TestHyprlandActiveWindow(t *testing.T) {
	client := &fakeHyprClient{window: &hyprland.Window{Address: "0x1", Title: "vim", Class: "kitty"}}
	win, ok := newHyprland(client, nil).ActiveWindow()
	if !ok || win != (windowtitle.Window{Title: "vim", Class: "kitty"}) {
		t.Fatalf("unexpected window %+v %v", win, ok)
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	restarts int
}

func (r *recordingObserver) Dropped(string) {}

func (r *recordingObserver) Restarted(string) {
	r.mu.Lock()
	r.restarts++
	r.mu.Unlock()
}

func TestHyprlandSubscription_ReconnectsAndCoalesces(t *testing.T) {
	client := &fakeHyprClient{}
	client.subscribe = func(ctx context.Context, session int, fn func(hyprland.Event)) error {
		if session == 1 {
			return hyprland.ErrEventStreamClosed
		}
		for i := 0; i < 20; i++ {
			fn(hyprland.Event{Kind: hyprland.EventWindowOpened})
		}
		<-ctx.Done()
		return ctx.Err()
	}
	h := newHyprland(client, nil)

	cfg := config.WorkspacesConfig{EnableVirtualDesktops: true}
	sub := h.Subscription(cfg)
	if sub.ID != "workspaces/hyprland?filling=false&vdesk=true" {
		t.Fatalf("unexpected id %q", sub.ID)
	}

	obs := &recordingObserver{}
	out := subscription.NewOutput(sub.ID, subscription.OutputCapacity, obs)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sub.Run(ctx, out)
	}()

	deadline := time.After(2 * time.Second)
	received := 0
	for received < subscription.OutputCapacity {
		select {
		case msg := <-out.C():
			if _, ok := msg.(workspaces.WorkspacesChanged); !ok {
				t.Fatalf("unexpected message %T", msg)
			}
			received++
		case <-deadline:
			t.Fatalf("received %d notifications before timeout", received)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("subscription did not stop on cancel")
	}
	if obs.restarts != 1 {
		t.Fatalf("expected 1 restart, got %d", obs.restarts)
	}
}

func TestHyprlandTitleSubscriptionID(t *testing.T) {
	h := newHyprland(&fakeHyprClient{}, nil)
	if id := h.TitleSubscription().ID; id != "window_title/hyprland" {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestHyprlandTitleSubscription_RefreshesOnWorkspaceChange(t *testing.T) {
	client := &fakeHyprClient{}
	client.subscribe = func(ctx context.Context, session int, fn func(hyprland.Event)) error {
		fn(hyprland.Event{Kind: hyprland.EventWorkspaceChanged})
		<-ctx.Done()
		return ctx.Err()
	}
	sub := newHyprland(client, nil).TitleSubscription()

	out := subscription.NewOutput(sub.ID, subscription.OutputCapacity, &recordingObserver{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sub.Run(ctx, out)
	}()

	select {
	case msg := <-out.C():
		if _, ok := msg.(windowtitle.TitleChanged); !ok {
			t.Fatalf("unexpected message %T", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("workspace change did not refresh the title")
	}
	cancel()
	<-done

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.kinds) == 0 || !slices.Contains(client.kinds[0], hyprland.EventWorkspaceChanged) {
		t.Fatalf("expected title listener to subscribe to workspace changes, got %v", client.kinds)
	}
}
