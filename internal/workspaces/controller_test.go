package workspaces

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/wsbar/internal/config"
	"github.com/1broseidon/wsbar/internal/subscription"
)

type fakeManager struct {
	list     []Workspace
	queries  int
	changes  []int
	toggles  []int
	err      error
	lastVdsk bool
}

func (f *fakeManager) Name() string { return "fake" }

func (f *fakeManager) Workspaces(cfg config.WorkspacesConfig) []Workspace {
	f.queries++
	return Clone(f.list)
}

func (f *fakeManager) Subscription(cfg config.WorkspacesConfig) subscription.Subscription {
	return subscription.Subscription{
		ID:  SubscriptionID(f.Name(), cfg),
		Run: func(ctx context.Context, out *subscription.Output) { <-ctx.Done() },
	}
}

func (f *fakeManager) ChangeWorkspace(id int, cfg config.WorkspacesConfig) error {
	f.changes = append(f.changes, id)
	f.lastVdsk = cfg.EnableVirtualDesktops
	return f.err
}

func (f *fakeManager) ToggleSpecialWorkspace(ws Workspace) error {
	f.toggles = append(f.toggles, ws.ID)
	return f.err
}

func sample(active int) []Workspace {
	list := []Workspace{{ID: -98, Name: "scratch"}, {ID: 1}, {ID: 2}, {ID: 3}, {ID: 5}}
	for i := range list {
		if list[i].ID == active {
			list[i].Displayed = Active
		}
	}
	return list
}

func TestController_QueriesOnConstruction(t *testing.T) {
	wm := &fakeManager{list: sample(1)}
	c := NewController(config.WorkspacesConfig{}, wm, nil, nil)
	if wm.queries != 1 || len(c.Workspaces()) != 5 {
		t.Fatalf("expected one query and 5 workspaces, got %d / %d", wm.queries, len(c.Workspaces()))
	}

	wm.list = sample(2)[:2]
	c.Update(WorkspacesChanged{})
	if wm.queries != 2 || len(c.Workspaces()) != 2 {
		t.Fatalf("expected reconcile to replace list, got %+v", c.Workspaces())
	}
}

func TestController_ChangeWorkspace(t *testing.T) {
	wm := &fakeManager{list: sample(3)}
	c := NewController(config.WorkspacesConfig{EnableVirtualDesktops: true}, wm, nil, nil)

	c.Update(ChangeWorkspace{ID: 3})
	c.Update(ChangeWorkspace{ID: 0})
	c.Update(ChangeWorkspace{ID: -98})
	if len(wm.changes) != 0 {
		t.Fatalf("expected no dispatch, got %v", wm.changes)
	}

	c.Update(ChangeWorkspace{ID: 2})
	if len(wm.changes) != 1 || wm.changes[0] != 2 || !wm.lastVdsk {
		t.Fatalf("expected dispatch to 2 with vdesk config, got %v", wm.changes)
	}
}

func TestController_DispatchErrorIsNotFatal(t *testing.T) {
	wm := &fakeManager{list: sample(1), err: errors.New("boom")}
	c := NewController(config.WorkspacesConfig{}, wm, nil, nil)
	before := c.Workspaces()

	c.Update(ChangeWorkspace{ID: 2})
	c.Update(ToggleSpecialWorkspace{ID: -98})

	if len(wm.changes) != 1 || len(wm.toggles) != 1 {
		t.Fatalf("expected both dispatches attempted")
	}
	if len(c.Workspaces()) != len(before) || wm.queries != 1 {
		t.Fatalf("dispatch failure must leave the list untouched")
	}
}

func TestController_ToggleSpecialWorkspace(t *testing.T) {
	wm := &fakeManager{list: sample(1)}
	c := NewController(config.WorkspacesConfig{}, wm, nil, nil)

	c.Update(ToggleSpecialWorkspace{ID: 1})
	c.Update(ToggleSpecialWorkspace{ID: -1})
	if len(wm.toggles) != 0 {
		t.Fatalf("expected no toggles, got %v", wm.toggles)
	}
	c.Update(ToggleSpecialWorkspace{ID: -98})
	if len(wm.toggles) != 1 || wm.toggles[0] != -98 {
		t.Fatalf("expected toggle of -98, got %v", wm.toggles)
	}
}

func TestController_Scroll(t *testing.T) {
	cases := []struct {
		name      string
		active    int
		direction int
		want      []int
	}{
		{"forward skips gap", 3, 1, []int{5}},
		{"backward", 3, -1, []int{2}},
		{"forward at end", 5, 1, nil},
		{"backward from first normal reaches special", 1, -1, []int{}},
		{"no active", 0, 1, nil},
		{"zero direction", 3, 0, nil},
	}
	for _, tc := range cases {
		wm := &fakeManager{list: sample(tc.active)}
		c := NewController(config.WorkspacesConfig{}, wm, nil, nil)
		c.Update(Scroll{Direction: tc.direction})
		if len(wm.changes) != len(tc.want) {
			t.Fatalf("%s: changes = %v, want %v", tc.name, wm.changes, tc.want)
		}
		for i := range tc.want {
			if wm.changes[i] != tc.want[i] {
				t.Fatalf("%s: changes = %v, want %v", tc.name, wm.changes, tc.want)
			}
		}
	}
}

func TestSubscriptionID_ChangesWithFlags(t *testing.T) {
	base := SubscriptionID("hyprland", config.WorkspacesConfig{})
	if base != "workspaces/hyprland?filling=false&vdesk=false" {
		t.Fatalf("unexpected id %q", base)
	}
	names := config.WorkspacesConfig{WorkspaceNames: []string{"a"}}
	if SubscriptionID("hyprland", names) != base {
		t.Fatalf("names must not change the identity key")
	}
	if SubscriptionID("hyprland", config.WorkspacesConfig{EnableVirtualDesktops: true}) == base {
		t.Fatalf("vdesk must change the identity key")
	}
	if SubscriptionID("hyprland", config.WorkspacesConfig{EnableWorkspaceFilling: true}) == base {
		t.Fatalf("filling must change the identity key")
	}
}
