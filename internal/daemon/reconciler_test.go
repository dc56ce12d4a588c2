package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/1broseidon/wsbar/internal/subscription"
	"github.com/1broseidon/wsbar/internal/windowtitle"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

func TestReconciler_TicksBothModules(t *testing.T) {
	r := NewReconciler(ReconcilerConfig{Interval: 10 * time.Millisecond})
	sub := r.Subscription()
	if sub.ID != "poll/10ms" {
		t.Fatalf("unexpected id %q", sub.ID)
	}

	out := subscription.NewOutput(sub.ID, subscription.OutputCapacity, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sub.Run(ctx, out)
	}()

	var sawWorkspaces, sawTitle bool
	deadline := time.After(2 * time.Second)
	for !sawWorkspaces || !sawTitle {
		select {
		case msg := <-out.C():
			switch msg.(type) {
			case workspaces.WorkspacesChanged:
				sawWorkspaces = true
			case windowtitle.TitleChanged:
				sawTitle = true
			}
		case <-deadline:
			t.Fatalf("missing ticks: workspaces=%v title=%v", sawWorkspaces, sawTitle)
		}
	}
	cancel()
	<-done
}

func TestNewReconciler_DefaultInterval(t *testing.T) {
	if r := NewReconciler(ReconcilerConfig{}); r.interval != 10*time.Second {
		t.Fatalf("expected 10s default, got %v", r.interval)
	}
}
