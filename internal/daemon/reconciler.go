package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/wsbar/internal/subscription"
	"github.com/1broseidon/wsbar/internal/windowtitle"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically forces a full reconciliation, covering changes
// a backend emits no event for.
type Reconciler struct {
	interval time.Duration
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		logger:   logger,
	}
}

// Subscription runs the ticker under the subscription runtime. The
// interval is part of the identity so a reload with a new interval
// restarts it.
func (r *Reconciler) Subscription() subscription.Subscription {
	return subscription.Subscription{
		ID:  fmt.Sprintf("poll/%s", r.interval),
		Run: r.Run,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context, out *subscription.Output) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.ReconcileNow(out)
		}
	}
}

// ReconcileNow requests an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(out *subscription.Output) {
	out.TrySend(workspaces.WorkspacesChanged{})
	out.TrySend(windowtitle.TitleChanged{})
}
