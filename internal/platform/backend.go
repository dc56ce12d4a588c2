// Package platform resolves the configured window-manager backend and
// implements the workspace query adapter for each one.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/1broseidon/wsbar/internal/config"
	"github.com/1broseidon/wsbar/internal/subscription"
	"github.com/1broseidon/wsbar/internal/windowtitle"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

// Monitor is a connected output.
type Monitor struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Focused bool   `json:"focused"`
}

// Backend is one resolved window-manager integration, held for the
// process lifetime.
type Backend interface {
	workspaces.Manager
	windowtitle.Manager
	Monitors() []Monitor
	Close()
}

// New resolves cfg.Backend (detecting "auto") and connects to it.
func New(cfg *config.Config, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	backend := cfg.ResolveBackend()
	logger = logger.With("backend", string(backend))

	switch backend {
	case config.BackendHyprland:
		b, err := NewHyprland(logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.BackendEWMH:
		b, err := NewEWMH(logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.BackendNiri:
		return NewNiri(logger), nil
	default:
		return nil, fmt.Errorf("%w %q", config.ErrUnknownBackend, backend)
	}
}

// Reconnect pacing for event listeners: a burst of quick retries, then one
// attempt per second.
const (
	reconnectEvery = time.Second
	reconnectBurst = 3
)

func newReconnectLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(reconnectEvery), reconnectBurst)
}

// sessionFunc runs one event-listener session and returns when it ends.
type sessionFunc func(ctx context.Context) error

// listenForever runs session until ctx is cancelled, reconnecting after
// every failure. A tick is sent after each reconnect so state missed while
// disconnected is picked up.
func listenForever(ctx context.Context, logger *slog.Logger, out *subscription.Output, tick any, session sessionFunc) {
	limiter := newReconnectLimiter()
	for attempt := 0; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		if attempt > 0 {
			out.Restarted()
			out.TrySend(tick)
		}

		err := session(ctx)
		if ctx.Err() != nil {
			return
		}
		logger.Error("event listener stopped, reconnecting", "subscription", out.ID(), "error", err)
	}
}

// park blocks until ctx is cancelled. It models an event source that never
// fires.
func park(ctx context.Context, _ *subscription.Output) {
	<-ctx.Done()
}
