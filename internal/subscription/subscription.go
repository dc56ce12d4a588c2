// Package subscription runs long-lived event sources keyed by identity.
//
// A Subscription is started once per distinct ID. Calling Runtime.Sync with
// a new set of subscriptions cancels the ones whose ID disappeared and
// starts the new ones; subscriptions with an unchanged ID keep running.
package subscription

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// OutputCapacity bounds each subscription's pending notifications.
const OutputCapacity = 10

// Subscription is a cancellable event source. Run must return once ctx is
// cancelled.
type Subscription struct {
	ID  string
	Run func(ctx context.Context, out *Output)
}

// Observer receives runtime bookkeeping events. *metrics.Metrics implements it.
type Observer interface {
	Dropped(id string)
	Restarted(id string)
}

// Output is the send side handed to a running subscription. It is safe for
// concurrent use by any number of event handlers.
type Output struct {
	id       string
	observer Observer

	mu     sync.Mutex
	ch     chan any
	closed bool
}

// NewOutput returns an Output with a buffer of capacity messages.
func NewOutput(id string, capacity int, observer Observer) *Output {
	if capacity < 1 {
		capacity = 1
	}
	return &Output{id: id, observer: observer, ch: make(chan any, capacity)}
}

// TrySend enqueues msg without blocking. It reports false when the buffer
// is full or the output is closed; the message is dropped in both cases.
func (o *Output) TrySend(msg any) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		o.drop()
		return false
	}
	select {
	case o.ch <- msg:
		return true
	default:
		o.drop()
		return false
	}
}

func (o *Output) drop() {
	if o.observer != nil {
		o.observer.Dropped(o.id)
	}
}

// Restarted records that the subscription re-established its event source.
func (o *Output) Restarted() {
	if o.observer != nil {
		o.observer.Restarted(o.id)
	}
}

// ID returns the identity key of the owning subscription.
func (o *Output) ID() string { return o.id }

// C returns the receive side. It is closed by Close.
func (o *Output) C() <-chan any { return o.ch }

// Close marks the output closed. Later sends are dropped.
func (o *Output) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	close(o.ch)
}

type running struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Runtime owns running subscriptions and merges their outputs.
type Runtime struct {
	logger   *slog.Logger
	observer Observer

	mu       sync.Mutex
	running  map[string]*running
	messages chan any
	wg       sync.WaitGroup
	closed   bool
}

// NewRuntime creates an empty runtime. observer may be nil.
func NewRuntime(logger *slog.Logger, observer Observer) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		logger:   logger,
		observer: observer,
		running:  make(map[string]*running),
		messages: make(chan any),
	}
}

// Messages yields every message sent by any running subscription. It is
// closed after Close returns.
func (r *Runtime) Messages() <-chan any {
	return r.messages
}

// Sync makes the running set equal to subs, by ID.
func (r *Runtime) Sync(subs ...Subscription) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}

	wanted := make(map[string]Subscription, len(subs))
	for _, sub := range subs {
		if sub.ID == "" || sub.Run == nil {
			continue
		}
		if _, dup := wanted[sub.ID]; dup {
			continue
		}
		wanted[sub.ID] = sub
	}

	var stopping []*running
	for id, run := range r.running {
		if _, ok := wanted[id]; ok {
			continue
		}
		r.logger.Debug("stopping subscription", "id", id)
		run.cancel()
		stopping = append(stopping, run)
		delete(r.running, id)
	}

	for id, sub := range wanted {
		if _, ok := r.running[id]; ok {
			continue
		}
		r.logger.Debug("starting subscription", "id", id)
		r.running[id] = r.start(sub)
	}
	r.mu.Unlock()

	for _, run := range stopping {
		<-run.done
	}
}

// start must be called with r.mu held.
func (r *Runtime) start(sub Subscription) *running {
	ctx, cancel := context.WithCancel(context.Background())
	out := NewOutput(sub.ID, OutputCapacity, r.observer)
	run := &running{cancel: cancel, done: make(chan struct{})}

	r.wg.Add(2)
	go func() {
		defer r.wg.Done()
		defer close(run.done)
		defer out.Close()
		sub.Run(ctx, out)
		if ctx.Err() == nil {
			r.logger.Warn("subscription returned before cancellation", "id", sub.ID)
		}
	}()
	go func() {
		defer r.wg.Done()
		r.forward(ctx, out)
	}()
	return run
}

func (r *Runtime) forward(ctx context.Context, out *Output) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-out.C():
			if !ok {
				return
			}
			select {
			case r.messages <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Running returns the IDs of running subscriptions in sorted order.
func (r *Runtime) Running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.running))
	for id := range r.running {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close cancels every subscription and waits for them to return.
func (r *Runtime) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for id, run := range r.running {
		run.cancel()
		delete(r.running, id)
	}
	r.mu.Unlock()

	r.wg.Wait()
	close(r.messages)
}
