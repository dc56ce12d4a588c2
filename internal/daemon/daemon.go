// Package daemon owns the workspace controller and serves it over IPC.
//
// All state lives on the goroutine running Daemon.Run: subscription
// messages, IPC calls and reloads are applied there one at a time, so the
// controller and title need no locking.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/1broseidon/wsbar/internal/config"
	"github.com/1broseidon/wsbar/internal/ipc"
	"github.com/1broseidon/wsbar/internal/metrics"
	"github.com/1broseidon/wsbar/internal/platform"
	"github.com/1broseidon/wsbar/internal/subscription"
	"github.com/1broseidon/wsbar/internal/windowtitle"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

// Options configures a Daemon. Zero values select the defaults.
type Options struct {
	ConfigPath string
	SocketPath string
	Logger     *slog.Logger
	// LogLevel is updated from log_level on every reload when set.
	LogLevel *slog.LevelVar
	Metrics  *metrics.Metrics

	NewBackend func(*config.Config, *slog.Logger) (platform.Backend, error)
}

type Daemon struct {
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics

	res        *config.LoadResult
	backend    platform.Backend
	controller *workspaces.Controller
	title      *windowtitle.Title
	runtime    *subscription.Runtime
	server     *ipc.Server

	started   time.Time
	published *ipc.StateData
}

// New loads the configuration and connects to the window manager.
func New(opts Options) (*Daemon, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewBackend == nil {
		opts.NewBackend = platform.New
	}

	d := &Daemon{opts: opts, logger: opts.Logger, metrics: opts.Metrics}

	res, err := d.loadConfig()
	if err != nil {
		return nil, err
	}
	d.res = res
	d.applyLogLevel(res.Config)

	backend, err := opts.NewBackend(res.Config, d.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s backend: %w", res.Config.ResolveBackend(), err)
	}
	d.backend = backend

	server, err := ipc.NewServer(opts.SocketPath, d.logger)
	if err != nil {
		backend.Close()
		return nil, err
	}
	d.server = server

	d.runtime = subscription.NewRuntime(d.logger, d.metrics)
	d.build(res.Config)
	return d, nil
}

func (d *Daemon) loadConfig() (*config.LoadResult, error) {
	if d.opts.ConfigPath != "" {
		return config.LoadFromPath(d.opts.ConfigPath)
	}
	return config.LoadWithSources()
}

func (d *Daemon) applyLogLevel(cfg *config.Config) {
	if d.opts.LogLevel != nil {
		d.opts.LogLevel.Set(ParseLevel(cfg.LogLevel))
	}
}

// build replaces the controller and title for cfg and syncs subscriptions.
// Unchanged identity keys keep their listeners running.
func (d *Daemon) build(cfg *config.Config) {
	d.controller = workspaces.NewController(cfg.Workspaces, d.backend, d.logger, d.metrics)
	d.title = windowtitle.New(cfg.WindowTitle, d.backend)

	subs := []subscription.Subscription{d.controller.Subscription(), d.title.Subscription()}
	if cfg.PollInterval > 0 {
		subs = append(subs, NewReconciler(ReconcilerConfig{Interval: cfg.PollInterval, Logger: d.logger}).Subscription())
	}
	d.runtime.Sync(subs...)
}

// Run serves until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	d.started = time.Now()

	if err := d.server.Start(); err != nil {
		d.shutdown()
		return err
	}

	metricsSrv := d.startMetrics()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)

	d.logger.Info("wsbar daemon started",
		"backend", d.backend.Name(),
		"config", d.res.File,
		"subscriptions", d.runtime.Running())
	d.publish()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down wsbar daemon")
			if metricsSrv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				metricsSrv.Shutdown(shutdownCtx)
				cancel()
			}
			d.shutdown()
			return nil

		case msg, ok := <-d.runtime.Messages():
			if !ok {
				return errors.New("subscription runtime closed")
			}
			d.apply(msg)
			d.publish()

		case call := <-d.server.Calls():
			resp := d.handle(call.Request)
			d.metrics.IPCRequest(string(call.Request.Command), resp.Status)
			call.Reply(resp)
			d.publish()

		case <-sighup:
			d.logger.Info("received SIGHUP, reloading config")
			if err := d.reload(); err != nil {
				d.logger.Error("config reload failed", "error", err)
				continue
			}
			d.publish()
		}
	}
}

func (d *Daemon) startMetrics() *http.Server {
	addr := d.res.Config.MetricsAddress
	if addr == "" || d.metrics == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", d.metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	d.logger.Info("metrics listening", "addr", addr)
	return srv
}

func (d *Daemon) shutdown() {
	d.server.Stop()
	d.runtime.Close()
	d.backend.Close()
}

func (d *Daemon) apply(msg any) {
	switch msg := msg.(type) {
	case workspaces.Message:
		d.controller.Update(msg)
	case windowtitle.TitleChanged:
		d.title.Update(msg)
	default:
		d.logger.Warn("unexpected subscription message", "type", fmt.Sprintf("%T", msg))
	}
}

func (d *Daemon) reload() error {
	res, err := d.loadConfig()
	if err != nil {
		return err
	}
	if prev, next := d.res.Config.ResolveBackend(), res.Config.ResolveBackend(); prev != next {
		d.logger.Warn("backend change requires a daemon restart", "running", prev, "configured", next)
	}
	if res.Config.MetricsAddress != d.res.Config.MetricsAddress {
		d.logger.Warn("metrics_address change requires a daemon restart")
	}
	d.res = res
	d.applyLogLevel(res.Config)
	d.build(res.Config)
	d.logger.Info("config reloaded", "subscriptions", d.runtime.Running())
	return nil
}

func (d *Daemon) state() ipc.StateData {
	return ipc.StateData{
		Workspaces: d.controller.Workspaces(),
		Title:      d.title.Value(),
	}
}

// publish notifies watchers when the visible state changed.
func (d *Daemon) publish() {
	state := d.state()
	if d.published != nil && reflect.DeepEqual(*d.published, state) {
		return
	}
	d.published = &state
	d.server.Publish(state)
}

func (d *Daemon) handle(req *ipc.Request) *ipc.Response {
	switch req.Command {
	case ipc.CommandGetStatus:
		return ok(d.status())

	case ipc.CommandGetWorkspaces:
		return ok(ipc.WorkspacesData{Workspaces: d.controller.Workspaces()})

	case ipc.CommandGetTitle:
		return ok(ipc.TitleData{Title: d.title.Value()})

	case ipc.CommandChangeWorkspace:
		var p ipc.WorkspacePayload
		if err := req.DecodePayload(&p); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		if p.ID <= 0 {
			return ipc.NewErrorResponse(fmt.Sprintf("invalid workspace id %d", p.ID))
		}
		d.controller.Update(workspaces.ChangeWorkspace{ID: p.ID})
		return ok(nil)

	case ipc.CommandToggleSpecialWorkspace:
		var p ipc.WorkspacePayload
		if err := req.DecodePayload(&p); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		if ws, found := workspaces.Find(d.controller.Workspaces(), p.ID); !found || !ws.IsSpecial() {
			return ipc.NewErrorResponse(fmt.Sprintf("no special workspace with id %d", p.ID))
		}
		d.controller.Update(workspaces.ToggleSpecialWorkspace{ID: p.ID})
		return ok(nil)

	case ipc.CommandScroll:
		var p ipc.ScrollPayload
		if err := req.DecodePayload(&p); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		d.controller.Update(workspaces.Scroll{Direction: p.Direction})
		return ok(nil)

	case ipc.CommandReload:
		if err := d.reload(); err != nil {
			return ipc.NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
		}
		return ok(nil)

	default:
		return ipc.NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (d *Daemon) status() ipc.StatusData {
	monitors := d.backend.Monitors()
	infos := make([]ipc.MonitorInfo, 0, len(monitors))
	for _, m := range monitors {
		infos = append(infos, ipc.MonitorInfo{ID: m.ID, Name: m.Name, Focused: m.Focused})
	}
	return ipc.StatusData{
		Backend:       d.backend.Name(),
		ConfigFile:    d.res.File,
		Subscriptions: d.runtime.Running(),
		Monitors:      infos,
		Workspaces:    len(d.controller.Workspaces()),
		UptimeSeconds: int64(time.Since(d.started).Seconds()),
		DaemonRunning: true,
	}
}

func ok(data any) *ipc.Response {
	resp, err := ipc.NewOKResponse(data)
	if err != nil {
		return ipc.NewErrorResponse(err.Error())
	}
	return resp
}

// ParseLevel maps a log_level value onto slog levels. Unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
