// Package metrics exposes Prometheus counters for the reconciliation engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	Reconciliations  *prometheus.CounterVec
	DispatchFailures *prometheus.CounterVec
	ListenerRestarts *prometheus.CounterVec
	DroppedNotifies  *prometheus.CounterVec
	Workspaces       prometheus.Gauge
	IPCRequests      *prometheus.CounterVec
}

// New registers all collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Reconciliations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wsbar_reconciliations_total",
				Help: "Number of full workspace reconciliations",
			},
			[]string{"backend"},
		),
		DispatchFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wsbar_dispatch_failures_total",
				Help: "Failed workspace dispatch commands",
			},
			[]string{"op"},
		),
		ListenerRestarts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wsbar_listener_restarts_total",
				Help: "Event listener sessions re-established after failure",
			},
			[]string{"subscription"},
		),
		DroppedNotifies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wsbar_dropped_notifications_total",
				Help: "Change notifications dropped because the output was full or closed",
			},
			[]string{"subscription"},
		),
		Workspaces: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wsbar_workspaces",
				Help: "Workspaces in the last reconciliation result",
			},
		),
		IPCRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wsbar_ipc_requests_total",
				Help: "IPC requests by command and status",
			},
			[]string{"command", "status"},
		),
	}
}

// Handler serves the private registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveReconcile(backend string, count int) {
	if m == nil {
		return
	}
	m.Reconciliations.WithLabelValues(backend).Inc()
	m.Workspaces.Set(float64(count))
}

func (m *Metrics) DispatchFailed(op string) {
	if m == nil {
		return
	}
	m.DispatchFailures.WithLabelValues(op).Inc()
}

// Restarted implements subscription.Observer.
func (m *Metrics) Restarted(id string) {
	if m == nil {
		return
	}
	m.ListenerRestarts.WithLabelValues(id).Inc()
}

// Dropped implements subscription.Observer.
func (m *Metrics) Dropped(id string) {
	if m == nil {
		return
	}
	m.DroppedNotifies.WithLabelValues(id).Inc()
}

func (m *Metrics) IPCRequest(command, status string) {
	if m == nil {
		return
	}
	m.IPCRequests.WithLabelValues(command, status).Inc()
}
