// Package metrics provides Prometheus metrics for the CA broadcast
// repeater. The core repeater package depends only on the Metrics type
// (never on the prometheus API directly), and is happy to receive nil,
// in which case every method is a no-op.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ca_repeater"

// Metrics holds all counters and gauges the repeater updates.
type Metrics struct {
	ClientsRegistered  prometheus.Gauge
	RegistrationsTotal prometheus.Counter
	ConfirmsSentTotal  prometheus.Counter
	FanoutDatagrams    prometheus.Counter
	FanoutSendsTotal   prometheus.Counter
	PeerRefusedTotal   prometheus.Counter
	ProbeRunsTotal     prometheus.Counter
	ProbeReapedTotal   prometheus.Counter
	LocalityRejections prometheus.Counter
}

// New creates a Metrics instance registered against the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Metrics instance registered against reg, for
// tests that want an isolated registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ClientsRegistered: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clients_registered",
			Help:      "Number of clients currently in the client table.",
		}),
		RegistrationsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Total REPEATER_REGISTER datagrams accepted (including re-registrations).",
		}),
		ConfirmsSentTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "confirms_sent_total",
			Help:      "Total REPEATER_CONFIRM messages successfully sent.",
		}),
		FanoutDatagrams: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_datagrams_total",
			Help:      "Total inbound datagrams fanned out to at least zero clients.",
		}),
		FanoutSendsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_sends_total",
			Help:      "Total individual per-client sends performed during fan-out.",
		}),
		PeerRefusedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "peer_refused_total",
			Help:      "Total ECONNREFUSED outcomes observed sending to a client.",
		}),
		ProbeRunsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_runs_total",
			Help:      "Total liveness-probe passes run.",
		}),
		ProbeReapedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_reaped_total",
			Help:      "Total clients reaped by the liveness prober.",
		}),
		LocalityRejections: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locality_rejections_total",
			Help:      "Total registrations refused because the source was not local.",
		}),
	}
}

// IncClients increments the registered-client gauge.
func (m *Metrics) IncClients() {
	if m != nil {
		m.ClientsRegistered.Inc()
	}
}

// DecClients decrements the registered-client gauge.
func (m *Metrics) DecClients() {
	if m != nil {
		m.ClientsRegistered.Dec()
	}
}

// Registration records an accepted REPEATER_REGISTER.
func (m *Metrics) Registration() {
	if m != nil {
		m.RegistrationsTotal.Inc()
	}
}

// ConfirmSent records a successfully sent REPEATER_CONFIRM.
func (m *Metrics) ConfirmSent() {
	if m != nil {
		m.ConfirmsSentTotal.Inc()
	}
}

// FanoutDatagram records one inbound datagram entering fan-out.
func (m *Metrics) FanoutDatagram() {
	if m != nil {
		m.FanoutDatagrams.Inc()
	}
}

// FanoutSend records one per-client send during fan-out.
func (m *Metrics) FanoutSend() {
	if m != nil {
		m.FanoutSendsTotal.Inc()
	}
}

// PeerRefused records an ECONNREFUSED outcome.
func (m *Metrics) PeerRefused() {
	if m != nil {
		m.PeerRefusedTotal.Inc()
	}
}

// ProbeRun records one liveness-probe pass.
func (m *Metrics) ProbeRun() {
	if m != nil {
		m.ProbeRunsTotal.Inc()
	}
}

// ProbeReaped records one client reaped by the liveness prober.
func (m *Metrics) ProbeReaped() {
	if m != nil {
		m.ProbeReapedTotal.Inc()
	}
}

// LocalityRejected records one registration refused for non-local source.
func (m *Metrics) LocalityRejected() {
	if m != nil {
		m.LocalityRejections.Inc()
	}
}
