package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Dispatch outcomes used as the outcome label
const (
	OutcomeSent     = "sent"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

// Metrics holds all Prometheus metrics for the campaigner
type Metrics struct {
	// Dispatch
	DispatchesTotal     *prometheus.CounterVec
	DispatchesInflight  prometheus.Gauge
	MessagesSentTotal   prometheus.Counter
	MessagesFailedTotal prometheus.Counter

	// Scheduler
	SchedulerTicksTotal    prometheus.Counter
	SchedulerPromotedTotal prometheus.Counter

	// Provider
	DomainRefreshErrorsTotal prometheus.Counter

	// State gauges
	Campaigns *prometheus.GaugeVec
	Contacts  prometheus.Gauge

	// API metrics
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec

	// System metrics
	UptimeSeconds    prometheus.Gauge
	Goroutines       prometheus.Gauge
	StorageUsedBytes prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		DispatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaigner_dispatches_total",
				Help: "Total number of dispatch runs by trigger and outcome",
			},
			[]string{"trigger", "outcome"},
		),
		DispatchesInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "campaigner_dispatches_inflight",
				Help: "Number of dispatch loops currently running",
			},
		),
		MessagesSentTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "campaigner_messages_sent_total",
				Help: "Total number of messages accepted by the gateway",
			},
		),
		MessagesFailedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "campaigner_messages_failed_total",
				Help: "Total number of messages rejected by the gateway",
			},
		),

		SchedulerTicksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "campaigner_scheduler_ticks_total",
				Help: "Total number of scheduler evaluations",
			},
		),
		SchedulerPromotedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "campaigner_scheduler_promoted_total",
				Help: "Total number of scheduled campaigns handed to dispatch",
			},
		),

		DomainRefreshErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "campaigner_domain_refresh_errors_total",
				Help: "Total number of failed provider domain listings",
			},
		),

		Campaigns: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "campaigner_campaigns",
				Help: "Number of campaigns by status",
			},
			[]string{"status"},
		),
		Contacts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "campaigner_contacts",
				Help: "Number of contacts across all lists",
			},
		),

		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaigner_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campaigner_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		UptimeSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "campaigner_uptime_seconds",
				Help: "Process uptime in seconds",
			},
		),
		Goroutines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "campaigner_goroutines",
				Help: "Number of active goroutines",
			},
		),
		StorageUsedBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "campaigner_storage_used_bytes",
				Help: "State database file size in bytes",
			},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.DispatchesTotal,
		m.DispatchesInflight,
		m.MessagesSentTotal,
		m.MessagesFailedTotal,
		m.SchedulerTicksTotal,
		m.SchedulerPromotedTotal,
		m.DomainRefreshErrorsTotal,
		m.Campaigns,
		m.Contacts,
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.UptimeSeconds,
		m.Goroutines,
		m.StorageUsedBytes,
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetGlobal sets the global metrics instance
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Global returns the global metrics instance
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}

// IncDispatches counts a finished or rejected dispatch
func IncDispatches(trigger, outcome string) {
	if m := Global(); m != nil {
		m.DispatchesTotal.WithLabelValues(trigger, outcome).Inc()
	}
}

// IncInflight marks a dispatch loop as started
func IncInflight() {
	if m := Global(); m != nil {
		m.DispatchesInflight.Inc()
	}
}

// DecInflight marks a dispatch loop as finished
func DecInflight() {
	if m := Global(); m != nil {
		m.DispatchesInflight.Dec()
	}
}

// IncMessagesSent increments the sent message counter
func IncMessagesSent() {
	if m := Global(); m != nil {
		m.MessagesSentTotal.Inc()
	}
}

// IncMessagesFailed increments the failed message counter
func IncMessagesFailed() {
	if m := Global(); m != nil {
		m.MessagesFailedTotal.Inc()
	}
}

// IncSchedulerTicks increments the scheduler tick counter
func IncSchedulerTicks() {
	if m := Global(); m != nil {
		m.SchedulerTicksTotal.Inc()
	}
}

// IncSchedulerPromoted increments the counter of campaigns started by the scheduler
func IncSchedulerPromoted() {
	if m := Global(); m != nil {
		m.SchedulerPromotedTotal.Inc()
	}
}

// IncDomainRefreshErrors increments the failed domain listing counter
func IncDomainRefreshErrors() {
	if m := Global(); m != nil {
		m.DomainRefreshErrorsTotal.Inc()
	}
}
