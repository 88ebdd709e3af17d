// Package metrics collects and exposes operational metrics for the server:
// connection admission, dispatch queue depth, job outcomes, and backend call
// latency. Metrics are served on a separate HTTP listener so the narrow
// data-path framer never has to speak the Prometheus exposition format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus instruments for the server.
type Collector struct {
	connectionsAccepted prometheus.Counter
	connectionsRejected prometheus.Counter
	queueDepth          prometheus.Gauge

	jobsSubmitted prometheus.Counter
	jobsCompleted prometheus.Counter
	jobsFailed    prometheus.Counter

	backendCallDuration prometheus.Histogram
}

// NewCollector creates and registers the instruments on reg. Passing a
// dedicated registry keeps tests independent of global state.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		connectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tldrd_connections_accepted_total",
			Help: "Total number of connections handed to the dispatch queue",
		}),
		connectionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tldrd_connections_rejected_total",
			Help: "Total number of connections rejected because the dispatch queue was full",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tldrd_dispatch_queue_depth",
			Help: "Current number of connections waiting in the dispatch queue",
		}),
		jobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tldrd_jobs_submitted_total",
			Help: "Total number of asynchronous jobs accepted",
		}),
		jobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tldrd_jobs_completed_total",
			Help: "Total number of jobs that finished successfully",
		}),
		jobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tldrd_jobs_failed_total",
			Help: "Total number of jobs that finished in error",
		}),
		backendCallDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tldrd_backend_call_duration_seconds",
			Help:    "Latency of completion backend calls",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}

	reg.MustRegister(
		c.connectionsAccepted,
		c.connectionsRejected,
		c.queueDepth,
		c.jobsSubmitted,
		c.jobsCompleted,
		c.jobsFailed,
		c.backendCallDuration,
	)

	return c
}

// RecordAccepted counts a connection handed to the dispatch queue.
func (c *Collector) RecordAccepted() {
	if c == nil {
		return
	}
	c.connectionsAccepted.Inc()
}

// RecordRejected counts a connection turned away at admission.
func (c *Collector) RecordRejected() {
	if c == nil {
		return
	}
	c.connectionsRejected.Inc()
}

// SetQueueDepth reports the current dispatch queue length.
func (c *Collector) SetQueueDepth(depth int) {
	if c == nil {
		return
	}
	c.queueDepth.Set(float64(depth))
}

// RecordJobSubmitted counts an accepted asynchronous job.
func (c *Collector) RecordJobSubmitted() {
	if c == nil {
		return
	}
	c.jobsSubmitted.Inc()
}

// RecordJobCompleted counts a successfully finished job.
func (c *Collector) RecordJobCompleted() {
	if c == nil {
		return
	}
	c.jobsCompleted.Inc()
}

// RecordJobFailed counts a job that finished in error.
func (c *Collector) RecordJobFailed() {
	if c == nil {
		return
	}
	c.jobsFailed.Inc()
}

// ObserveBackendCall records the duration of one completion backend call.
func (c *Collector) ObserveBackendCall(seconds float64) {
	if c == nil {
		return
	}
	c.backendCallDuration.Observe(seconds)
}
