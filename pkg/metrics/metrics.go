// Package metrics exposes executor activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LENAX/job-executor/pkg/core/executor"
)

const namespace = "jobexec"

// Outcome label values for JobsFinished
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

var _ executor.Observer = (*Collector)(nil)

// Collector holds the executor metrics and implements executor.Observer.
type Collector struct {
	JobsStarted    prometheus.Counter
	JobsFinished   *prometheus.CounterVec
	JobDuration    *prometheus.HistogramVec
	DrainsTotal    prometheus.Counter
	BatchesStarted prometheus.Counter
	RegistrySize   prometheus.GaugeFunc

	registry *prometheus.Registry
	size     atomic.Pointer[func() int]
}

// NewCollector creates and registers all metrics on registry.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{registry: registry}
	c.JobsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_started_total",
		Help:      "Total number of jobs started",
	})
	c.JobsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_finished_total",
		Help:      "Total number of finalized jobs by outcome",
	}, []string{"outcome"})
	c.JobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Job run time from start to settle",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
	c.DrainsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registry_drained_total",
		Help:      "Number of times the job registry became empty",
	})
	c.BatchesStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_started_total",
		Help:      "Total number of batches launched",
	})
	c.RegistrySize = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "registry_size",
		Help:      "Number of live jobs in the registry",
	}, c.sampleSize)

	registry.MustRegister(
		c.JobsStarted,
		c.JobsFinished,
		c.JobDuration,
		c.DrainsTotal,
		c.BatchesStarted,
		c.RegistrySize,
	)
	return c
}

// TrackSize sets the function sampled on every scrape for registry_size.
// The executor is usually built after its observers, hence the late binding.
func (c *Collector) TrackSize(size func() int) {
	c.size.Store(&size)
}

func (c *Collector) sampleSize() float64 {
	fn := c.size.Load()
	if fn == nil || *fn == nil {
		return 0
	}
	return float64((*fn)())
}

// Handler returns an HTTP handler serving the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// BatchStarted implements executor.BatchObserver.
func (c *Collector) BatchStarted(string, int) {
	c.BatchesStarted.Inc()
}

// JobStarted implements executor.Observer.
func (c *Collector) JobStarted(executor.JobInfo) {
	c.JobsStarted.Inc()
}

// JobFinished implements executor.Observer.
func (c *Collector) JobFinished(info executor.JobInfo, err error) {
	var outcome string
	switch {
	case err == nil:
		outcome = OutcomeSucceeded
	case info.Cancelled:
		outcome = OutcomeCancelled
	default:
		outcome = OutcomeFailed
	}
	c.JobsFinished.WithLabelValues(outcome).Inc()
	c.JobDuration.WithLabelValues(outcome).Observe(info.Duration.Seconds())
}

// RegistryDrained implements executor.Observer.
func (c *Collector) RegistryDrained() {
	c.DrainsTotal.Inc()
}
