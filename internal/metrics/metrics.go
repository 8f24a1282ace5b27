// Package metrics records adder timings as Prometheus metrics and exports
// them in the node-exporter textfile format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cwbudde/ampbench/internal/vecadd"
)

// HostLabel is the accelerator label of the serial adder.
const HostLabel = "cpu"

// Collector owns a private registry so repeated runs in one process never
// collide with the default registry.
type Collector struct {
	registry *prometheus.Registry

	duration *prometheus.HistogramVec
	last     *prometheus.GaugeVec
	failures *prometheus.CounterVec
	length   prometheus.Gauge
}

// NewCollector creates a collector with all metrics registered.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ampbench_adder_duration_seconds",
			Help:    "Wall-clock time of one vector addition including data transfer.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
		}, []string{"strategy", "accelerator"}),
		last: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ampbench_adder_last_duration_seconds",
			Help: "Wall-clock time of the most recent vector addition.",
		}, []string{"strategy", "accelerator"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ampbench_adder_failures_total",
			Help: "The total number of failed vector additions.",
		}, []string{"strategy"}),
		length: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ampbench_vector_length",
			Help: "Number of elements per benchmarked vector.",
		}),
	}
}

// Observe records the outcome of one adder call.
func (c *Collector) Observe(res vecadd.Result) {
	if res.Err != nil {
		c.failures.WithLabelValues(string(res.Strategy)).Inc()
		return
	}

	acc := res.Accelerator
	if acc == "" {
		acc = HostLabel
	}
	secs := res.Elapsed().Seconds()
	c.duration.WithLabelValues(string(res.Strategy), acc).Observe(secs)
	c.last.WithLabelValues(string(res.Strategy), acc).Set(secs)
}

// SetVectorLength records the benchmarked vector length.
func (c *Collector) SetVectorLength(n int) {
	c.length.Set(float64(n))
}

// Gatherer exposes the collected metrics.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// WriteTextfile atomically writes all metrics to path.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
