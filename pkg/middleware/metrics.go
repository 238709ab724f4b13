package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/signalstate/pkg/state"
)

// MetricsConfig configures the Prometheus instrumentation.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "signalstate").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush duration.
	// Default: FlushBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// FlushBuckets are the default flush duration buckets, 10µs to 250ms.
var FlushBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .025, .05, .1, .25}

// MetricsOption configures the Prometheus instrumentation.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "signalstate",
		Buckets:   FlushBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a state.Instrumentation that records graph activity as
// Prometheus metrics.
type Metrics struct {
	dispatches    *prometheus.CounterVec
	schedules     *prometheus.CounterVec
	flushes       prometheus.Counter
	flushDuration prometheus.Histogram
	subscribers   prometheus.Gauge
	projections   *prometheus.CounterVec
}

var _ state.Instrumentation = (*Metrics)(nil)

// Prometheus creates and registers the graph metrics.
//
// Metrics collected:
//   - signalstate_dispatches_total: Counter of dispatches by outcome (changed, suppressed)
//   - signalstate_updates_total: Counter of update requests by outcome (scheduled, coalesced)
//   - signalstate_flushes_total: Counter of delivered pulses
//   - signalstate_flush_duration_seconds: Histogram of pulse delivery time
//   - signalstate_subscribers: Gauge of signal stream subscribers at the last flush
//   - signalstate_projections_total: Counter of projector runs by outcome (retained, discarded)
//
// Example:
//
//	state.SetInstrumentation(middleware.Prometheus(
//	    middleware.WithNamespace("myapp"),
//	))
//
//	http.Handle("/metrics", promhttp.Handler())
//
// Registering twice against the same registry panics, as promauto does.
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return initMetrics(config)
}

func initMetrics(config MetricsConfig) *Metrics {
	factory := promauto.With(config.Registry)

	return &Metrics{
		dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatches_total",
			Help:        "Total number of dispatches by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		schedules: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Total number of update requests by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of pulses delivered on the signal stream",
			ConstLabels: config.ConstLabels,
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Time spent delivering one pulse to every subscriber",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscribers",
			Help:        "Number of signal stream subscribers at the last flush",
			ConstLabels: config.ConstLabels,
		}),

		projections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "projections_total",
			Help:        "Total number of projector runs by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),
	}
}

// OnDispatch implements state.Instrumentation.
func (m *Metrics) OnDispatch(changed bool) {
	outcome := "changed"
	if !changed {
		outcome = "suppressed"
	}
	m.dispatches.WithLabelValues(outcome).Inc()
}

// OnSchedule implements state.Instrumentation.
func (m *Metrics) OnSchedule(coalesced bool) {
	outcome := "scheduled"
	if coalesced {
		outcome = "coalesced"
	}
	m.schedules.WithLabelValues(outcome).Inc()
}

// OnFlush implements state.Instrumentation.
func (m *Metrics) OnFlush(start, end time.Time, subscribers int) {
	m.flushes.Inc()
	m.flushDuration.Observe(end.Sub(start).Seconds())
	m.subscribers.Set(float64(subscribers))
}

// OnProject implements state.Instrumentation.
func (m *Metrics) OnProject(retained bool) {
	outcome := "retained"
	if !retained {
		outcome = "discarded"
	}
	m.projections.WithLabelValues(outcome).Inc()
}
