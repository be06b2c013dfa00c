package reactive

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures engine metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactive").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for run duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures engine metrics.
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

// WithBuckets sets the run duration histogram buckets.
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

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reactive",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors updated by a Runtime.
// A nil *Metrics records nothing.
type Metrics struct {
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	changeChecks  *prometheus.CounterVec
	batches       prometheus.Counter
	flushed       prometheus.Counter
	subscriptions prometheus.Gauge
	watches       prometheus.Gauge
	traps         prometheus.Gauge
}

// NewMetrics creates and registers engine collectors.
//
// Metrics collected:
//   - reactive_watch_runs_total: watch function invocations by trigger
//   - reactive_watch_run_duration_seconds: watch function run time
//   - reactive_change_checks_total: notifications evaluated, by result
//   - reactive_batches_total: closed batches
//   - reactive_batch_flushed_total: watches evaluated at batch exit
//   - reactive_subscriptions: live container subscriptions
//   - reactive_watches: live watches
//   - reactive_traps: installed read traps
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watch_runs_total",
			Help:        "Total number of watch function invocations",
			ConstLabels: config.ConstLabels,
		}, []string{"trigger"}),

		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watch_run_duration_seconds",
			Help:        "Watch function run time in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		changeChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "change_checks_total",
			Help:        "Total number of notifications evaluated against recorded dependencies",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		batches: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batches_total",
			Help:        "Total number of closed batches",
			ConstLabels: config.ConstLabels,
		}),

		flushed: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_flushed_total",
			Help:        "Total number of watches evaluated at batch exit",
			ConstLabels: config.ConstLabels,
		}),

		subscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscriptions",
			Help:        "Number of live container subscriptions held by watches",
			ConstLabels: config.ConstLabels,
		}),

		watches: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watches",
			Help:        "Number of live watches",
			ConstLabels: config.ConstLabels,
		}),

		traps: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "traps",
			Help:        "Number of installed read traps",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) watchCreated() {
	if m != nil {
		m.watches.Inc()
	}
}

func (m *Metrics) watchDisposed() {
	if m != nil {
		m.watches.Dec()
	}
}

func (m *Metrics) watchRan(trigger Trigger, d time.Duration) {
	if m != nil {
		m.runs.WithLabelValues(string(trigger)).Inc()
		m.runDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) changeChecked(stale bool) {
	if m == nil {
		return
	}
	result := "fresh"
	if stale {
		result = "stale"
	}
	m.changeChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) batchFlushed(pending int) {
	if m != nil {
		m.batches.Inc()
		m.flushed.Add(float64(pending))
	}
}

func (m *Metrics) subscriptionsChanged(delta int) {
	if m != nil && delta != 0 {
		m.subscriptions.Add(float64(delta))
	}
}

func (m *Metrics) setTraps(n int) {
	if m != nil {
		m.traps.Set(float64(n))
	}
}
