// Package middleware provides backend decorators for storekit stores:
// Prometheus metrics and OpenTelemetry tracing around every dispatch.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/storekit-dev/storekit/pkg/storekit"
)

// MetricsConfig configures the Prometheus dispatch metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "storekit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics backend.
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

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "storekit",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus collectors for dispatch instrumentation.
type metrics struct {
	dispatchesTotal  *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	errorsTotal      *prometheus.CounterVec
}

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		dispatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatches_total",
			Help:        "Total number of actions dispatched to the backend",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "phase"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Backend dispatch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"type"}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "action_errors_total",
			Help:        "Total number of ERROR lifecycle dispatches",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Prometheus wraps a backend so every dispatch is counted and timed.
//
// Metrics collected:
//   - storekit_dispatches_total: Counter of dispatches by base type and phase
//   - storekit_dispatch_duration_seconds: Histogram of backend dispatch duration
//   - storekit_action_errors_total: Counter of ERROR lifecycle dispatches
//
// Example:
//
//	backend = middleware.Prometheus(backend,
//	    middleware.WithNamespace("myapp"),
//	    middleware.WithRegistry(reg),
//	)
func Prometheus(next storekit.Backend, opts ...MetricsOption) storekit.Backend {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	m := initMetrics(config)

	return storekit.BackendFunc(func(act storekit.Action) {
		base, phase := storekit.SplitType(act.Type)

		start := time.Now()
		next.Dispatch(act)
		m.dispatchDuration.WithLabelValues(base).Observe(time.Since(start).Seconds())

		m.dispatchesTotal.WithLabelValues(base, phase.String()).Inc()
		if phase == storekit.PhaseError {
			m.errorsTotal.WithLabelValues(base).Inc()
		}
	})
}
