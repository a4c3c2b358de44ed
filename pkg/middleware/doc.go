// Package middleware provides observability decorators for storekit
// backends.
//
// Each decorator wraps a storekit.Backend and instruments every dispatch
// that flows through it, so a store wired with a decorated backend needs
// no changes of its own.
//
// # Prometheus Metrics
//
//	backend = middleware.Prometheus(backend,
//	    middleware.WithNamespace("myapp"),
//	)
//
// Collects dispatch counters by action type and lifecycle phase, backend
// dispatch latency, and ERROR dispatch totals.
//
// # OpenTelemetry Tracing
//
//	backend = middleware.OpenTelemetry(backend)
//
// Starts one span per dispatch, tagged with the base action type and
// phase; ERROR dispatches mark the span failed and record the error
// payload.
//
// Decorators compose in wrapping order:
//
//	backend = middleware.OpenTelemetry(middleware.Prometheus(inner))
package middleware
