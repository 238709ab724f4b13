// Package middleware provides observability adapters for signalstate graphs.
//
// Every adapter implements state.Instrumentation. Install one, or several
// through state.MultiInstrumentation:
//
//	state.SetInstrumentation(state.MultiInstrumentation(
//	    middleware.Prometheus(),
//	    middleware.OpenTelemetry(),
//	    middleware.NewLogging(logger),
//	))
//
// # Prometheus Metrics
//
// Prometheus counts dispatches, update requests, flushes and projector runs,
// and observes flush duration:
//   - signalstate_dispatches_total{outcome="changed|suppressed"}
//   - signalstate_updates_total{outcome="scheduled|coalesced"}
//   - signalstate_flushes_total
//   - signalstate_flush_duration_seconds
//   - signalstate_subscribers
//   - signalstate_projections_total{outcome="retained|discarded"}
//
// Expose them with promhttp:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// OpenTelemetry records one "signalstate.flush" span per pulse, timed from
// the start of delivery to its end. Activity seen since the previous flush
// is attached as attributes, so a span answers "what caused this pulse and
// what did it cost".
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("checkout"),
//	    middleware.WithFlushFilter(func(subscribers int) bool {
//	        return subscribers > 0
//	    }),
//	)
//
// # Logging
//
// NewLogging writes flushes and comparer-suppressed dispatches at debug
// level.
package middleware
