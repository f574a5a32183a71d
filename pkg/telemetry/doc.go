// Package telemetry provides Prometheus metrics and OpenTelemetry tracing for
// the reconciler and the rerender scheduler.
//
// Both Metrics and Tracer are nil-safe, so instrumented code can hold a nil
// pointer when telemetry is not configured.
//
//	m := telemetry.NewMetrics(telemetry.WithNamespace("myapp"))
//	http.Handle("/metrics", m.Handler())
package telemetry
