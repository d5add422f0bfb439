// Package middleware provides the HTTP middleware and metric collectors used
// by the toastd server.
//
// # Prometheus Metrics
//
// Metrics bundles the HTTP request collectors with the toast counters. It
// implements toast.Observer, so the same value is passed to the notifier of
// every live session:
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	r.Use(m.Handler)
//	n := toast.New(doc, sched, toast.WithObserver(m))
//
// Collected series (default namespace "toastd"):
//   - http_requests_total{method,route,status}
//   - http_request_duration_seconds{method,route}
//   - toasts_shown_total{type}
//   - toasts_removed_total
//   - toast_containers_created_total
//   - toasts_dropped_total{reason}
//   - live_sessions
//   - live_frames_sent_total
//
// # OpenTelemetry
//
// OpenTelemetry starts a server span per request using the global tracer
// provider. Configure the provider in main() before serving.
//
//	r.Use(middleware.OpenTelemetry(middleware.WithTracerName("toastd")))
package middleware
