// Package observability groups the logging, metrics and tracing packages.
//
// Subpackages:
//   - logging: slog construction and context propagation
//   - metrics: Prometheus metrics registered with promauto
//   - tracing: OpenTelemetry provider setup and HTTP middleware
package observability
