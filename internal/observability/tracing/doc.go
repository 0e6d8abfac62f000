// Package tracing provides OpenTelemetry tracing integration: the service
// tracer, process-wide provider setup and the HTTP server middleware.
package tracing
