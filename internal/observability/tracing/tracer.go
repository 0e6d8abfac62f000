package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of every span created by this service.
const TracerName = "news-ingest"

// GetTracer returns the tracer for creating spans.
// It is looked up on each call so a provider installed later (main, tests)
// takes effect immediately.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "ingest.extract")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// Setup installs an SDK tracer provider and the W3C trace-context propagator
// as the process-wide defaults. Spans get real trace IDs (used for the
// X-Trace-Id header and log correlation); no exporter is attached.
// The returned function flushes and shuts the provider down.
func Setup() func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown
}
