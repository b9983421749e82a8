package rebase

import (
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "rpi-index-lab/internal/rebase"

// defaultTracer discards spans. Diagnostic tracing is enabled by passing a
// real TracerProvider through WithTracerProvider.
func defaultTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(tracerName)
}
