package telemetry

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewWriterTracer returns a Tracer whose spans are written to w as JSON
// when they end, and a shutdown func that flushes the exporter.
func NewWriterTracer(w io.Writer, opts ...TracerOption) (*Tracer, func(context.Context) error, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps())
	if err != nil {
		return nil, nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	opts = append([]TracerOption{WithTracerProvider(tp)}, opts...)
	return NewTracer(opts...), tp.Shutdown, nil
}
