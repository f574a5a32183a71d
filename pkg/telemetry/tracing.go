package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name.
const defaultTracerName = "weft"

// TracerConfig configures render pass tracing.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "weft").
	TracerName string

	// Provider is the tracer provider. Default: the global provider.
	Provider trace.TracerProvider
}

// TracerOption configures render pass tracing.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = tp
	}
}

// Tracer starts spans around render passes. A nil *Tracer uses the global
// provider.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer.
//
// Configure the global provider in main() to export spans:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		return &Tracer{tracer: otel.Tracer(config.TracerName)}
	}
	return &Tracer{tracer: config.Provider.Tracer(config.TracerName)}
}

// StartPass starts a span for one render pass of a component.
func (t *Tracer) StartPass(ctx context.Context, componentID string) (context.Context, trace.Span) {
	tr := otel.Tracer(defaultTracerName)
	if t != nil && t.tracer != nil {
		tr = t.tracer
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return tr.Start(ctx, "weft.render",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("weft.component", componentID)),
	)
}

// EndPass records the outcome of a pass and ends its span.
func EndPass(span trace.Span, outcome string, nodes int, err error) {
	span.SetAttributes(
		attribute.String("weft.outcome", outcome),
		attribute.Int("weft.nodes_created", nodes),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
