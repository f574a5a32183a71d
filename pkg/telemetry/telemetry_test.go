package telemetry

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.RenderPass("x-cal:default", OutcomeOK, 2*time.Millisecond)
	m.RenderPass("x-cal:default", OutcomeOK, time.Millisecond)
	m.RenderPass("x-cal:default", OutcomeAborted, 0)
	m.RenderDeferred("x-cal:default")
	m.NodeCreated("text")
	m.Diagnostic("W001")
	m.CacheSize("x-cal:default", 12)
	m.SnapshotOp("disk", "save", nil)
	m.SnapshotOp("disk", "load", errors.New("missing"))
	m.ClientConnected()
	m.ClientConnected()
	m.ClientDisconnected()

	if got := metricCounterValue(t, m.renderPasses.WithLabelValues("x-cal:default", OutcomeOK)); got != 2 {
		t.Errorf("render_passes_total(ok) = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.renderPasses.WithLabelValues("x-cal:default", OutcomeAborted)); got != 1 {
		t.Errorf("render_passes_total(aborted) = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.diagnostics.WithLabelValues("W001")); got != 1 {
		t.Errorf("diagnostics_total(W001) = %v, want 1", got)
	}
	if got := metricGaugeValue(t, m.cacheEntries.WithLabelValues("x-cal:default")); got != 12 {
		t.Errorf("cache_entries = %v, want 12", got)
	}
	if got := metricCounterValue(t, m.snapshotOps.WithLabelValues("disk", "load", "error")); got != 1 {
		t.Errorf("snapshot_operations_total(load,error) = %v, want 1", got)
	}
	if got := metricGaugeValue(t, m.liveClients); got != 1 {
		t.Errorf("live_clients = %v, want 1", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RenderPass("c", OutcomeOK, time.Second)
	m.RenderDeferred("c")
	m.NodeCreated("element")
	m.Diagnostic("W002")
	m.CacheSize("c", 1)
	m.SnapshotOp("s3", "list", nil)
	m.ClientConnected()
	m.ClientDisconnected()
	if m.Registry() != nil {
		t.Error("nil Metrics should have no registry")
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(WithNamespace("demo"))
	m.NodeCreated("element")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `demo_nodes_created_total{kind="element"} 1`) {
		t.Errorf("metrics output missing counter:\n%s", body)
	}
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	a := NewMetrics()
	b := NewMetrics()
	if a.Registry() == b.Registry() {
		t.Error("each Metrics should own its registry by default")
	}
}

func TestTracerStartPass(t *testing.T) {
	tr := NewTracer(WithTracerProvider(noop.NewTracerProvider()))

	ctx, span := tr.StartPass(context.Background(), "x-todo:default")
	if span == nil {
		t.Fatal("expected a span")
	}
	if !trace.SpanFromContext(ctx).SpanContext().Equal(span.SpanContext()) {
		t.Error("context should carry the pass span")
	}
	EndPass(span, OutcomeOK, 3, nil)
}

func TestNilTracerUsesGlobalProvider(t *testing.T) {
	var tr *Tracer
	_, span := tr.StartPass(context.Background(), "c")
	EndPass(span, OutcomePanic, 0, errors.New("boom"))
}

func TestPassSpanAttributes(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tr := NewTracer(WithTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))))

	_, span := tr.StartPass(context.Background(), "x-cal:default")
	EndPass(span, OutcomeOK, 7, nil)
	_, span = tr.StartPass(context.Background(), "x-cal:default")
	EndPass(span, OutcomePanic, 0, errors.New("boom"))

	ended := sr.Ended()
	if len(ended) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(ended))
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if ended[0].Name() != "weft.render" ||
		attrs["weft.component"].AsString() != "x-cal:default" ||
		attrs["weft.outcome"].AsString() != OutcomeOK ||
		attrs["weft.nodes_created"].AsInt64() != 7 {
		t.Errorf("first span = %s %v", ended[0].Name(), attrs)
	}
	if ended[1].Status().Code != codes.Error || len(ended[1].Events()) == 0 {
		t.Errorf("failed pass should record the error: %+v", ended[1].Status())
	}
}

func TestWriterTracer(t *testing.T) {
	var buf bytes.Buffer
	tr, shutdown, err := NewWriterTracer(&buf)
	if err != nil {
		t.Fatal(err)
	}
	_, span := tr.StartPass(context.Background(), "x-todo:default")
	EndPass(span, OutcomeOK, 1, nil)
	if err := shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "x-todo:default") {
		t.Errorf("exported span missing component:\n%s", buf.String())
	}
}
