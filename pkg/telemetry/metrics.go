package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "weft").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render pass duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: a fresh registry owned by the Metrics value.
	Registry *prometheus.Registry
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "weft",
		// Render passes are sub-millisecond for small trees.
		Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
	}
}

// Pass outcomes recorded by RenderPass.
const (
	OutcomeOK      = "ok"
	OutcomeAborted = "aborted"
	OutcomePanic   = "panic"
)

// Metrics holds the engine's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	renderPasses   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	renderDeferred *prometheus.CounterVec
	nodesCreated   *prometheus.CounterVec
	diagnostics    *prometheus.CounterVec
	cacheEntries   *prometheus.GaugeVec
	snapshotOps    *prometheus.CounterVec
	liveClients    prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
//
// Metrics collected:
//   - weft_render_passes_total: render passes by component and outcome
//   - weft_render_duration_seconds: render pass duration by component
//   - weft_render_deferred_total: passes deferred until blur
//   - weft_nodes_created_total: DOM nodes created by kind
//   - weft_diagnostics_total: reconciler warnings by code
//   - weft_cache_entries: cached elements per component
//   - weft_snapshot_operations_total: snapshot store calls
//   - weft_live_clients: connected preview websockets
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		registry: config.Registry,

		renderPasses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_passes_total",
			Help:        "Total number of render passes",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "outcome"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),

		renderDeferred: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_deferred_total",
			Help:        "Render requests deferred until the focused control blurs",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		nodesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_created_total",
			Help:        "DOM nodes created by the element factory",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "diagnostics_total",
			Help:        "Reconciler diagnostics by code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		cacheEntries: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cache_entries",
			Help:        "Cached elements per component",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		snapshotOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "snapshot_operations_total",
			Help:        "Snapshot store operations by backend, operation and status",
			ConstLabels: config.ConstLabels,
		}, []string{"backend", "op", "status"}),

		liveClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_clients",
			Help:        "Connected live preview clients",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns an HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RenderPass records one render pass.
func (m *Metrics) RenderPass(component, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.renderPasses.WithLabelValues(component, outcome).Inc()
	if outcome == OutcomeOK {
		m.renderDuration.WithLabelValues(component).Observe(d.Seconds())
	}
}

// RenderDeferred records a request parked until blur.
func (m *Metrics) RenderDeferred(component string) {
	if m == nil {
		return
	}
	m.renderDeferred.WithLabelValues(component).Inc()
}

// NodeCreated records a node created by the factory.
func (m *Metrics) NodeCreated(kind string) {
	if m == nil {
		return
	}
	m.nodesCreated.WithLabelValues(kind).Inc()
}

// Diagnostic records a reconciler warning.
func (m *Metrics) Diagnostic(code string) {
	if m == nil {
		return
	}
	m.diagnostics.WithLabelValues(code).Inc()
}

// CacheSize records the number of cached elements of a component.
func (m *Metrics) CacheSize(component string, n int) {
	if m == nil {
		return
	}
	m.cacheEntries.WithLabelValues(component).Set(float64(n))
}

// SnapshotOp records a snapshot store call.
func (m *Metrics) SnapshotOp(backend, op string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.snapshotOps.WithLabelValues(backend, op, status).Inc()
}

// ClientConnected records a live preview client joining.
func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.liveClients.Inc()
}

// ClientDisconnected records a live preview client leaving.
func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.liveClients.Dec()
}
