// Package component is the lifecycle layer around the reconciler: one Host
// per component instance, owning its render root, element cache and
// scheduler, plus State cells whose writes schedule a rerender.
package component

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/loop"
	"github.com/vango-dev/weft/pkg/reconcile"
	"github.com/vango-dev/weft/pkg/scheduler"
	"github.com/vango-dev/weft/pkg/telemetry"
)

// DefaultInstanceID is the instance id of a Host created without
// WithInstanceID.
const DefaultInstanceID = "default"

// ErrorClass is the class of the block rendered in place of output whose
// render function panicked.
const ErrorClass = "weft-error"

// RenderFunc builds a component's output.
type RenderFunc func(f *reconcile.Factory) *dom.Node

// Option configures a Host.
type Option func(*Host)

// WithInstanceID distinguishes instances of the same class.
func WithInstanceID(id string) Option {
	return func(h *Host) {
		if id != "" {
			h.instanceID = id
		}
	}
}

// WithTag sets the host element's tag. The default is derived from the
// class name: "TodoList" becomes "weft-todo-list".
func WithTag(tag string) Option {
	return func(h *Host) { h.tag = tag }
}

// WithLightDOM renders into the host element itself instead of a shadow
// root.
func WithLightDOM() Option {
	return func(h *Host) { h.lightDOM = true }
}

// WithFactory shares a factory between hosts.
func WithFactory(f *reconcile.Factory) Option {
	return func(h *Host) { h.factory = f }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMetrics records render passes and cache sizes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(h *Host) { h.metrics = m }
}

// WithTracer traces render passes.
func WithTracer(t *telemetry.Tracer) Option {
	return func(h *Host) { h.tracer = t }
}

// WithUpdated adds a hook called after each render pass. Hooks run in the
// order they were added.
func WithUpdated(fn func()) Option {
	return func(h *Host) {
		if fn != nil {
			h.updated = append(h.updated, fn)
		}
	}
}

// Host is one mounted component instance.
type Host struct {
	className  string
	instanceID string
	id         string
	tag        string
	lightDOM   bool

	doc     *dom.Document
	frames  loop.Loop
	element *dom.Node
	root    *dom.Node
	render  RenderFunc
	items   []any
	updated []func()

	cache   *reconcile.Cache
	factory *reconcile.Factory
	sched   *scheduler.Scheduler

	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
}

// New creates a disconnected Host of class className rendering with render.
// Passes are scheduled on l.
func New(doc *dom.Document, l loop.Loop, className string, render RenderFunc, opts ...Option) *Host {
	h := &Host{
		className:  className,
		instanceID: DefaultInstanceID,
		doc:        doc,
		frames:     l,
		render:     render,
		cache:      reconcile.NewCache(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.tag == "" {
		h.tag = "weft-" + kebab(className)
	}
	if h.factory == nil {
		h.factory = reconcile.NewFactory(doc,
			reconcile.WithLogger(h.logger),
			reconcile.WithMetrics(h.metrics))
	}

	h.element = doc.CreateElement(h.tag)
	h.element.SetAttribute("data-instance", h.instanceID)
	if h.lightDOM {
		h.root = h.element
	} else {
		h.root = h.element.AttachShadow()
	}

	h.sched = scheduler.New(h.ComponentID(), l, doc,
		func() *dom.Node { return h.root },
		h.patch,
		scheduler.WithLogger(h.logger),
		scheduler.WithMetrics(h.metrics),
		scheduler.WithTracer(h.tracer),
		scheduler.WithPostRender(func() {
			for _, fn := range h.updated {
				fn()
			}
		}),
	)
	return h
}

// ComponentID returns "ClassName:instanceId".
func (h *Host) ComponentID() string {
	if h.id == "" {
		h.id = h.className + ":" + h.instanceID
	}
	return h.id
}

// Cache returns the host's element cache.
func (h *Host) Cache() *reconcile.Cache { return h.cache }

// Element returns the host element.
func (h *Host) Element() *dom.Node { return h.element }

// Root returns the render root: the shadow root, or the host element in
// light DOM mode.
func (h *Host) Root() *dom.Node { return h.root }

// Factory returns the factory the host renders with.
func (h *Host) Factory() *reconcile.Factory { return h.factory }

// Scheduler returns the host's scheduler.
func (h *Host) Scheduler() *scheduler.Scheduler { return h.sched }

// Connected reports whether the host is mounted.
func (h *Host) Connected() bool { return h.sched.Connected() }

// Connect appends the host element to parent, attaches the scheduler and
// renders synchronously.
func (h *Host) Connect(parent *dom.Node) {
	if h.sched.Connected() {
		return
	}
	if parent != nil && h.element.ParentNode() != parent {
		parent.AppendChild(h.element)
	}
	h.sched.Connect()
	h.logger.Debug("component connected", "component", h.ComponentID())
	h.sched.RenderNow()
}

// Disconnect detaches the scheduler, clears the element cache and removes
// the host element from its parent. A later Connect renders from scratch.
func (h *Host) Disconnect() {
	if !h.sched.Connected() {
		return
	}
	h.sched.Disconnect()
	h.cache.Clear()
	h.metrics.CacheSize(h.ComponentID(), 0)
	if p := h.element.ParentNode(); p != nil {
		p.RemoveChild(h.element)
	}
	h.logger.Debug("component disconnected", "component", h.ComponentID())
}

// RequestUpdate schedules a render pass.
func (h *Host) RequestUpdate() { h.sched.Request() }

// queueUpdate requests a pass from a microtask, once the current task is
// done.
func (h *Host) queueUpdate() {
	h.frames.QueueMicrotask(h.RequestUpdate)
}

// Render runs a pass now, superseding a queued one.
func (h *Host) Render() { h.sched.RenderNow() }

// HTML returns the serialised render root.
func (h *Host) HTML() string { return h.root.InnerHTML() }

func (h *Host) patch(context.Context) {
	out := h.renderOutput()
	h.items = h.factory.UpdateChildren(h.root, h.items, []any{out})
	h.metrics.CacheSize(h.ComponentID(), h.cache.Len())
}

// renderOutput runs the render function in the host's context. A panic is
// logged and replaced by an error block.
func (h *Host) renderOutput() (out *dom.Node) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error(errors.New("E020").Message,
				"code", "E020", "component", h.ComponentID(), "panic", r)
			h.metrics.Diagnostic("E020")
			out = h.errorBlock(r)
		}
	}()
	return reconcile.RunInContext(h, func() *dom.Node { return h.render(h.factory) })
}

func (h *Host) errorBlock(r any) *dom.Node {
	return h.factory.Create("div", reconcile.Props{"class": ErrorClass, "role": "alert"},
		h.factory.Create("strong", nil, "Render error in "+h.ComponentID()),
		h.factory.Create("pre", nil, fmt.Sprint(r)),
	)
}

// kebab converts a Go-style class name to a lower-case dashed tag suffix.
func kebab(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
