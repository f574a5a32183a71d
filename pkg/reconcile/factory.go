package reconcile

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/telemetry"
)

// Defaults for Factory options.
const (
	DefaultMaxFlattenDepth   = 10
	DefaultMaxAttributeBytes = 1 << 20
)

// Raw is an HTML string rendered as parsed nodes.
type Raw string

// Factory creates and reconciles elements for render functions.
type Factory struct {
	doc          *dom.Document
	logger       *slog.Logger
	metrics      *telemetry.Metrics
	maxDepth     int
	maxAttrBytes int
	debug        bool
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(f *Factory) {
		f.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(f *Factory) {
		f.metrics = m
	}
}

// WithMaxFlattenDepth bounds child-list nesting.
func WithMaxFlattenDepth(n int) Option {
	return func(f *Factory) {
		if n > 0 {
			f.maxDepth = n
		}
	}
}

// WithMaxAttributeBytes sets the serialised attribute size above which a
// warning is logged.
func WithMaxAttributeBytes(n int) Option {
	return func(f *Factory) {
		if n > 0 {
			f.maxAttrBytes = n
		}
	}
}

// WithDebug enables development diagnostics such as cache fault logging.
func WithDebug(debug bool) Option {
	return func(f *Factory) {
		f.debug = debug
	}
}

// NewFactory creates a Factory producing nodes owned by doc.
func NewFactory(doc *dom.Document, opts ...Option) *Factory {
	f := &Factory{
		doc:          doc,
		logger:       slog.Default(),
		maxDepth:     DefaultMaxFlattenDepth,
		maxAttrBytes: DefaultMaxAttributeBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Document returns the document nodes are created in.
func (f *Factory) Document() *dom.Document { return f.doc }

// Create returns the element for (tag, props, children). Inside
// RunInContext the element is looked up in the current component's cache
// and patched in place; outside, or when the cache faults, a fresh
// uncached element is built.
func (f *Factory) Create(tag string, props Props, children ...any) *dom.Node {
	tag = normalizeTag(tag)
	comp := CurrentComponent()
	if comp == nil || comp.Cache() == nil {
		return f.createPlain(tag, props, children)
	}

	n, err := f.createCached(comp, tag, props, children)
	if err != nil {
		f.metrics.Diagnostic("W004")
		if f.debug {
			f.logger.Warn(errors.New("W004").Message,
				"code", "W004", "component", comp.ComponentID(), "tag", tag, "error", err)
		}
		return f.createPlain(tag, props, children)
	}
	return n
}

// Fragment returns a document fragment holding children.
func (f *Factory) Fragment(children ...any) *dom.Node {
	frag := f.doc.CreateDocumentFragment()
	for _, it := range f.flatten(children) {
		if s, ok := it.(string); ok {
			frag.AppendChild(f.text(s))
			continue
		}
		frag.AppendChild(it.(*dom.Node))
	}
	return frag
}

func (f *Factory) createCached(comp Component, tag string, props Props, children []any) (n *dom.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	cache := comp.Cache()
	key := GenerateKey(tag, props, comp.ComponentID(), cache)

	n, hit := cache.Get(key)
	if !cache.claim(key) {
		f.warn("W001", "component", comp.ComponentID(), "key", key)
		hit = false
	}
	if hit && n.Tag() != tag {
		f.warn("W009", "key", key, "cached", n.Tag(), "tag", tag)
		hit = false
	}

	if hit {
		meta, ok := cache.Metadata(n)
		if !ok {
			meta = &Metadata{}
		}
		f.UpdateProps(n, meta.Props, props, tag)
		items := f.UpdateChildren(n, meta.Children, children)
		selectValue(n, meta.Props, props)
		cache.SetMetadata(n, &Metadata{Props: copyProps(props), Children: items})
		return n, nil
	}

	n = f.element(tag)
	Mark(n, key)
	f.UpdateProps(n, nil, props, tag)
	items := f.UpdateChildren(n, nil, children)
	selectValue(n, nil, props)
	cache.Set(key, n)
	cache.SetMetadata(n, &Metadata{Props: copyProps(props), Children: items})
	return n, nil
}

func (f *Factory) createPlain(tag string, props Props, children []any) *dom.Node {
	n := f.element(tag)
	Mark(n, "")
	f.UpdateProps(n, nil, props, tag)
	f.UpdateChildren(n, nil, children)
	selectValue(n, nil, props)
	return n
}

// selectValue applies a new or changed value prop of a select once its
// options are in place. An unchanged prop leaves the user's choice alone.
func selectValue(n *dom.Node, oldProps, props Props) {
	if n.Tag() != "select" || n.IsSVG() {
		return
	}
	v, ok := props["value"]
	if !ok || v == nil {
		return
	}
	if old, had := oldProps["value"]; had && sameValue(old, v) {
		return
	}
	n.SetValue(stringify(v))
}

func (f *Factory) element(tag string) *dom.Node {
	f.metrics.NodeCreated("element")
	if svgTags[tag] {
		return f.doc.CreateElementNS(dom.SVGNamespace, tag)
	}
	return f.doc.CreateElement(tag)
}

func (f *Factory) text(s string) *dom.Node {
	f.metrics.NodeCreated("text")
	return f.doc.CreateTextNode(s)
}

// warn logs a registered diagnostic and counts it.
func (f *Factory) warn(code string, args ...any) {
	f.metrics.Diagnostic(code)
	f.logger.Warn(errors.New(code).Message, append([]any{"code", code}, args...)...)
}

func copyProps(p Props) Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func normalizeTag(tag string) string {
	if svgTags[tag] {
		return tag
	}
	return strings.ToLower(tag)
}

// svgTags are created in the SVG namespace. Names shared with HTML (a,
// title, script, style) stay HTML.
var svgTags = map[string]bool{
	"svg": true, "g": true, "path": true, "circle": true, "ellipse": true,
	"line": true, "polyline": true, "polygon": true, "rect": true,
	"text": true, "tspan": true, "textPath": true, "defs": true, "use": true,
	"symbol": true, "marker": true, "clipPath": true, "mask": true,
	"pattern": true, "linearGradient": true, "radialGradient": true,
	"stop": true, "filter": true, "foreignObject": true, "image": true,
	"feGaussianBlur": true, "feOffset": true, "feBlend": true,
	"feColorMatrix": true, "feMerge": true, "feMergeNode": true,
}
