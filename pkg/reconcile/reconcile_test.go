package reconcile

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/weft/pkg/dom"
)

type testComponent struct {
	id    string
	cache *Cache
}

func (c *testComponent) ComponentID() string { return c.id }
func (c *testComponent) Cache() *Cache       { return c.cache }

func newComponent(class string) *testComponent {
	return &testComponent{id: class + ":default", cache: NewCache()}
}

func newTestFactory(opts ...Option) (*Factory, *dom.Document, *bytes.Buffer) {
	doc := dom.NewDocument()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	f := NewFactory(doc, append([]Option{WithLogger(logger)}, opts...)...)
	return f, doc, &buf
}

func texts(n *dom.Node) []string {
	var out []string
	for _, c := range n.ChildNodes() {
		if c.Type() == dom.TextNode {
			out = append(out, c.Data())
		}
	}
	return out
}

func TestGenerateKeyPriority(t *testing.T) {
	cache := NewCache()
	tests := []struct {
		name  string
		props Props
		want  string
	}{
		{"key wins over index", Props{"key": "a", "_idx": 3}, "c:1:li:key-a"},
		{"numeric key", Props{"key": 7}, "c:1:li:key-7"},
		{"index", Props{"_idx": 3}, "c:1:li:idx-3"},
		{"nil key falls through", Props{"key": nil, "_idx": 0}, "c:1:li:idx-0"},
		{"position id", Props{"_pos": "p12"}, "c:1:li:p12"},
		{"no-id sentinel", Props{"_pos": NoPositionID}, "c:1:li:auto-1"},
		{"auto", nil, "c:1:li:auto-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateKey("li", tt.props, "c:1", cache); got != tt.want {
				t.Errorf("GenerateKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAutoKeysStableAcrossPasses(t *testing.T) {
	cache := NewCache()
	pass := func() []string {
		ResetCounterForNewRenderPass(cache)
		return []string{
			GenerateKey("div", nil, "c", cache),
			GenerateKey("span", nil, "c", cache),
		}
	}
	a, b := pass(), pass()
	if a[0] != b[0] || a[1] != b[1] {
		t.Errorf("auto keys differ across passes: %v vs %v", a, b)
	}
}

func TestGenerateKeyWithoutCache(t *testing.T) {
	a := GenerateKey("div", nil, "c", nil)
	b := GenerateKey("div", nil, "c", nil)
	if !strings.HasPrefix(a, "c:div:") || a == b {
		t.Errorf("fallback keys = %q, %q; want distinct keys with prefix", a, b)
	}
}

func TestMarkAndPreserve(t *testing.T) {
	doc := dom.NewDocument()

	owned := doc.CreateElement("div")
	Mark(owned, "c:div:auto-1")
	if key, ok := GetMark(owned); !ok || key != "c:div:auto-1" {
		t.Errorf("GetMark = %q, %v", key, ok)
	}
	if !IsFrameworkOwned(owned) || ShouldPreserve(owned) {
		t.Error("marked element should be owned and not preserved")
	}

	foreign := doc.CreateElement("div")
	if IsFrameworkOwned(foreign) || !ShouldPreserve(foreign) {
		t.Error("unmarked element should be preserved")
	}

	owned.SetAttribute(PreserveAttr, "")
	if !ShouldPreserve(owned) {
		t.Error("preserve attribute should win over ownership")
	}

	text := doc.CreateTextNode("x")
	Mark(text, "k")
	if IsFrameworkOwned(text) || ShouldPreserve(text) {
		t.Error("text nodes are neither owned nor preserved")
	}

	parsed := doc.CreateElement("b")
	MarkManaged(parsed)
	if ShouldPreserve(parsed) {
		t.Error("managed parsed content should not be preserved")
	}
}

func TestRunInContextNests(t *testing.T) {
	outer, inner := newComponent("x-outer"), newComponent("x-inner")

	if CurrentComponent() != nil || CurrentCache() != nil {
		t.Fatal("no component should be current outside a render")
	}

	RunInContext(outer, func() *dom.Node {
		RunInContext(inner, func() *dom.Node {
			if CurrentComponent() != inner {
				t.Error("inner component should be current")
			}
			return nil
		})
		if CurrentComponent() != outer || CurrentCache() != outer.cache {
			t.Error("outer component should be restored")
		}
		return nil
	})

	if CurrentComponent() != nil {
		t.Error("slot should be empty after the render")
	}
}

func TestRunInContextRestoresOnPanic(t *testing.T) {
	c := newComponent("x-boom")
	func() {
		defer func() { _ = recover() }()
		RunInContext(c, func() *dom.Node { panic("render failed") })
	}()
	if CurrentComponent() != nil {
		t.Error("slot should be restored after a panic")
	}
}

func TestRunInContextResetsCounter(t *testing.T) {
	c := newComponent("x-c")
	c.cache.nextAuto()
	c.cache.nextAuto()
	RunInContext(c, func() *dom.Node {
		if got := GenerateKey("p", nil, c.id, c.cache); got != "x-c:default:p:auto-1" {
			t.Errorf("first key in pass = %q", got)
		}
		return nil
	})
}

func TestCacheLifecycle(t *testing.T) {
	doc := dom.NewDocument()
	c := NewCache()
	n := doc.CreateElement("div")

	c.Set("k", n)
	c.SetMetadata(n, &Metadata{Props: Props{"id": "a"}})
	if !c.Has("k") || c.Len() != 1 {
		t.Fatal("entry not stored")
	}
	if m, ok := c.Metadata(n); !ok || m.Props["id"] != "a" {
		t.Errorf("Metadata = %+v, %v", m, ok)
	}

	other := NewCache()
	if _, ok := other.Metadata(n); ok {
		t.Error("metadata must be scoped to its cache")
	}

	c.Clear()
	if c.Has("k") || c.Len() != 0 {
		t.Error("Clear should drop entries")
	}
	if _, ok := c.Metadata(n); ok {
		t.Error("Clear should drop metadata")
	}
}

func TestClassify(t *testing.T) {
	doc := dom.NewDocument()
	doc.Define("x-list", dom.Definition{New: func() any { return &listElement{} }})

	div := doc.CreateElement("div")
	list := doc.CreateElement("x-list")
	svg := doc.CreateElementNS(dom.SVGNamespace, "circle")
	input := doc.CreateElement("input")

	tests := []struct {
		node *dom.Node
		prop string
		want Classification
	}{
		{div, "title", Attribute},
		{div, "data-id", Attribute},
		{div, "aria-label", Attribute},
		{div, "config", Attribute},
		{div, "textContent", Property},
		{div, "tagName", ReadonlyFallback},
		{list, "items", Property},
		{list, "total", ReadonlyFallback},
		{svg, "cx", Attribute},
		{svg, "textContent", Attribute},
		{input, "selectionStart", Property},
	}
	for _, tt := range tests {
		if got := Classify(tt.node, tt.prop); got != tt.want {
			t.Errorf("Classify(%s, %s) = %v, want %v", tt.node.Tag(), tt.prop, got, tt.want)
		}
	}
}

type listElement struct {
	Items []string
	Title string
	total int
}

func (l *listElement) Total() int { return l.total }

func TestCreateOutsideContext(t *testing.T) {
	f, _, _ := newTestFactory()
	a := f.Create("div", Props{"id": "x"}, "hi")
	b := f.Create("div", Props{"id": "x"}, "hi")
	if a == b {
		t.Error("uncached creates must return new nodes")
	}
	if !IsFrameworkOwned(a) {
		t.Error("factory output is marked")
	}
	if got := a.OuterHTML(); got != `<div id="x">hi</div>` {
		t.Errorf("OuterHTML = %s", got)
	}
}

func TestCacheFaultFallsBack(t *testing.T) {
	f, _, logs := newTestFactory(WithDebug(true))
	broken := &testComponent{id: "x-broken:default", cache: &Cache{}}

	var n *dom.Node
	RunInContext(broken, func() *dom.Node {
		n = f.Create("span", nil, "ok")
		return n
	})
	if n == nil || n.TextContent() != "ok" {
		t.Fatalf("fallback node = %v", n)
	}
	if !strings.Contains(logs.String(), "code=W004") {
		t.Errorf("expected W004 in logs:\n%s", logs)
	}
}

func TestTagMismatchRecreates(t *testing.T) {
	f, doc, logs := newTestFactory()
	c := newComponent("x-swap")

	stray := doc.CreateElement("span")
	c.cache.Set("x-swap:default:div:key-k", stray)
	second := RunInContext(c, func() *dom.Node { return f.Create("div", Props{"key": "k"}) })

	if second == stray || second.Tag() != "div" {
		t.Errorf("cached node with another tag should be replaced, got %s", second.Tag())
	}
	if !strings.Contains(logs.String(), "code=W009") {
		t.Errorf("expected W009 in logs:\n%s", logs)
	}
	if n, _ := c.cache.Get("x-swap:default:div:key-k"); n != second {
		t.Error("cache should hold the new node")
	}
}

func TestDuplicateKeyInPass(t *testing.T) {
	f, _, logs := newTestFactory()
	c := newComponent("x-dup")

	var list *dom.Node
	RunInContext(c, func() *dom.Node {
		list = f.Create("ul", nil,
			f.Create("li", Props{"key": "same"}, "one"),
			f.Create("li", Props{"key": "same"}, "two"),
		)
		return list
	})

	if list.ChildCount() != 2 || list.ChildAt(0) == list.ChildAt(1) {
		t.Fatalf("both items should render as distinct nodes, got %s", list.OuterHTML())
	}
	if !strings.Contains(logs.String(), "code=W001") {
		t.Errorf("expected W001 in logs:\n%s", logs)
	}
	if n, _ := c.cache.Get("x-dup:default:li:key-same"); n != list.ChildAt(1) {
		t.Error("later writer should own the key")
	}
}

func TestSVGNamespace(t *testing.T) {
	f, _, _ := newTestFactory()
	svg := f.Create("svg", Props{"viewBox": "0 0 10 10"},
		f.Create("linearGradient", Props{"id": "g"}),
		f.Create("circle", Props{"cx": 5, "r": 2}),
	)
	if !svg.IsSVG() || !svg.ChildAt(0).IsSVG() {
		t.Fatal("svg elements should be in the SVG namespace")
	}
	if svg.ChildAt(0).Tag() != "linearGradient" {
		t.Errorf("tag case lost: %s", svg.ChildAt(0).Tag())
	}
	if v, _ := svg.GetAttribute("viewBox"); v != "0 0 10 10" {
		t.Errorf("viewBox = %q", v)
	}
	if v, _ := svg.ChildAt(1).GetAttribute("cx"); v != "5" {
		t.Errorf("cx = %q", v)
	}
}
