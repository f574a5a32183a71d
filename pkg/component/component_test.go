package component

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/loop"
	"github.com/vango-dev/weft/pkg/reconcile"
	"github.com/vango-dev/weft/pkg/scheduler"
)

type counter struct {
	host    *Host
	count   *State[int]
	renders int
}

func newCounter(t *testing.T, doc *dom.Document, l loop.Loop, opts ...Option) *counter {
	t.Helper()
	c := &counter{}
	c.host = New(doc, l, "Counter", func(f *reconcile.Factory) *dom.Node {
		c.renders++
		return f.Create("p", reconcile.Props{"class": "count"}, "Count: ", c.count.Get())
	}, opts...)
	c.count = NewState(c.host, 0)
	return c
}

func TestComponentID(t *testing.T) {
	doc := dom.NewDocument()
	l := loop.NewManual()

	a := New(doc, l, "TodoList", nil)
	if a.ComponentID() != "TodoList:default" {
		t.Errorf("ComponentID = %q", a.ComponentID())
	}
	if a.Element().Tag() != "weft-todo-list" {
		t.Errorf("tag = %q", a.Element().Tag())
	}

	b := New(doc, l, "TodoList", nil, WithInstanceID("sidebar"), WithTag("todo-box"))
	if b.ComponentID() != "TodoList:sidebar" || b.Element().Tag() != "todo-box" {
		t.Errorf("got %q <%s>", b.ComponentID(), b.Element().Tag())
	}
	if a.Cache() == b.Cache() {
		t.Error("each instance owns its cache")
	}
}

func TestBatchedWritesRenderOnce(t *testing.T) {
	doc := dom.NewDocument()
	l := loop.NewManual()
	c := newCounter(t, doc, l)
	c.host.Connect(doc.Body())

	if c.renders != 1 {
		t.Fatalf("initial renders = %d", c.renders)
	}
	p := c.host.Root().FirstChild()

	for i := 1; i <= 5; i++ {
		c.count.Set(i)
	}
	l.Tick()

	if c.renders != 2 {
		t.Errorf("renders = %d, want 2", c.renders)
	}
	if got := c.host.HTML(); got != `<p class="count">Count: 5</p>` {
		t.Errorf("HTML = %s", got)
	}
	if c.host.Root().FirstChild() != p {
		t.Error("paragraph should be reused")
	}
}

func TestEqualWriteIsIgnored(t *testing.T) {
	doc := dom.NewDocument()
	l := loop.NewManual()
	c := newCounter(t, doc, l)
	c.host.Connect(doc.Body())

	c.count.Set(0)
	c.count.Update(func(n int) int { return n })
	if l.PendingFrames() != 0 {
		t.Error("unchanged value should not schedule a pass")
	}
}

func TestBatchDefersRequests(t *testing.T) {
	doc := dom.NewDocument()
	l := loop.NewManual()
	c := newCounter(t, doc, l)
	label := NewState(c.host, "a")
	c.host.Connect(doc.Body())

	Batch(func() {
		c.count.Set(1)
		Batch(func() {
			label.Set("b")
			c.count.Set(2)
		})
		if l.PendingFrames() != 0 {
			t.Error("inner batch end must not request")
		}
	})
	if l.PendingFrames() != 0 {
		t.Error("requests should wait for the microtask checkpoint")
	}
	if n := l.Flush(); n != 1 {
		t.Errorf("Flush ran %d microtasks, want 1", n)
	}
	if l.PendingFrames() != 1 {
		t.Errorf("PendingFrames = %d, want 1", l.PendingFrames())
	}
	if _, ok := batches.Get(); ok {
		t.Error("batch state should be cleared")
	}
}

func TestRenderFaultShowsErrorBlock(t *testing.T) {
	doc := dom.NewDocument()
	l := loop.NewManual()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	fail := true
	h := New(doc, l, "Fragile", func(f *reconcile.Factory) *dom.Node {
		if fail {
			panic("no data")
		}
		return f.Create("span", nil, "ok")
	}, WithLogger(logger))
	h.Connect(doc.Body())

	block := h.Root().FirstChild()
	if block == nil || !strings.Contains(mustAttr(block, "class"), ErrorClass) {
		t.Fatalf("expected an error block, got %s", h.HTML())
	}
	if !strings.Contains(block.TextContent(), "no data") {
		t.Errorf("error block = %s", block.OuterHTML())
	}
	if !strings.Contains(logs.String(), "code=E020") {
		t.Errorf("expected E020 in logs:\n%s", logs.String())
	}
	if reconcile.CurrentComponent() != nil {
		t.Error("render context leaked after a panic")
	}

	fail = false
	h.RequestUpdate()
	l.Tick()
	if got := h.HTML(); got != "<span>ok</span>" {
		t.Errorf("HTML after recovery = %s", got)
	}
}

func mustAttr(n *dom.Node, name string) string {
	v, _ := n.GetAttribute(name)
	return v
}

func TestDisconnectClearsCache(t *testing.T) {
	doc := dom.NewDocument()
	l := loop.NewManual()
	c := newCounter(t, doc, l)
	c.host.Connect(doc.Body())

	first := c.host.Root().FirstChild()
	if c.host.Cache().Len() == 0 {
		t.Fatal("cache should be populated after a render")
	}

	c.host.Disconnect()
	if c.host.Cache().Len() != 0 {
		t.Error("Disconnect should clear the cache")
	}
	if c.host.Element().ParentNode() != nil || c.host.Connected() {
		t.Error("host should be detached")
	}
	c.count.Set(3)
	if l.PendingFrames() != 0 {
		t.Error("writes while disconnected must not schedule")
	}

	c.host.Connect(doc.Body())
	if got := c.host.Root().FirstChild(); got == first || got.TextContent() != "Count: 3" {
		t.Errorf("reconnect should render fresh nodes, got %s", c.host.HTML())
	}
	if c.host.Root().ChildCount() != 1 {
		t.Errorf("stale output left behind: %s", c.host.HTML())
	}
}

func TestLightDOM(t *testing.T) {
	doc := dom.NewDocument()
	c := newCounter(t, doc, loop.NewManual(), WithLightDOM())
	c.host.Connect(doc.Body())

	if c.host.Root() != c.host.Element() || c.host.Element().ShadowRoot() != nil {
		t.Fatal("light DOM host renders into its element")
	}
	if !strings.Contains(doc.Body().InnerHTML(), "Count: 0") {
		t.Errorf("body = %s", doc.Body().InnerHTML())
	}
}

func TestUpdatedHook(t *testing.T) {
	doc := dom.NewDocument()
	l := loop.NewManual()
	var seen []string
	var c *counter
	c = newCounter(t, doc, l, WithUpdated(func() {
		seen = append(seen, c.host.Root().FirstChild().TextContent())
	}))
	c.host.Connect(doc.Body())
	c.count.Set(7)
	l.Tick()

	if strings.Join(seen, "|") != "Count: 0|Count: 7" {
		t.Errorf("updated saw %q", seen)
	}
}

func TestTypingDefersRerender(t *testing.T) {
	doc := dom.NewDocument()
	l := loop.NewManual()

	var h *Host
	var query, results *State[string]
	h = New(doc, l, "Search", func(f *reconcile.Factory) *dom.Node {
		return f.Create("div", nil,
			f.Create("input", reconcile.Props{reconcile.KeyAttr: "q", "value": query.Get()}),
			f.Create("output", nil, results.Get()),
		)
	})
	query = NewState(h, "")
	results = NewState(h, "none")
	h.Connect(doc.Body())

	input := h.Root().FirstChild().FirstChild()
	input.Focus()
	input.SetValue("go")
	results.Set("3 hits")

	if h.Scheduler().State() != scheduler.PendingBlur {
		t.Fatalf("State = %v, want pending-blur", h.Scheduler().State())
	}
	l.Tick()
	if strings.Contains(h.HTML(), "3 hits") {
		t.Fatal("rendered while typing")
	}

	input.Blur()
	l.Tick()
	if !strings.Contains(h.HTML(), "3 hits") {
		t.Errorf("HTML after blur = %s", h.HTML())
	}
	if input.Value() != "go" {
		t.Errorf("typed value lost: %q", input.Value())
	}
}

func TestCalendarStrip(t *testing.T) {
	doc := dom.NewDocument()
	l := loop.NewManual()

	start := NewState[int](nil, 28)
	var h *Host
	h = New(doc, l, "Calendar", func(f *reconcile.Factory) *dom.Node {
		days := make([]string, 7)
		for i := range days {
			d := (start.Get()+i-1)%31 + 1
			days[i] = strconv.Itoa(d)
		}
		return f.Create("div", reconcile.Props{"class": "days"}, days)
	})
	start.host = h
	h.Connect(doc.Body())

	strip := h.Root().FirstChild()
	if strip.TextContent() != "28293031123" {
		t.Fatalf("first render = %s", strip.OuterHTML())
	}
	before := doc.Stats().Texts

	start.Set(1)
	l.Tick()

	if h.Root().FirstChild() != strip || strip.ChildCount() != 7 {
		t.Fatalf("strip = %s", strip.OuterHTML())
	}
	if strip.TextContent() != "1234567" {
		t.Errorf("days = %s", strip.OuterHTML())
	}
	if doc.Stats().Texts != before {
		t.Error("text nodes should be reused")
	}
}
