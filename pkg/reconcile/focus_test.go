package reconcile

import (
	"testing"

	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/loop"
)

// focusHarness renders into a connected shadow root and wraps each pass in
// focus capture and restore, as the scheduler does.
type focusHarness struct {
	f     *Factory
	doc   *dom.Document
	root  *dom.Node
	comp  *testComponent
	loop  *loop.Manual
	items []any
}

func newFocusHarness() *focusHarness {
	f, doc, _ := newTestFactory()
	host := doc.CreateElement("x-form")
	doc.Body().AppendChild(host)
	return &focusHarness{
		f:    f,
		doc:  doc,
		root: host.AttachShadow(),
		comp: newComponent("x-form"),
		loop: loop.NewManual(),
	}
}

func (h *focusHarness) pass(render func(f *Factory) *dom.Node) {
	snap := CaptureFocusState(h.root)
	out := RunInContext(h.comp, func() *dom.Node { return render(h.f) })
	h.items = h.f.UpdateChildren(h.root, h.items, []any{out})
	RestoreFocusState(h.root, snap, h.loop)
	h.loop.Tick()
}

func TestFocusSurvivesUpdate(t *testing.T) {
	h := newFocusHarness()
	form := func(label, value string) func(f *Factory) *dom.Node {
		return func(f *Factory) *dom.Node {
			return f.Create("form", nil,
				f.Create("p", nil, label),
				f.Create("input", Props{KeyAttr: "name", "value": value}),
			)
		}
	}

	h.pass(form("Name", "abc"))
	input := h.root.QuerySelectorAttr(KeyAttr, "name")
	input.Focus()
	input.SetSelectionRange(1, 2)

	h.pass(form("Name: abc", "abc"))
	if h.doc.ActiveElement() != input {
		t.Fatal("input should stay focused")
	}
	if input.SelectionStart() != 1 || input.SelectionEnd() != 2 {
		t.Errorf("selection = %d..%d, want 1..2", input.SelectionStart(), input.SelectionEnd())
	}

	h.pass(form("Name: abcd", "abcd"))
	if input.Value() != "abcd" {
		t.Errorf("Value = %q", input.Value())
	}
	if input.SelectionStart() != 4 || input.SelectionEnd() != 4 {
		t.Errorf("changed value should keep the caret at its end, got %d..%d",
			input.SelectionStart(), input.SelectionEnd())
	}
	if h.doc.ActiveElement() != input {
		t.Error("input should stay focused after a value change")
	}
}

func TestFocusSurvivesMove(t *testing.T) {
	h := newFocusHarness()
	list := func(order ...string) func(f *Factory) *dom.Node {
		return func(f *Factory) *dom.Node {
			items := make([]any, len(order))
			for i, k := range order {
				if k == "in" {
					items[i] = f.Create("textarea", Props{"key": k, KeyAttr: k})
					continue
				}
				items[i] = f.Create("p", Props{"key": k}, k)
			}
			return f.Create("div", nil, items)
		}
	}

	h.pass(list("a", "b", "in"))
	area := h.root.QuerySelectorAttr(KeyAttr, "in")
	area.SetValue("draft text")
	area.SetScrollTop(40)
	area.Focus()
	area.SetSelectionRange(0, 5)

	h.pass(list("in", "a", "b"))

	if h.root.FirstChild().FirstChild() != area {
		t.Fatal("textarea should be moved, not recreated")
	}
	if h.doc.ActiveElement() != area {
		t.Error("moved textarea should be focused again")
	}
	if area.SelectionStart() != 0 || area.SelectionEnd() != 5 || area.ScrollTop() != 40 {
		t.Errorf("state = %d..%d scroll %v", area.SelectionStart(), area.SelectionEnd(), area.ScrollTop())
	}
}

func TestFocusRefillsRecreatedControl(t *testing.T) {
	h := newFocusHarness()
	form := func(tag string) func(f *Factory) *dom.Node {
		return func(f *Factory) *dom.Node {
			return f.Create(tag, nil, f.Create("input", Props{"key": tag, KeyAttr: "q"}))
		}
	}

	h.pass(form("form"))
	old := h.root.QuerySelectorAttr(KeyAttr, "q")
	old.SetValue("search")
	old.Focus()

	h.pass(form("fieldset"))
	el := h.root.QuerySelectorAttr(KeyAttr, "q")
	if el == old {
		t.Fatal("expected a new control")
	}
	if el.Value() != "search" {
		t.Errorf("Value = %q, want the captured value", el.Value())
	}
	if h.doc.ActiveElement() != el {
		t.Error("recreated control should receive focus")
	}
}

func TestFocusContentEditable(t *testing.T) {
	h := newFocusHarness()
	editor := func(first bool) func(f *Factory) *dom.Node {
		return func(f *Factory) *dom.Node {
			ed := f.Create("div", Props{"key": "ed", KeyAttr: "ed", "contenteditable": "true"}, "hello world")
			bar := f.Create("nav", Props{"key": "bar"})
			if first {
				return f.Create("main", nil, bar, ed)
			}
			return f.Create("main", nil, ed, bar)
		}
	}

	h.pass(editor(true))
	ed := h.root.QuerySelectorAttr(KeyAttr, "ed")
	ed.Focus()
	h.doc.SetSelection(ed, 6, 11)

	h.pass(editor(false))

	if h.doc.ActiveElement() != ed {
		t.Fatal("editor should be focused")
	}
	sel := h.doc.Selection()
	if sel == nil || sel.Node != ed || sel.Start != 6 || sel.End != 11 {
		t.Errorf("selection = %+v", sel)
	}
}

func TestFocusIgnoresUnkeyedAndMissing(t *testing.T) {
	h := newFocusHarness()

	h.pass(func(f *Factory) *dom.Node { return f.Create("input", nil) })
	h.root.FirstChild().Focus()
	if snap := CaptureFocusState(h.root); snap != nil {
		t.Errorf("unkeyed control should not be captured: %+v", snap)
	}

	h.pass(func(f *Factory) *dom.Node { return f.Create("input", Props{KeyAttr: "gone"}) })
	h.root.FirstChild().Focus()
	snap := CaptureFocusState(h.root)
	if snap == nil || snap.Kind != FocusInput {
		t.Fatalf("snapshot = %+v", snap)
	}

	h.pass(func(f *Factory) *dom.Node { return f.Create("span", nil) })
	RestoreFocusState(h.root, snap, nil)
}
