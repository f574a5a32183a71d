package reconcile

import (
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/loop"
)

// KeyAttr is the stable key a focusable control must carry for its focus
// and caret to survive a render pass.
const KeyAttr = "data-key"

// FocusKind is the kind of control a FocusSnapshot was taken from.
type FocusKind string

const (
	FocusInput           FocusKind = "input"
	FocusTextarea        FocusKind = "textarea"
	FocusSelect          FocusKind = "select"
	FocusContentEditable FocusKind = "contenteditable"
)

// FocusSnapshot is the focus state of a keyed control before a pass.
type FocusSnapshot struct {
	Key  string
	Kind FocusKind

	Value string

	// HasSelection is set for text controls and contenteditable elements.
	HasSelection   bool
	SelectionStart int
	SelectionEnd   int

	ScrollTop     float64
	SelectedIndex int

	node *dom.Node
}

// CaptureFocusState records the focused control inside root. It returns
// nil when nothing inside root is focused or the focused element has no
// KeyAttr or is not a form control or contenteditable.
func CaptureFocusState(root *dom.Node) *FocusSnapshot {
	if root == nil {
		return nil
	}
	el := root.ActiveElement()
	if el == nil {
		return nil
	}
	key, ok := el.GetAttribute(KeyAttr)
	if !ok || key == "" {
		return nil
	}

	s := &FocusSnapshot{Key: key, node: el}
	switch {
	case el.Tag() == "select":
		s.Kind = FocusSelect
		s.Value = el.Value()
		s.SelectedIndex = el.SelectedIndex()
	case el.Tag() == "textarea":
		s.Kind = FocusTextarea
		s.Value = el.Value()
		s.ScrollTop = el.ScrollTop()
		s.HasSelection = true
		s.SelectionStart, s.SelectionEnd = el.SelectionStart(), el.SelectionEnd()
	case el.Tag() == "input":
		s.Kind = FocusInput
		s.Value = el.Value()
		if el.IsTextControl() {
			s.HasSelection = true
			s.SelectionStart, s.SelectionEnd = el.SelectionStart(), el.SelectionEnd()
		}
	case el.IsContentEditable():
		s.Kind = FocusContentEditable
		s.Value = el.TextContent()
		if sel := el.OwnerDocument().Selection(); sel != nil && sel.Node == el {
			s.HasSelection = true
			s.SelectionStart, s.SelectionEnd = sel.Start, sel.End
		}
	default:
		return nil
	}
	return s
}

// RestoreFocusState re-focuses the control snap was taken from, found by
// its KeyAttr inside root. A control the pass recreated with an empty value
// gets the captured value at once; focus, caret and scroll are re-applied
// on the next frame of l, or immediately when l is nil. A control that is
// gone is ignored.
func RestoreFocusState(root *dom.Node, snap *FocusSnapshot, l loop.Loop) {
	if root == nil || snap == nil {
		return
	}
	el := root.QuerySelectorAttr(KeyAttr, snap.Key)
	if el == nil {
		return
	}

	recreated := el != snap.node
	if recreated {
		refill(el, snap)
	}

	apply := func() {
		if !el.IsConnected() {
			return
		}
		if recreated {
			refill(el, snap)
		}
		el.Focus(dom.FocusOptions{PreventScroll: true})

		switch snap.Kind {
		case FocusInput, FocusTextarea:
			// A value the render changed keeps the caret SetValue gave it.
			if snap.HasSelection && el.Value() == snap.Value {
				el.SetSelectionRange(snap.SelectionStart, snap.SelectionEnd)
			}
			if snap.Kind == FocusTextarea {
				el.SetScrollTop(snap.ScrollTop)
			}
		case FocusContentEditable:
			if snap.HasSelection && el.TextContent() == snap.Value {
				el.OwnerDocument().SetSelection(el, snap.SelectionStart, snap.SelectionEnd)
			}
		}
	}

	if l == nil {
		apply()
		return
	}
	l.RequestAnimationFrame(apply)
}

// refill restores the captured value on a control that lost it.
func refill(el *dom.Node, snap *FocusSnapshot) {
	switch snap.Kind {
	case FocusInput, FocusTextarea:
		if el.Value() == "" && snap.Value != "" {
			el.SetValue(snap.Value)
		}
	case FocusSelect:
		if el.SelectedIndex() != snap.SelectedIndex {
			el.SetSelectedIndex(snap.SelectedIndex)
		}
	}
}
