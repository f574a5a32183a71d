package dom

import (
	"strings"
	"unicode/utf8"
)

// formState is the live (property-side) state of form controls.
type formState struct {
	value         string
	valueDirty    bool
	checked       bool
	checkedDirty  bool
	disabled      bool
	readOnly      bool
	selected      bool
	selectedDirty bool
	selStart      int
	selEnd        int
	scrollTop     float64
	selectedIndex int
}

var textInputTypes = map[string]bool{
	"":         true,
	"text":     true,
	"search":   true,
	"url":      true,
	"tel":      true,
	"password": true,
}

// IsTextControl reports whether n is a textarea or a text-like input that
// supports a selection range.
func (n *Node) IsTextControl() bool {
	switch n.tag {
	case "textarea":
		return n.ns == HTMLNamespace
	case "input":
		t, _ := n.GetAttribute("type")
		return n.ns == HTMLNamespace && textInputTypes[strings.ToLower(t)]
	}
	return false
}

// IsContentEditable reports whether n carries an enabled contenteditable
// attribute.
func (n *Node) IsContentEditable() bool {
	if n.typ != ElementNode {
		return false
	}
	v, ok := n.GetAttribute("contenteditable")
	return ok && strings.ToLower(v) != "false"
}

// Value returns the current value of a form control.
func (n *Node) Value() string {
	switch n.tag {
	case "input":
		return n.form.value
	case "textarea":
		if n.form.valueDirty {
			return n.form.value
		}
		return n.TextContent()
	case "select":
		if opt := n.selectedOption(); opt != nil {
			return opt.Value()
		}
		return ""
	case "option":
		if v, ok := n.GetAttribute("value"); ok {
			return v
		}
		return strings.TrimSpace(n.TextContent())
	}
	v, _ := n.GetAttribute("value")
	return v
}

// SetValue sets the live value of a form control. Text controls move the
// caret to the end when the value actually changes.
func (n *Node) SetValue(v string) {
	switch n.tag {
	case "input", "textarea":
		if n.Value() == v && n.form.valueDirty {
			return
		}
		changed := n.Value() != v
		n.form.value = v
		n.form.valueDirty = true
		if changed {
			end := utf8.RuneCountInString(v)
			n.form.selStart, n.form.selEnd = end, end
		}
	case "select":
		matched := false
		for _, opt := range n.Options() {
			sel := !matched && opt.Value() == v
			if sel {
				matched = true
			}
			opt.form.selected = sel
			opt.form.selectedDirty = true
		}
	case "option":
		n.SetAttribute("value", v)
	default:
		n.SetAttribute("value", v)
	}
}

// Checked returns the checkedness of a checkbox or radio input.
func (n *Node) Checked() bool { return n.form.checked }

// SetChecked sets the live checkedness without touching the attribute.
func (n *Node) SetChecked(b bool) {
	n.form.checked = b
	n.form.checkedDirty = true
}

// Disabled reports the disabled state. The property reflects the attribute.
func (n *Node) Disabled() bool { return n.form.disabled }

// SetDisabled sets or removes the disabled attribute.
func (n *Node) SetDisabled(b bool) { n.toggleAttr("disabled", b) }

// ReadOnly reports the readonly state. The property reflects the attribute.
func (n *Node) ReadOnly() bool { return n.form.readOnly }

// SetReadOnly sets or removes the readonly attribute.
func (n *Node) SetReadOnly(b bool) { n.toggleAttr("readonly", b) }

func (n *Node) toggleAttr(name string, on bool) {
	if on {
		if !n.HasAttribute(name) {
			n.SetAttribute(name, "")
		}
		return
	}
	n.RemoveAttribute(name)
}

// Selected returns the selectedness of an option.
func (n *Node) Selected() bool { return n.form.selected }

// SetSelected sets the selectedness of an option. In a single-select
// parent the other options are deselected.
func (n *Node) SetSelected(b bool) {
	n.form.selected = b
	n.form.selectedDirty = true
	if !b {
		return
	}
	sel := n.closestSelect()
	if sel == nil || sel.HasAttribute("multiple") {
		return
	}
	for _, opt := range sel.Options() {
		if opt != n {
			opt.form.selected = false
			opt.form.selectedDirty = true
		}
	}
}

func (n *Node) closestSelect() *Node {
	for p := n.parent; p != nil; p = p.parent {
		if p.tag == "select" {
			return p
		}
	}
	return nil
}

// Options returns the option descendants of a select element.
func (n *Node) Options() []*Node {
	var out []*Node
	n.Walk(func(x *Node) bool {
		if x != n && x.typ == ElementNode && x.tag == "option" {
			out = append(out, x)
			return false
		}
		return true
	})
	return out
}

func (n *Node) selectedOption() *Node {
	opts := n.Options()
	for _, o := range opts {
		if o.form.selected {
			return o
		}
	}
	if len(opts) > 0 && !n.HasAttribute("multiple") {
		return opts[0]
	}
	return nil
}

// SelectedIndex returns the index of the selected option of a select, or -1.
func (n *Node) SelectedIndex() int {
	if n.tag != "select" {
		return -1
	}
	sel := n.selectedOption()
	if sel == nil {
		return -1
	}
	for i, o := range n.Options() {
		if o == sel {
			return i
		}
	}
	return -1
}

// SetSelectedIndex selects the option at index i; -1 deselects all.
func (n *Node) SetSelectedIndex(i int) {
	for j, o := range n.Options() {
		o.form.selected = j == i
		o.form.selectedDirty = true
	}
}

// SelectionStart returns the caret start of a text control.
func (n *Node) SelectionStart() int { return n.form.selStart }

// SelectionEnd returns the caret end of a text control.
func (n *Node) SelectionEnd() int { return n.form.selEnd }

// SetSelectionRange sets the selection of a text control, clamped to the
// value length.
func (n *Node) SetSelectionRange(start, end int) {
	if !n.IsTextControl() {
		return
	}
	l := utf8.RuneCountInString(n.Value())
	start = clamp(start, 0, l)
	end = clamp(end, 0, l)
	if end < start {
		end = start
	}
	n.form.selStart, n.form.selEnd = start, end
}

// ScrollTop returns the vertical scroll offset.
func (n *Node) ScrollTop() float64 { return n.form.scrollTop }

// SetScrollTop sets the vertical scroll offset.
func (n *Node) SetScrollTop(v float64) {
	if v < 0 {
		v = 0
	}
	n.form.scrollTop = v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
