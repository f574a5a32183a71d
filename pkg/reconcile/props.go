package reconcile

import (
	"encoding/json"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/vango-dev/weft/pkg/dom"
)

// Ref receives the element it is attached to, and nil when the element is
// removed or the ref prop is dropped.
type Ref struct {
	Current *dom.Node
}

type (
	listenerSlot struct{ event string }
	refSlot      struct{}
)

// UpdateProps applies the difference between oldProps and newProps to n.
// Props are visited in name order so attribute order is deterministic.
func (f *Factory) UpdateProps(n *dom.Node, oldProps, newProps Props, tag string) {
	for _, name := range slices.Sorted(maps.Keys(oldProps)) {
		if _, ok := newProps[name]; !ok {
			f.removeProp(n, name, oldProps[name])
		}
	}
	for _, name := range slices.Sorted(maps.Keys(newProps)) {
		v := newProps[name]
		old, had := oldProps[name]
		if had {
			if name == PropRef {
				if sameRef(old, v) && hasRef(n) {
					continue
				}
			} else if sameValue(old, v) {
				continue
			}
		}
		f.setProp(n, name, old, had, v, tag)
	}
}

func (f *Factory) setProp(n *dom.Node, name string, old any, had bool, v any, tag string) {
	if name == PropRef {
		f.setRef(n, old, v)
		return
	}
	if IsInternalProp(name) {
		return
	}
	if had && isListener(name, old) && !isListener(name, v) {
		removeListener(n, name)
	}
	if v == nil {
		if had {
			f.removeProp(n, name, old)
		}
		return
	}

	switch {
	case name == "className" || name == "class":
		n.SetAttribute("class", stringify(v))
	case name == "style":
		s, ok := v.(string)
		if !ok {
			f.warn("W005", "tag", tag, "type", reflect.TypeOf(v).String())
			n.RemoveAttribute("style")
			return
		}
		n.SetAttribute("style", s)
	case isListener(name, v):
		setListener(n, name, v)
	case isBool(v):
		setBool(n, name, v.(bool))
	case name == "value" && isValueControl(n):
		n.SetValue(stringify(v))
	default:
		f.assign(n, name, v, tag)
	}
}

func (f *Factory) removeProp(n *dom.Node, name string, old any) {
	switch {
	case name == PropRef:
		callRef(old, nil)
		n.DeleteInternal(refSlot{})
	case IsInternalProp(name):
	case isListener(name, old):
		removeListener(n, name)
	case name == "className" || name == "class":
		n.RemoveAttribute("class")
	case name == "style":
		n.RemoveAttribute("style")
	case name == "value" && isValueControl(n):
		n.SetValue("")
	case isBool(old):
		setBool(n, name, false)
	default:
		n.RemoveAttribute(name)
		n.DeleteProperty(name)
	}
}

// assign writes a non-special prop: standard and SVG attributes through
// SetAttribute, writable element properties by assignment, everything else
// as a serialised attribute.
func (f *Factory) assign(n *dom.Node, name string, v any, tag string) {
	if Classify(n, name) == Property {
		err := n.SetProperty(name, v)
		if err == nil {
			return
		}
		f.warn("W006", "tag", tag, "prop", name, "error", err)
	}
	if s, ok := f.serialize(tag, name, v); ok {
		n.SetAttribute(name, s)
	}
}

// serialize renders v as an attribute value. Objects and arrays become
// JSON; values that cannot be encoded are reported and skipped.
func (f *Factory) serialize(tag, name string, v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int:
		return strconv.Itoa(x), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer,
		reflect.Func, reflect.Chan, reflect.UnsafePointer:
		b, err := json.Marshal(v)
		if err != nil {
			f.warn("W002", "tag", tag, "attr", name, "error", err)
			return "", false
		}
		if len(b) > f.maxAttrBytes {
			f.warn("W003", "tag", tag, "attr", name, "bytes", len(b), "limit", f.maxAttrBytes)
		}
		return string(b), true
	}
	return stringify(v), true
}

// setBool applies binary attribute semantics: true sets the attribute to
// "" and false removes it. Form-control state follows the attribute.
func setBool(n *dom.Node, name string, on bool) {
	attr := name
	if !n.IsSVG() {
		attr = strings.ToLower(name)
	}
	if on {
		n.SetAttribute(attr, "")
	} else {
		n.RemoveAttribute(attr)
	}

	if n.IsSVG() {
		return
	}
	switch attr {
	case "checked":
		if n.Tag() == "input" {
			n.SetChecked(on)
		}
	case "disabled":
		n.SetDisabled(on)
	case "readonly":
		n.SetReadOnly(on)
	case "selected":
		if n.Tag() == "option" {
			n.SetSelected(on)
		}
	}
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isValueControl(n *dom.Node) bool {
	if n.IsSVG() {
		return false
	}
	switch n.Tag() {
	case "input", "textarea", "select":
		return true
	}
	return false
}

// isListener reports whether name is an on* prop carrying a handler.
func isListener(name string, v any) bool {
	if len(name) < 3 || !strings.HasPrefix(name, "on") {
		return false
	}
	return toListener(v) != nil
}

func toListener(v any) dom.EventListener {
	switch fn := v.(type) {
	case dom.EventListener:
		return fn
	case func(*dom.Event):
		return fn
	case func():
		return func(*dom.Event) { fn() }
	}
	return nil
}

func eventName(prop string) string {
	return strings.ToLower(prop[2:])
}

// setListener replaces the listener previously installed for the event.
func setListener(n *dom.Node, name string, v any) {
	removeListener(n, name)
	event := eventName(name)
	id := n.AddEventListener(event, toListener(v))
	n.SetInternal(listenerSlot{event}, id)
}

func removeListener(n *dom.Node, name string) {
	slot := listenerSlot{eventName(name)}
	if id, ok := n.Internal(slot); ok {
		n.RemoveEventListener(slot.event, id.(dom.ListenerID))
		n.DeleteInternal(slot)
	}
}

func (f *Factory) setRef(n *dom.Node, old, v any) {
	if v == nil {
		callRef(old, nil)
		n.DeleteInternal(refSlot{})
		return
	}
	if old != nil && !sameRef(old, v) {
		callRef(old, nil)
	}
	callRef(v, n)
	n.SetInternal(refSlot{}, v)
}

func callRef(r any, n *dom.Node) {
	switch ref := r.(type) {
	case func(*dom.Node):
		ref(n)
	case *Ref:
		ref.Current = n
	}
}

func hasRef(n *dom.Node) bool {
	_, ok := n.Internal(refSlot{})
	return ok
}

// releaseRefs calls the ref of every element in the subtree with nil.
func releaseRefs(root *dom.Node) {
	root.Walk(func(c *dom.Node) bool {
		if r, ok := c.Internal(refSlot{}); ok {
			callRef(r, nil)
			c.DeleteInternal(refSlot{})
		}
		return true
	})
}

// sameRef reports whether two ref props are the same *Ref. Callback refs
// are never the same, so they are called again on every pass.
func sameRef(a, b any) bool {
	ra, ok := a.(*Ref)
	rb, okb := b.(*Ref)
	return ok && okb && ra == rb
}

// sameValue reports whether a prop value is unchanged. Funcs always count
// as changed; scalars compare with ==; pointers by identity, then, like
// maps, slices and structs, by deep equality of everything they hold,
// unexported fields included.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta.Kind() == reflect.Func {
		return false
	}
	switch ta.Kind() {
	case reflect.Pointer:
		if reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer() {
			return true
		}
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
	default:
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
