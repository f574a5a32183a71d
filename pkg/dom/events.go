package dom

// Event is dispatched to listeners on a node and its ancestors.
type Event struct {
	Type          string
	Target        *Node
	CurrentTarget *Node
	Detail        any

	stopped bool
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// EventListener handles an Event.
type EventListener func(*Event)

// ListenerID identifies a registered listener so it can be removed.
// Go funcs are not comparable, so removal is by ID instead of by value.
type ListenerID uint64

type listenerEntry struct {
	id ListenerID
	fn EventListener
}

// AddEventListener registers fn for events of type typ on n.
func (n *Node) AddEventListener(typ string, fn EventListener) ListenerID {
	if fn == nil {
		return 0
	}
	if n.listeners == nil {
		n.listeners = make(map[string][]listenerEntry)
	}
	id := n.doc.newListenerID()
	n.listeners[typ] = append(n.listeners[typ], listenerEntry{id: id, fn: fn})
	return id
}

// RemoveEventListener unregisters the listener with the given id.
func (n *Node) RemoveEventListener(typ string, id ListenerID) bool {
	if n.listeners == nil {
		return false
	}
	var ok bool
	n.listeners[typ], ok = removeListener(n.listeners[typ], id)
	return ok
}

// ListenerCount returns the number of listeners registered for typ.
func (n *Node) ListenerCount(typ string) int { return len(n.listeners[typ]) }

// AddEventListener registers a document-level listener. Document listeners
// observe every dispatched event after it has bubbled through the tree,
// including non-bubbling focus events, like a capture listener would.
func (d *Document) AddEventListener(typ string, fn EventListener) ListenerID {
	if fn == nil {
		return 0
	}
	if d.listeners == nil {
		d.listeners = make(map[string][]listenerEntry)
	}
	id := d.newListenerID()
	d.listeners[typ] = append(d.listeners[typ], listenerEntry{id: id, fn: fn})
	return id
}

// RemoveEventListener unregisters a document-level listener.
func (d *Document) RemoveEventListener(typ string, id ListenerID) bool {
	if d.listeners == nil {
		return false
	}
	var ok bool
	d.listeners[typ], ok = removeListener(d.listeners[typ], id)
	return ok
}

// ListenerCount returns the number of document-level listeners for typ.
func (d *Document) ListenerCount(typ string) int { return len(d.listeners[typ]) }

func (d *Document) newListenerID() ListenerID {
	d.nextID++
	return d.nextID
}

func removeListener(list []listenerEntry, id ListenerID) ([]listenerEntry, bool) {
	for i, e := range list {
		if e.id == id {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}

// DispatchEvent delivers ev to n, then to each ancestor (crossing shadow
// roots into their hosts) until propagation is stopped, then to document
// listeners.
func (n *Node) DispatchEvent(ev *Event) {
	if ev.Target == nil {
		ev.Target = n
	}
	for x := n; x != nil && !ev.stopped; {
		ev.CurrentTarget = x
		for _, e := range append([]listenerEntry(nil), x.listeners[ev.Type]...) {
			e.fn(ev)
		}
		if x.parent == nil && x.typ == ShadowRootNode {
			x = x.host
			continue
		}
		x = x.parent
	}
	if n.doc != nil {
		ev.CurrentTarget = nil
		for _, e := range append([]listenerEntry(nil), n.doc.listeners[ev.Type]...) {
			e.fn(ev)
		}
	}
}

// FocusOptions mirrors the options of HTMLElement.focus.
type FocusOptions struct {
	PreventScroll bool
}

// Focus makes n the active element. The previously focused element gets a
// blur event and n gets a focus event. Focusing the active element is a
// no-op.
func (n *Node) Focus(opts ...FocusOptions) {
	if n.typ != ElementNode || n.doc == nil || !n.IsConnected() {
		return
	}
	d := n.doc
	if d.active == n {
		return
	}
	prev := d.active
	d.active = n
	if d.selection != nil && d.selection.Node != n {
		d.selection = nil
	}
	if prev != nil {
		prev.DispatchEvent(&Event{Type: "blur"})
	}
	n.DispatchEvent(&Event{Type: "focus"})
}

// Blur removes focus from n if it is the active element.
func (n *Node) Blur() {
	if n.doc == nil || n.doc.active != n {
		return
	}
	n.doc.active = nil
	n.doc.selection = nil
	n.DispatchEvent(&Event{Type: "blur"})
}

// ActiveElement returns the focused element when it lies inside the tree
// rooted at n (a shadow root, document node or any subtree), else nil.
func (n *Node) ActiveElement() *Node {
	if n.doc == nil || n.doc.active == nil {
		return nil
	}
	if n.typ == DocumentNode {
		return n.doc.active
	}
	if n.Contains(n.doc.active) {
		return n.doc.active
	}
	return nil
}

// Selection is a caret range inside a contenteditable element, expressed
// as rune offsets into its text content.
type Selection struct {
	Node  *Node
	Start int
	End   int
}

// Selection returns the current contenteditable selection, or nil.
func (d *Document) Selection() *Selection {
	if d.selection == nil {
		return nil
	}
	s := *d.selection
	return &s
}

// SetSelection places the caret range inside el. Offsets are clamped to
// the element's text length.
func (d *Document) SetSelection(el *Node, start, end int) {
	if el == nil {
		d.selection = nil
		return
	}
	l := len([]rune(el.TextContent()))
	start = clamp(start, 0, l)
	end = clamp(end, start, l)
	d.selection = &Selection{Node: el, Start: start, End: end}
}
