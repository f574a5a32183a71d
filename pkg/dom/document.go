package dom

import (
	"strings"
	"sync"
)

// Stats counts nodes created by a Document, by kind.
type Stats struct {
	Elements  int
	Texts     int
	Comments  int
	Fragments int
}

// Total returns the total number of nodes created.
func (s Stats) Total() int {
	return s.Elements + s.Texts + s.Comments + s.Fragments
}

// Definition describes a custom element. New returns the Go implementation
// backing each created element; it should return a pointer to a struct so
// that exported fields are settable as properties.
type Definition struct {
	New func() any
}

// Document owns a node tree rooted at <html>.
type Document struct {
	root *Node
	html *Node
	head *Node
	body *Node

	active    *Node
	selection *Selection

	listeners map[string][]listenerEntry
	nextID    ListenerID

	stats Stats

	defsMu sync.RWMutex
	defs   map[string]Definition
}

// NewDocument creates an empty document with <html>, <head> and <body>.
func NewDocument() *Document {
	d := &Document{}
	d.root = &Node{typ: DocumentNode, doc: d}
	d.html = d.CreateElement("html")
	d.head = d.CreateElement("head")
	d.body = d.CreateElement("body")
	d.root.AppendChild(d.html)
	d.html.AppendChild(d.head)
	d.html.AppendChild(d.body)
	d.stats = Stats{}
	return d
}

// Root returns the document node.
func (d *Document) Root() *Node { return d.root }

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *Node { return d.html }

// Head returns the <head> element.
func (d *Document) Head() *Node { return d.head }

// Body returns the <body> element.
func (d *Document) Body() *Node { return d.body }

// Stats returns node creation counters.
func (d *Document) Stats() Stats { return d.stats }

// Define registers a custom element definition for tag.
func (d *Document) Define(tag string, def Definition) {
	d.defsMu.Lock()
	defer d.defsMu.Unlock()
	if d.defs == nil {
		d.defs = make(map[string]Definition)
	}
	d.defs[strings.ToLower(tag)] = def
}

// Defined reports whether tag has a registered definition.
func (d *Document) Defined(tag string) bool {
	d.defsMu.RLock()
	defer d.defsMu.RUnlock()
	_, ok := d.defs[strings.ToLower(tag)]
	return ok
}

func (d *Document) definition(tag string) (Definition, bool) {
	d.defsMu.RLock()
	defer d.defsMu.RUnlock()
	def, ok := d.defs[tag]
	return def, ok
}

// CreateElement creates an HTML element. The tag is lowercased.
func (d *Document) CreateElement(tag string) *Node {
	tag = strings.ToLower(tag)
	n := &Node{typ: ElementNode, doc: d, tag: tag, ns: HTMLNamespace}
	if def, ok := d.definition(tag); ok && def.New != nil {
		n.impl = def.New()
	}
	n.form.selectedIndex = -1
	d.count(ElementNode)
	return n
}

// CreateElementNS creates an element in the given namespace. SVG tags keep
// their case (linearGradient, foreignObject).
func (d *Document) CreateElementNS(ns Namespace, tag string) *Node {
	if ns == "" || ns == HTMLNamespace {
		return d.CreateElement(tag)
	}
	n := &Node{typ: ElementNode, doc: d, tag: tag, ns: ns}
	d.count(ElementNode)
	return n
}

// CreateTextNode creates a text node.
func (d *Document) CreateTextNode(s string) *Node {
	d.count(TextNode)
	return &Node{typ: TextNode, doc: d, data: s}
}

// CreateComment creates a comment node.
func (d *Document) CreateComment(s string) *Node {
	d.count(CommentNode)
	return &Node{typ: CommentNode, doc: d, data: s}
}

// CreateDocumentFragment creates an empty fragment.
func (d *Document) CreateDocumentFragment() *Node {
	d.count(FragmentNode)
	return &Node{typ: FragmentNode, doc: d}
}

func (d *Document) count(t NodeType) {
	switch t {
	case ElementNode:
		d.stats.Elements++
	case TextNode:
		d.stats.Texts++
	case CommentNode:
		d.stats.Comments++
	case FragmentNode, ShadowRootNode:
		d.stats.Fragments++
	}
}

// ActiveElement returns the focused element anywhere in the document,
// including inside shadow trees, or nil.
func (d *Document) ActiveElement() *Node { return d.active }
