package dom

import "strings"

// NodeType is the node kind discriminator.
type NodeType uint8

const (
	ElementNode    NodeType = iota + 1 // <div>, <svg>, custom elements
	TextNode                           // Character data
	CommentNode                        // <!-- -->
	FragmentNode                       // DocumentFragment
	ShadowRootNode                     // Shadow root attached to a host element
	DocumentNode                       // Document root
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case FragmentNode:
		return "Fragment"
	case ShadowRootNode:
		return "ShadowRoot"
	case DocumentNode:
		return "Document"
	default:
		return "Unknown"
	}
}

// Namespace identifies the element namespace.
type Namespace string

const (
	HTMLNamespace Namespace = "http://www.w3.org/1999/xhtml"
	SVGNamespace  Namespace = "http://www.w3.org/2000/svg"
)

// Attribute is a single name/value attribute pair.
type Attribute struct {
	Name  string
	Value string
}

// Node is a node in a Document tree.
type Node struct {
	typ  NodeType
	doc  *Document
	tag  string
	ns   Namespace
	data string

	parent   *Node
	children []*Node

	// host is set on shadow roots; shadow on their host element.
	host   *Node
	shadow *Node

	attrs     []Attribute
	props     map[string]any
	listeners map[string][]listenerEntry
	internal  map[any]any

	// impl is the Go implementation of a defined custom element.
	impl any

	form formState
}

// Type returns the node type.
func (n *Node) Type() NodeType { return n.typ }

// IsElement reports whether n is an element node.
func (n *Node) IsElement() bool { return n != nil && n.typ == ElementNode }

// OwnerDocument returns the document that created n.
func (n *Node) OwnerDocument() *Document { return n.doc }

// Tag returns the lowercase tag name for HTML elements and the tag as
// created for SVG elements. Empty for non-elements.
func (n *Node) Tag() string { return n.tag }

// Namespace returns the element namespace.
func (n *Node) Namespace() Namespace { return n.ns }

// IsSVG reports whether n is an SVG element.
func (n *Node) IsSVG() bool { return n.typ == ElementNode && n.ns == SVGNamespace }

// Impl returns the Go implementation of a defined custom element, or nil.
func (n *Node) Impl() any { return n.impl }

// Data returns the character data of a text or comment node.
func (n *Node) Data() string { return n.data }

// SetData replaces the character data of a text or comment node.
func (n *Node) SetData(s string) {
	if n.typ == TextNode || n.typ == CommentNode {
		n.data = s
	}
}

// Host returns the host element of a shadow root.
func (n *Node) Host() *Node { return n.host }

// ShadowRoot returns the shadow root attached to an element, or nil.
func (n *Node) ShadowRoot() *Node { return n.shadow }

// AttachShadow attaches a shadow root to an element and returns it. Calling
// it again returns the existing root.
func (n *Node) AttachShadow() *Node {
	if n.typ != ElementNode {
		return nil
	}
	if n.shadow == nil {
		n.shadow = &Node{typ: ShadowRootNode, doc: n.doc, host: n}
		n.doc.count(ShadowRootNode)
	}
	return n.shadow
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	switch n.typ {
	case TextNode, CommentNode:
		return n.data
	}
	var b strings.Builder
	n.appendText(&b)
	return b.String()
}

func (n *Node) appendText(b *strings.Builder) {
	for _, c := range n.children {
		switch c.typ {
		case TextNode:
			b.WriteString(c.data)
		case ElementNode, FragmentNode:
			c.appendText(b)
		}
	}
}

// SetTextContent replaces all children with a single text node.
func (n *Node) SetTextContent(s string) {
	switch n.typ {
	case TextNode, CommentNode:
		n.data = s
		return
	}
	for len(n.children) > 0 {
		n.RemoveChild(n.children[len(n.children)-1])
	}
	if s != "" {
		n.AppendChild(n.doc.CreateTextNode(s))
	}
}

// SetInternal stores engine-private data on n under key.
func (n *Node) SetInternal(key, value any) {
	if n.internal == nil {
		n.internal = make(map[any]any)
	}
	n.internal[key] = value
}

// Internal returns engine-private data stored under key.
func (n *Node) Internal(key any) (any, bool) {
	if n.internal == nil {
		return nil, false
	}
	v, ok := n.internal[key]
	return v, ok
}

// DeleteInternal removes engine-private data stored under key.
func (n *Node) DeleteInternal(key any) {
	delete(n.internal, key)
}
