package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses s as HTML in the context of element context (or
// <body> when nil) and returns the resulting top-level nodes, owned by d
// and detached.
func (d *Document) ParseFragment(context *Node, s string) ([]*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	if context != nil && context.typ == ElementNode && context.ns == HTMLNamespace {
		ctx.Data = context.tag
		ctx.DataAtom = atom.Lookup([]byte(context.tag))
	}
	parsed, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(parsed))
	for _, hn := range parsed {
		if n := d.fromHTML(hn); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

func (d *Document) fromHTML(hn *html.Node) *Node {
	var n *Node
	switch hn.Type {
	case html.TextNode:
		return d.CreateTextNode(hn.Data)
	case html.CommentNode:
		return d.CreateComment(hn.Data)
	case html.ElementNode:
		if hn.Namespace == "svg" {
			n = d.CreateElementNS(SVGNamespace, hn.Data)
		} else {
			n = d.CreateElement(hn.Data)
		}
		for _, a := range hn.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			n.SetAttribute(name, a.Val)
		}
	default:
		return nil
	}
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if cn := d.fromHTML(c); cn != nil {
			n.AppendChild(cn)
		}
	}
	return n
}

// SetInnerHTML replaces n's children with the parsed HTML.
func (n *Node) SetInnerHTML(s string) error {
	nodes, err := n.doc.ParseFragment(n, s)
	if err != nil {
		return err
	}
	for len(n.children) > 0 {
		n.RemoveChild(n.children[len(n.children)-1])
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// OuterHTML serialises n, including open shadow roots.
func (n *Node) OuterHTML() string {
	var buf bytes.Buffer
	for _, hn := range n.toHTML() {
		_ = html.Render(&buf, hn)
	}
	return buf.String()
}

// InnerHTML serialises n's children.
func (n *Node) InnerHTML() string {
	var buf bytes.Buffer
	for _, c := range n.children {
		for _, hn := range c.toHTML() {
			_ = html.Render(&buf, hn)
		}
	}
	return buf.String()
}

// toHTML converts n into x/net/html nodes. Fragments, shadow roots and the
// document node expand to their children.
func (n *Node) toHTML() []*html.Node {
	switch n.typ {
	case TextNode:
		return []*html.Node{{Type: html.TextNode, Data: n.data}}
	case CommentNode:
		return []*html.Node{{Type: html.CommentNode, Data: n.data}}
	case FragmentNode, ShadowRootNode, DocumentNode:
		var out []*html.Node
		for _, c := range n.children {
			out = append(out, c.toHTML()...)
		}
		return out
	}
	hn := &html.Node{Type: html.ElementNode, Data: n.tag}
	if n.ns == SVGNamespace {
		hn.Namespace = "svg"
	} else {
		hn.DataAtom = atom.Lookup([]byte(n.tag))
	}
	for _, a := range n.attrs {
		hn.Attr = append(hn.Attr, html.Attribute{Key: a.Name, Val: a.Value})
	}
	if n.shadow != nil {
		tpl := &html.Node{
			Type:     html.ElementNode,
			Data:     "template",
			DataAtom: atom.Template,
			Attr:     []html.Attribute{{Key: "shadowrootmode", Val: "open"}},
		}
		for _, c := range n.shadow.children {
			for _, ch := range c.toHTML() {
				tpl.AppendChild(ch)
			}
		}
		hn.AppendChild(tpl)
	}
	for _, c := range n.children {
		for _, ch := range c.toHTML() {
			hn.AppendChild(ch)
		}
	}
	return []*html.Node{hn}
}
