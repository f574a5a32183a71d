package dom

// ParentNode returns the parent of n, or nil.
func (n *Node) ParentNode() *Node { return n.parent }

// ChildNodes returns a copy of n's children.
func (n *Node) ChildNodes() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of children of n.
func (n *Node) ChildCount() int { return len(n.children) }

// ChildAt returns the child at index i, or nil when out of range.
func (n *Node) ChildAt(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// FirstChild returns the first child of n, or nil.
func (n *Node) FirstChild() *Node { return n.ChildAt(0) }

// LastChild returns the last child of n, or nil.
func (n *Node) LastChild() *Node { return n.ChildAt(len(n.children) - 1) }

// NextSibling returns the sibling after n, or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	return n.parent.ChildAt(i + 1)
}

// PreviousSibling returns the sibling before n, or nil.
func (n *Node) PreviousSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	if i <= 0 {
		return nil
	}
	return n.parent.children[i-1]
}

// IndexInParent returns the position of n among its siblings, or -1.
func (n *Node) IndexInParent() int {
	if n.parent == nil {
		return -1
	}
	return n.parent.indexOf(n)
}

func (n *Node) indexOf(c *Node) int {
	for i, x := range n.children {
		if x == c {
			return i
		}
	}
	return -1
}

// AppendChild appends c to n, moving it from its current parent if needed.
func (n *Node) AppendChild(c *Node) *Node {
	return n.InsertBefore(c, nil)
}

// InsertBefore inserts c before ref, or at the end when ref is nil. A node
// that already has a parent is moved. Inserting a fragment moves its
// children. Returns nil when ref is not a child of n or the insertion would
// create a cycle.
func (n *Node) InsertBefore(c, ref *Node) *Node {
	if c == nil || c == n {
		return nil
	}
	if ref != nil && ref.parent != n {
		return nil
	}
	if c == ref {
		return c
	}
	if c.typ == FragmentNode {
		for _, fc := range c.ChildNodes() {
			n.InsertBefore(fc, ref)
		}
		return c
	}
	if c.typ == DocumentNode || c.typ == ShadowRootNode || c.containsDeep(n) {
		return nil
	}
	if c.parent != nil {
		c.parent.detach(c)
	}
	idx := len(n.children)
	if ref != nil {
		idx = n.indexOf(ref)
	}
	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = c
	c.parent = n
	return c
}

// RemoveChild removes c from n. Returns nil when c is not a child of n.
func (n *Node) RemoveChild(c *Node) *Node {
	if c == nil || c.parent != n {
		return nil
	}
	n.detach(c)
	return c
}

// ReplaceChild replaces old with c. Returns the removed node, or nil when
// old is not a child of n.
func (n *Node) ReplaceChild(c, old *Node) *Node {
	if old == nil || old.parent != n || c == nil {
		return nil
	}
	if c == old {
		return old
	}
	if c.typ == FragmentNode {
		n.InsertBefore(c, old)
		n.detach(old)
		return old
	}
	if c.containsDeep(n) {
		return nil
	}
	if c.parent != nil {
		c.parent.detach(c)
	}
	idx := n.indexOf(old)
	n.children[idx] = c
	c.parent = n
	old.parent = nil
	n.doc.focusFixup(old)
	return old
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.detach(n)
	}
}

func (n *Node) detach(c *Node) {
	i := n.indexOf(c)
	if i < 0 {
		return
	}
	copy(n.children[i:], n.children[i+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	c.parent = nil
	n.doc.focusFixup(c)
}

// Contains reports whether other is n or a descendant of n within the same
// tree. Shadow boundaries are not crossed.
func (n *Node) Contains(other *Node) bool {
	for x := other; x != nil; x = x.parent {
		if x == n {
			return true
		}
	}
	return false
}

// containsDeep is Contains crossing shadow roots into their hosts.
func (n *Node) containsDeep(other *Node) bool {
	for x := other; x != nil; {
		if x == n {
			return true
		}
		if x.parent == nil && x.typ == ShadowRootNode {
			x = x.host
			continue
		}
		x = x.parent
	}
	return false
}

// RootNode returns the top-most ancestor of n without crossing shadow roots.
func (n *Node) RootNode() *Node {
	x := n
	for x.parent != nil {
		x = x.parent
	}
	return x
}

// IsConnected reports whether n is in its document, including through
// shadow hosts.
func (n *Node) IsConnected() bool {
	return n.doc != nil && n.doc.root.containsDeep(n)
}

// Walk calls fn for n and each descendant in document order, without
// entering shadow roots. Returning false from fn skips that node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.ChildNodes() {
		c.Walk(fn)
	}
}

// QuerySelectorAttr returns the first descendant element of n carrying
// attribute name with the given value, or nil.
func (n *Node) QuerySelectorAttr(name, value string) *Node {
	var found *Node
	n.Walk(func(x *Node) bool {
		if found != nil {
			return false
		}
		if x != n && x.typ == ElementNode {
			if v, ok := x.GetAttribute(name); ok && v == value {
				found = x
				return false
			}
		}
		return true
	})
	return found
}

// Elements returns the element children of n.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.typ == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func (d *Document) focusFixup(removed *Node) {
	if d == nil || d.active == nil {
		return
	}
	if removed.containsDeep(d.active) {
		d.active = nil
		d.selection = nil
	}
}
