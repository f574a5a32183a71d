package reconcile

import "github.com/vango-dev/weft/pkg/dom"

// PreserveAttr forces a node to be left alone by the child reconciler,
// whether or not the engine created it.
const PreserveAttr = "data-weft-preserve"

type (
	markSlot    struct{}
	managedSlot struct{}
)

// Mark records that n was created by the engine under cache key key.
// Marking again overwrites the previous key.
func Mark(n *dom.Node, key string) {
	n.SetInternal(markSlot{}, key)
}

// GetMark returns the cache key n was marked with.
func GetMark(n *dom.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	v, ok := n.Internal(markSlot{})
	if !ok {
		return "", false
	}
	return v.(string), true
}

// IsFrameworkOwned reports whether n is a marked element.
func IsFrameworkOwned(n *dom.Node) bool {
	if !n.IsElement() {
		return false
	}
	_, ok := GetMark(n)
	return ok
}

// MarkManaged flags every element in the subtree rooted at n as engine
// content without giving it a cache key. Used for parsed Raw HTML.
func MarkManaged(n *dom.Node) {
	n.Walk(func(c *dom.Node) bool {
		if c.IsElement() {
			c.SetInternal(managedSlot{}, true)
		}
		return true
	})
}

func isManaged(n *dom.Node) bool {
	_, ok := n.Internal(managedSlot{})
	return ok
}

// ShouldPreserve reports whether the child reconciler must leave n in
// place: elements carrying PreserveAttr, and elements the engine neither
// created nor parsed. Non-element nodes are never preserved on their own.
func ShouldPreserve(n *dom.Node) bool {
	if !n.IsElement() {
		return false
	}
	if n.HasAttribute(PreserveAttr) {
		return true
	}
	return !IsFrameworkOwned(n) && !isManaged(n)
}
