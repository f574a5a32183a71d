package reconcile

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/vango-dev/weft/pkg/dom"
)

// UpdateChildren makes parent's children match newItems and returns the
// flattened items, which the caller passes back as oldItems on the next
// pass.
//
// One forward pass places each new item after the previous one. Elements
// are reused by identity or, when the cached node for a key was replaced,
// by key. Text items within the overlap of the old and new lists take the
// next unclaimed text node after the cursor; every other text item gets a
// new node. Afterwards unclaimed children are removed back to front,
// including stale nodes sharing a key with a placed one, and preserved
// children are moved behind the rendered output.
func (f *Factory) UpdateChildren(parent *dom.Node, oldItems, newItems []any) []any {
	items := f.flatten(newItems)

	listed := make(map[*dom.Node]bool)
	for _, it := range items {
		if n, ok := it.(*dom.Node); ok {
			listed[n] = true
		}
	}

	var preserved []*dom.Node
	isPreserved := make(map[*dom.Node]bool)
	byKey := make(map[string]*dom.Node)
	for _, c := range parent.ChildNodes() {
		if !listed[c] && ShouldPreserve(c) {
			preserved = append(preserved, c)
			isPreserved[c] = true
			continue
		}
		if key, ok := GetMark(c); ok && key != "" {
			byKey[key] = c
		}
	}

	processed := make(map[*dom.Node]bool, len(items))
	limit := min(len(oldItems), len(items))

	var prev *dom.Node
	cursor := func() *dom.Node {
		c := parent.FirstChild()
		if prev != nil {
			c = prev.NextSibling()
		}
		for c != nil && (isPreserved[c] || processed[c]) {
			c = c.NextSibling()
		}
		return c
	}

	for i, it := range items {
		at := cursor()

		switch x := it.(type) {
		case string:
			var t *dom.Node
			if i < limit {
				t = nextText(at, processed, isPreserved)
			}
			if t == nil {
				t = f.text(x)
				parent.InsertBefore(t, at)
			} else if t.Data() != x {
				t.SetData(x)
			}
			processed[t] = true
			prev = t

		case *dom.Node:
			if !f.place(parent, x, at, byKey, listed) {
				continue
			}
			processed[x] = true
			prev = x
		}
	}

	var stale []*dom.Node
	for _, c := range parent.ChildNodes() {
		if !processed[c] && !isPreserved[c] {
			stale = append(stale, c)
		}
	}
	for i := len(stale) - 1; i >= 0; i-- {
		releaseRefs(stale[i])
		parent.RemoveChild(stale[i])
	}

	if len(preserved) > 0 && !trailing(parent, preserved) {
		for _, p := range preserved {
			if p.ParentNode() == parent {
				parent.AppendChild(p)
			}
		}
	}

	return items
}

// place puts element n at cursor at. It reports false when n cannot be
// inserted under parent (an ancestor of parent, for instance).
func (f *Factory) place(parent, n, at *dom.Node, byKey map[string]*dom.Node, listed map[*dom.Node]bool) bool {
	if n == at {
		return true
	}
	if at != nil {
		if key, ok := GetMark(n); ok && key != "" {
			if old := byKey[key]; old == at && !listed[old] {
				releaseRefs(old)
				return parent.ReplaceChild(n, old) != nil
			}
		}
	}
	return parent.InsertBefore(n, at) != nil
}

// nextText returns the first unclaimed text node at or after c, skipping
// elements, which are placed by their own items.
func nextText(c *dom.Node, processed, preserved map[*dom.Node]bool) *dom.Node {
	for ; c != nil; c = c.NextSibling() {
		if processed[c] || preserved[c] {
			continue
		}
		if c.Type() == dom.TextNode {
			return c
		}
	}
	return nil
}

// trailing reports whether parent's last children are exactly preserved.
func trailing(parent *dom.Node, preserved []*dom.Node) bool {
	n := parent.ChildCount()
	if n < len(preserved) {
		return false
	}
	for i, p := range preserved {
		if parent.ChildAt(n-len(preserved)+i) != p {
			return false
		}
	}
	return true
}

// flatten resolves nested lists, fragments and Raw HTML into a list of
// strings and nodes. nil, booleans and nil nodes are dropped; numbers
// become strings; text nodes contribute their data.
func (f *Factory) flatten(items []any) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = f.flattenItem(out, it, 0)
	}
	return out
}

func (f *Factory) flattenItem(out []any, it any, depth int) []any {
	switch x := it.(type) {
	case nil, bool:
		return out
	case string:
		return append(out, x)
	case *dom.Node:
		if x == nil {
			return out
		}
		switch x.Type() {
		case dom.TextNode:
			return append(out, x.Data())
		case dom.FragmentNode:
			if !f.descend(depth) {
				return out
			}
			for _, c := range x.ChildNodes() {
				out = f.flattenItem(out, c, depth+1)
			}
			return out
		}
		return append(out, x)
	case Raw:
		for _, n := range f.parseRaw(string(x)) {
			out = f.flattenItem(out, n, depth+1)
		}
		return out
	case []any:
		if !f.descend(depth) {
			return out
		}
		for _, c := range x {
			out = f.flattenItem(out, c, depth+1)
		}
		return out
	case []*dom.Node:
		if !f.descend(depth) {
			return out
		}
		for _, c := range x {
			out = f.flattenItem(out, c, depth+1)
		}
		return out
	case []string:
		return append(out, anySlice(x)...)
	case fmt.Stringer:
		return append(out, x.String())
	}

	rv := reflect.ValueOf(it)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return append(out, strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return append(out, strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		return append(out, strconv.FormatFloat(rv.Float(), 'g', -1, 64))
	case reflect.Slice, reflect.Array:
		if !f.descend(depth) {
			return out
		}
		for i := 0; i < rv.Len(); i++ {
			out = f.flattenItem(out, rv.Index(i).Interface(), depth+1)
		}
		return out
	}
	return append(out, fmt.Sprint(it))
}

// descend reports whether content at depth+1 may be flattened.
func (f *Factory) descend(depth int) bool {
	if depth < f.maxDepth {
		return true
	}
	f.warn("W007", "limit", f.maxDepth)
	return false
}

func anySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// parseRaw parses HTML into detached, engine-managed nodes. Within a
// component the nodes are memoised per occurrence in the render pass, so
// markup unchanged since the previous pass keeps its node identity.
func (f *Factory) parseRaw(src string) []*dom.Node {
	cache := CurrentCache()
	var memo string
	if cache != nil {
		occ := cache.rawSeen[src]
		cache.rawSeen[src] = occ + 1
		memo = strconv.Itoa(occ) + ":" + src
		if nodes, ok := cache.lookupRaw(memo); ok {
			return nodes
		}
	}

	nodes, err := f.doc.ParseFragment(nil, src)
	if err != nil {
		f.warn("W008", "error", err)
		return nil
	}
	for _, n := range nodes {
		MarkManaged(n)
	}
	if cache != nil {
		cache.rawNext[memo] = nodes
	}
	return nodes
}
