package reconcile

import "github.com/vango-dev/weft/pkg/dom"

// Props is an element's attribute and property map.
type Props map[string]any

// Metadata is what a cached node was last rendered with.
type Metadata struct {
	Props    Props
	Children []any
}

// Cache maps cache keys to the nodes of one component instance. Metadata
// lives on the nodes themselves, so it is collected with them.
type Cache struct {
	nodes map[string]*dom.Node

	counter  int
	passKeys map[string]struct{}
	rawSeen  map[string]int

	// raw holds the Raw parses used by the previous pass, rawNext those
	// used by the current one. Entries not reused for a whole pass are
	// dropped.
	raw     map[string][]*dom.Node
	rawNext map[string][]*dom.Node
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		nodes:    make(map[string]*dom.Node),
		passKeys: make(map[string]struct{}),
		rawSeen:  make(map[string]int),
		raw:      make(map[string][]*dom.Node),
		rawNext:  make(map[string][]*dom.Node),
	}
}

// Get returns the node cached under key.
func (c *Cache) Get(key string) (*dom.Node, bool) {
	n, ok := c.nodes[key]
	return n, ok
}

// Set caches n under key.
func (c *Cache) Set(key string, n *dom.Node) {
	c.nodes[key] = n
}

// Has reports whether key is cached.
func (c *Cache) Has(key string) bool {
	_, ok := c.nodes[key]
	return ok
}

// Delete drops key and the metadata of its node.
func (c *Cache) Delete(key string) {
	if n, ok := c.nodes[key]; ok {
		n.DeleteInternal(c)
		delete(c.nodes, key)
	}
}

// Len returns the number of cached nodes.
func (c *Cache) Len() int {
	return len(c.nodes)
}

// Metadata returns what n was last rendered with by this cache's component.
func (c *Cache) Metadata(n *dom.Node) (*Metadata, bool) {
	v, ok := n.Internal(c)
	if !ok {
		return nil, false
	}
	return v.(*Metadata), true
}

// SetMetadata records what n was rendered with.
func (c *Cache) SetMetadata(n *dom.Node, m *Metadata) {
	n.SetInternal(c, m)
}

// Clear drops every entry. Called when the component disconnects.
func (c *Cache) Clear() {
	for _, n := range c.nodes {
		n.DeleteInternal(c)
	}
	clear(c.nodes)
	clear(c.raw)
	clear(c.rawNext)
	c.resetPass()
}

func (c *Cache) resetPass() {
	c.counter = 0
	clear(c.passKeys)
	clear(c.rawSeen)
	c.raw, c.rawNext = c.rawNext, c.raw
	clear(c.rawNext)
}

// lookupRaw returns the nodes parsed for memo in this pass or the last one,
// carrying them into the current generation.
func (c *Cache) lookupRaw(memo string) ([]*dom.Node, bool) {
	if nodes, ok := c.rawNext[memo]; ok {
		return nodes, true
	}
	nodes, ok := c.raw[memo]
	if ok {
		c.rawNext[memo] = nodes
	}
	return nodes, ok
}

// RawEntries returns the number of memoised Raw parses.
func (c *Cache) RawEntries() int {
	return len(c.rawNext)
}

func (c *Cache) nextAuto() int {
	c.counter++
	return c.counter
}

// claim records key as used in the current pass. It returns false when the
// key was already used.
func (c *Cache) claim(key string) bool {
	if _, dup := c.passKeys[key]; dup {
		return false
	}
	c.passKeys[key] = struct{}{}
	return true
}
