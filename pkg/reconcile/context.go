package reconcile

import (
	"github.com/vango-dev/weft/internal/gid"
	"github.com/vango-dev/weft/pkg/dom"
)

// Component is a component instance the factory can cache elements for.
type Component interface {
	// ComponentID returns "ClassName:instanceId".
	ComponentID() string

	// Cache returns the instance's element cache.
	Cache() *Cache
}

// current holds the component rendering on each goroutine.
var current gid.Local[Component]

// RunInContext makes c the current component while fn runs, resetting its
// per-pass key counter first. The previous component is restored when fn
// returns or panics, so calls nest.
func RunInContext(c Component, fn func() *dom.Node) *dom.Node {
	prev, had := current.Get()
	if c != nil {
		current.Set(c)
	} else {
		current.Clear()
	}
	defer func() {
		if had {
			current.Set(prev)
		} else {
			current.Clear()
		}
	}()

	if c != nil {
		ResetCounterForNewRenderPass(c.Cache())
	}
	return fn()
}

// CurrentComponent returns the component rendering on this goroutine, or
// nil outside a render.
func CurrentComponent() Component {
	c, _ := current.Get()
	return c
}

// CurrentCache returns the cache of the current component, or nil.
func CurrentCache() *Cache {
	if c := CurrentComponent(); c != nil {
		return c.Cache()
	}
	return nil
}
