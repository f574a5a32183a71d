package reconcile

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"
)

// Props consumed by the engine and never written to the DOM.
const (
	PropKey      = "key"
	PropIndex    = "_idx"
	PropPosition = "_pos"
	PropTestID   = "_tid"
	PropRef      = "ref"
)

// NoPositionID is the position id emitted when no stable position exists.
const NoPositionID = "no-id"

// IsInternalProp reports whether name is consumed by the engine.
func IsInternalProp(name string) bool {
	switch name {
	case PropKey, PropIndex, PropPosition, PropTestID, PropRef:
		return true
	}
	return false
}

// GenerateKey derives the cache key for an element descriptor. The first
// match wins: an explicit key prop, an index marker, a position id, the
// component's per-pass counter, then a time-and-random fallback when no
// cache is available.
func GenerateKey(tag string, props Props, componentID string, cache *Cache) string {
	prefix := componentID + ":" + tag + ":"

	if v, ok := props[PropKey]; ok && v != nil {
		return prefix + "key-" + stringify(v)
	}
	if v, ok := props[PropIndex]; ok && v != nil {
		return prefix + "idx-" + stringify(v)
	}
	if v, ok := props[PropPosition]; ok && v != nil {
		if pos := stringify(v); pos != NoPositionID {
			return prefix + pos
		}
	}
	if cache != nil {
		return prefix + "auto-" + strconv.Itoa(cache.nextAuto())
	}
	// Unstable across renders; only reached outside a component.
	return prefix + strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + strconv.FormatUint(rand.Uint64(), 36)
}

// ResetCounterForNewRenderPass restarts the auto-key counter and the
// duplicate-key tracking of cache.
func ResetCounterForNewRenderPass(cache *Cache) {
	if cache != nil {
		cache.resetPass()
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
