package component

import (
	"reflect"
	"sync"

	"github.com/vango-dev/weft/internal/gid"
)

// State is a reactive value owned by a Host. Writing a different value
// requests a rerender of the host.
type State[T any] struct {
	mu    sync.RWMutex
	value T
	equal func(T, T) bool
	host  *Host
}

// NewState creates a State owned by h.
func NewState[T any](h *Host, initial T) *State[T] {
	return &State[T]{host: h, value: initial}
}

// WithEquals sets the equality used to drop unchanged writes.
func (s *State[T]) WithEquals(fn func(T, T) bool) *State[T] {
	s.equal = fn
	return s
}

// Get returns the current value.
func (s *State[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores v and requests a rerender if it differs from the current
// value.
func (s *State[T]) Set(v T) {
	s.mu.Lock()
	changed := !s.equals(s.value, v)
	if changed {
		s.value = v
	}
	s.mu.Unlock()

	if changed {
		notify(s.host)
	}
}

// Update replaces the value with fn applied to it.
func (s *State[T]) Update(fn func(T) T) {
	s.mu.Lock()
	old := s.value
	v := fn(old)
	changed := !s.equals(old, v)
	if changed {
		s.value = v
	}
	s.mu.Unlock()

	if changed {
		notify(s.host)
	}
}

func (s *State[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}

type batchState struct {
	depth   int
	pending []*Host
}

var batches gid.Local[*batchState]

// Batch runs fn and defers the rerender requests of State writes made
// inside it. Batches nest; when the outermost batch ends, one request per
// host is queued as a microtask on the host's loop.
//
//	component.Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
func Batch(fn func()) {
	b, ok := batches.Get()
	if !ok {
		b = &batchState{}
		batches.Set(b)
	}
	b.depth++

	defer func() {
		b.depth--
		if b.depth > 0 {
			return
		}
		batches.Clear()

		seen := make(map[*Host]bool, len(b.pending))
		for _, h := range b.pending {
			if !seen[h] {
				seen[h] = true
				h.queueUpdate()
			}
		}
	}()

	fn()
}

func notify(h *Host) {
	if h == nil {
		return
	}
	if b, ok := batches.Get(); ok && b.depth > 0 {
		b.pending = append(b.pending, h)
		return
	}
	h.RequestUpdate()
}
