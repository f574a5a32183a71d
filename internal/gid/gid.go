// Package gid provides goroutine-scoped storage.
//
// The reconciler keeps "the component currently rendering" and the batch
// depth per goroutine so that render helpers do not need the value threaded
// through every call, while independent event loops on other goroutines do
// not observe each other's state.
package gid

import (
	"runtime"
	"sync"
)

// Current returns an identifier for the calling goroutine, parsed from the
// header of its stack trace ("goroutine <id> [...]").
func Current() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// Local holds one value of type T per goroutine.
type Local[T any] struct {
	m sync.Map
}

// Get returns the calling goroutine's value and whether one is set.
func (l *Local[T]) Get() (T, bool) {
	v, ok := l.m.Load(Current())
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Set installs v for the calling goroutine.
func (l *Local[T]) Set(v T) {
	l.m.Store(Current(), v)
}

// Clear removes the calling goroutine's value.
func (l *Local[T]) Clear() {
	l.m.Delete(Current())
}
