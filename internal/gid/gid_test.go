package gid

import (
	"sync"
	"testing"
)

func TestCurrentIsStablePerGoroutine(t *testing.T) {
	a, b := Current(), Current()
	if a == 0 || a != b {
		t.Fatalf("Current() = %d, %d; want equal non-zero ids", a, b)
	}

	other := make(chan uint64)
	go func() { other <- Current() }()
	if id := <-other; id == a {
		t.Errorf("another goroutine reported the same id %d", id)
	}
}

func TestLocalIsolation(t *testing.T) {
	var l Local[string]
	l.Set("main")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, ok := l.Get(); ok {
			t.Error("value leaked into another goroutine")
		}
		l.Set("worker")
		l.Clear()
	}()
	wg.Wait()

	if v, ok := l.Get(); !ok || v != "main" {
		t.Errorf("Get() = %q, %v; want main, true", v, ok)
	}
	l.Clear()
	if _, ok := l.Get(); ok {
		t.Error("Clear should remove the value")
	}
}
