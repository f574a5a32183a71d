// Package loop provides the single-threaded event loop the renderer runs
// on: animation-frame callbacks and microtasks.
//
// Manual is a deterministic loop driven by the caller, used by tests and
// the CLI. Runner is a real loop on its own goroutine, ticking frames on an
// interval and accepting work from other goroutines through Dispatch.
package loop

// FrameID identifies a requested animation frame callback.
type FrameID uint64

// Loop schedules work on the render thread.
type Loop interface {
	// RequestAnimationFrame runs fn before the next frame.
	RequestAnimationFrame(fn func()) FrameID

	// CancelAnimationFrame drops a pending frame callback.
	CancelAnimationFrame(id FrameID)

	// QueueMicrotask runs fn after the current task, before the next frame.
	QueueMicrotask(fn func())
}

type frameCallback struct {
	id FrameID
	fn func()
}

// queue is the callback storage shared by Manual and Runner. It is not
// safe for concurrent use.
type queue struct {
	nextID     FrameID
	frames     []frameCallback
	microtasks []func()
}

func (q *queue) requestFrame(fn func()) FrameID {
	q.nextID++
	q.frames = append(q.frames, frameCallback{id: q.nextID, fn: fn})
	return q.nextID
}

func (q *queue) cancelFrame(id FrameID) {
	for i, f := range q.frames {
		if f.id == id {
			q.frames = append(q.frames[:i], q.frames[i+1:]...)
			return
		}
	}
}

// drainMicrotasks runs microtasks until the queue is empty, including
// microtasks queued by microtasks.
func (q *queue) drainMicrotasks() int {
	n := 0
	for len(q.microtasks) > 0 {
		task := q.microtasks[0]
		q.microtasks = q.microtasks[1:]
		task()
		n++
	}
	return n
}

// runFrame runs the frame callbacks queued before the call. Callbacks
// requested while running are deferred to the next frame.
func (q *queue) runFrame() int {
	frames := q.frames
	q.frames = nil
	for _, f := range frames {
		f.fn()
		q.drainMicrotasks()
	}
	return len(frames)
}
