package loop

// Manual is a Loop advanced explicitly by the caller.
type Manual struct {
	q      queue
	frames int
}

// NewManual creates a Manual loop.
func NewManual() *Manual {
	return &Manual{}
}

// RequestAnimationFrame implements Loop.
func (m *Manual) RequestAnimationFrame(fn func()) FrameID {
	return m.q.requestFrame(fn)
}

// CancelAnimationFrame implements Loop.
func (m *Manual) CancelAnimationFrame(id FrameID) {
	m.q.cancelFrame(id)
}

// QueueMicrotask implements Loop.
func (m *Manual) QueueMicrotask(fn func()) {
	m.q.microtasks = append(m.q.microtasks, fn)
}

// Flush runs pending microtasks and returns how many ran.
func (m *Manual) Flush() int {
	return m.q.drainMicrotasks()
}

// Tick drains microtasks, then runs one frame. It returns the number of
// frame callbacks that ran.
func (m *Manual) Tick() int {
	m.q.drainMicrotasks()
	m.frames++
	return m.q.runFrame()
}

// Settle ticks until no frame callbacks remain, up to max ticks. It returns
// the number of ticks performed.
func (m *Manual) Settle(max int) int {
	ticks := 0
	for ticks < max && (len(m.q.frames) > 0 || len(m.q.microtasks) > 0) {
		m.Tick()
		ticks++
	}
	return ticks
}

// PendingFrames returns the number of queued frame callbacks.
func (m *Manual) PendingFrames() int {
	return len(m.q.frames)
}

// Frames returns the number of ticks run so far.
func (m *Manual) Frames() int {
	return m.frames
}
