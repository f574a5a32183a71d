package loop

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultFrameInterval is the frame period of a Runner (about 60fps).
const DefaultFrameInterval = 16 * time.Millisecond

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithFrameInterval sets the frame period.
func WithFrameInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger sets the logger used to report panicking tasks.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// Runner is a Loop that owns a goroutine. All callbacks, including those
// sent with Dispatch, run on that goroutine, one at a time.
//
// RequestAnimationFrame, CancelAnimationFrame and QueueMicrotask must be
// called from the loop goroutine; other goroutines use Dispatch.
type Runner struct {
	q        queue
	interval time.Duration
	logger   *slog.Logger

	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// NewRunner creates a Runner. Call Run to start it.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		interval: DefaultFrameInterval,
		logger:   slog.Default(),
		tasks:    make(chan func(), 256),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RequestAnimationFrame implements Loop.
func (r *Runner) RequestAnimationFrame(fn func()) FrameID {
	return r.q.requestFrame(fn)
}

// CancelAnimationFrame implements Loop.
func (r *Runner) CancelAnimationFrame(id FrameID) {
	r.q.cancelFrame(id)
}

// QueueMicrotask implements Loop.
func (r *Runner) QueueMicrotask(fn func()) {
	r.q.microtasks = append(r.q.microtasks, fn)
}

// Dispatch queues fn to run on the loop goroutine. It is safe to call from
// any goroutine. Returns false once the loop has stopped.
func (r *Runner) Dispatch(fn func()) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.tasks <- fn:
		return true
	case <-r.done:
		return false
	}
}

// Call runs fn on the loop goroutine and waits for it to finish.
func (r *Runner) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !r.Dispatch(func() {
		defer close(finished)
		fn()
	}) {
		return context.Canceled
	}
	select {
	case <-finished:
		return nil
	case <-r.done:
		// fn either ran before Run returned or never will.
		select {
		case <-finished:
			return nil
		default:
			return context.Canceled
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes tasks and frames until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer r.once.Do(func() { close(r.done) })

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-r.tasks:
			r.safely(task)
			r.safely(func() { r.q.drainMicrotasks() })
		case <-ticker.C:
			r.safely(func() {
				r.q.drainMicrotasks()
				r.q.runFrame()
			})
		}
	}
}

// Done is closed when Run returns.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) safely(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("loop task panicked", "panic", rec)
		}
	}()
	fn()
}
