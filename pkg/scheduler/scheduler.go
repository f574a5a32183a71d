// Package scheduler decides when a component's render pass runs.
//
// Each component owns a Scheduler. Requests made while a pass is queued
// coalesce into that pass; requests made during a pass are dropped; requests
// made while the user is typing into a control inside the component wait
// for that control to blur. Passes run on the next animation frame of the
// component's loop.Loop.
//
// A Scheduler is not safe for concurrent use. Call it from the goroutine
// that runs its loop, as event listeners and frame callbacks already are.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/loop"
	"github.com/vango-dev/weft/pkg/reconcile"
	"github.com/vango-dev/weft/pkg/telemetry"
)

// ForceRenderAttr on a focused control lets passes run while it has focus.
const ForceRenderAttr = "data-force-render"

// State is the scheduling state of one component.
type State int

const (
	// Idle: no pass queued or running.
	Idle State = iota
	// Scheduled: a pass is queued for the next frame.
	Scheduled
	// Rendering: a pass is executing.
	Rendering
	// PendingBlur: a pass waits for the focused control to blur.
	PendingBlur
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case Rendering:
		return "rendering"
	case PendingBlur:
		return "pending-blur"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PatchFunc reconciles the component's render output into its root.
type PatchFunc func(ctx context.Context)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records pass counts and durations.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithTracer wraps each pass in a span.
func WithTracer(t *telemetry.Tracer) Option {
	return func(s *Scheduler) { s.tracer = t }
}

// WithPostRender sets a hook called after every completed pass.
func WithPostRender(fn func()) Option {
	return func(s *Scheduler) { s.postRender = fn }
}

// Scheduler is the render state machine of one component.
type Scheduler struct {
	name  string
	loop  loop.Loop
	doc   *dom.Document
	root  func() *dom.Node
	patch PatchFunc

	logger     *slog.Logger
	metrics    *telemetry.Metrics
	tracer     *telemetry.Tracer
	postRender func()

	state     State
	connected bool
	frame     loop.FrameID
	blurID    dom.ListenerID
	passes    int
}

// New creates a disconnected Scheduler for the component name. root returns
// the component's render root; patch performs one pass into it.
func New(name string, l loop.Loop, doc *dom.Document, root func() *dom.Node, patch PatchFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		name:   name,
		loop:   l,
		doc:    doc,
		root:   root,
		patch:  patch,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Scheduler) State() State { return s.state }

// Connected reports whether the scheduler is attached.
func (s *Scheduler) Connected() bool { return s.connected }

// Passes returns the number of passes run so far.
func (s *Scheduler) Passes() int { return s.passes }

// Connect attaches the scheduler and its blur observer. It resets the
// state to Idle.
func (s *Scheduler) Connect() {
	if s.connected {
		return
	}
	s.connected = true
	s.state = Idle
	s.blurID = s.doc.AddEventListener("blur", s.onBlur)
}

// Disconnect cancels any queued pass, drops a pass waiting for blur and
// detaches the blur observer.
func (s *Scheduler) Disconnect() {
	if !s.connected {
		return
	}
	s.connected = false
	if s.state == Scheduled {
		s.loop.CancelAnimationFrame(s.frame)
	}
	s.state = Idle
	s.doc.RemoveEventListener("blur", s.blurID)
}

// Request asks for a pass. It is ignored while disconnected, while a pass
// is running and while one is already queued. While an input, textarea,
// select or contenteditable inside the root has focus the pass is held
// until that element blurs.
func (s *Scheduler) Request() {
	if !s.connected {
		return
	}
	switch s.state {
	case Rendering, Scheduled:
		return
	}

	if el := s.focusedControl(); el != nil {
		if s.state != PendingBlur {
			s.state = PendingBlur
			s.metrics.RenderDeferred(s.name)
			s.logger.Debug("render deferred until blur", "component", s.name, "tag", el.Tag())
		}
		return
	}
	s.schedule()
}

// RenderNow runs a pass synchronously, superseding a queued one. It is a
// no-op during a pass.
func (s *Scheduler) RenderNow() {
	if s.state == Rendering {
		return
	}
	if s.state == Scheduled {
		s.loop.CancelAnimationFrame(s.frame)
	}
	s.run()
}

func (s *Scheduler) schedule() {
	s.state = Scheduled
	s.frame = s.loop.RequestAnimationFrame(s.fire)
}

// fire runs a queued pass. A frame that outlives its Disconnect, on a loop
// that could not cancel it, is dropped here.
func (s *Scheduler) fire() {
	if !s.connected {
		s.state = Idle
		s.metrics.RenderPass(s.name, telemetry.OutcomeAborted, 0)
		s.logger.Debug(errors.New("E021").Message, "code", "E021", "component", s.name)
		return
	}
	if s.state != Scheduled {
		return
	}
	s.run()
}

func (s *Scheduler) run() {
	s.state = Rendering
	start := time.Now()
	ctx, span := s.tracer.StartPass(context.Background(), s.name)
	before := s.doc.Stats().Total()

	outcome := telemetry.OutcomeOK
	var err error
	defer func() {
		if r := recover(); r != nil {
			outcome = telemetry.OutcomePanic
			err = fmt.Errorf("%v", r)
			s.logger.Error(errors.New("E020").Message, "code", "E020", "component", s.name, "panic", r)
		}
		s.state = Idle
		s.passes++
		telemetry.EndPass(span, outcome, s.doc.Stats().Total()-before, err)
		s.metrics.RenderPass(s.name, outcome, time.Since(start))
	}()

	snap := reconcile.CaptureFocusState(s.root())
	s.patch(ctx)
	reconcile.RestoreFocusState(s.root(), snap, s.loop)

	if s.postRender != nil {
		s.postRender()
	}
}

// onBlur releases a pass held for a control inside the root.
func (s *Scheduler) onBlur(ev *dom.Event) {
	if !s.connected || s.state != PendingBlur {
		return
	}
	root := s.root()
	if root == nil || ev.Target == nil || !root.Contains(ev.Target) {
		return
	}
	s.schedule()
}

// focusedControl returns the focused element inside the root if passes
// must wait for it.
func (s *Scheduler) focusedControl() *dom.Node {
	root := s.root()
	if root == nil {
		return nil
	}
	el := root.ActiveElement()
	if el == nil || el.HasAttribute(ForceRenderAttr) {
		return nil
	}
	switch {
	case el.IsSVG():
		return nil
	case el.Tag() == "input", el.Tag() == "textarea", el.Tag() == "select":
		return el
	case el.IsContentEditable():
		return el
	}
	return nil
}
