// Package demo holds the components served by the dev server and run by
// "weft demo": a calendar strip and a keyed todo list. Each demo carries a
// script of steps so it can be driven without a browser.
package demo

import (
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/component"
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/loop"
	"github.com/vango-dev/weft/pkg/reconcile"
	"github.com/vango-dev/weft/pkg/telemetry"
)

// Env is what a demo is built against.
type Env struct {
	Doc     *dom.Document
	Loop    loop.Loop
	Logger  *slog.Logger
	Metrics *telemetry.Metrics
	Tracer  *telemetry.Tracer
	Factory *reconcile.Factory

	// OnPass is called after every render pass of the demo's host.
	OnPass func()
}

func (e Env) hostOptions(extra ...component.Option) []component.Option {
	opts := []component.Option{
		component.WithLogger(e.Logger),
		component.WithMetrics(e.Metrics),
		component.WithTracer(e.Tracer),
		component.WithUpdated(e.OnPass),
	}
	if e.Factory != nil {
		opts = append(opts, component.WithFactory(e.Factory))
	}
	return append(opts, extra...)
}

// Step is one scripted interaction.
type Step struct {
	Label string
	Do    func(d *Demo)
}

// Demo is a mounted demo component.
type Demo struct {
	Name        string
	Description string
	Host        *component.Host
	Steps       []Step
}

type constructor struct {
	description string
	build       func(env Env) *Demo
}

var registry = map[string]constructor{
	"calendar": {"Week strip crossing a month boundary; text nodes are reused in place.", newCalendar},
	"todo":     {"Keyed todo list with a focused input and a third-party node.", newTodo},
}

// Names returns the registered demo names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Describe returns the one-line description of a demo.
func Describe(name string) string {
	return registry[name].description
}

// New builds the named demo. The host is not connected.
func New(name string, env Env) (*Demo, error) {
	c, ok := registry[name]
	if !ok {
		return nil, errors.New("E080").
			WithDetail("unknown demo " + name).
			WithSuggestion("Available demos: " + strings.Join(Names(), ", "))
	}
	if env.Logger == nil {
		env.Logger = slog.Default()
	}
	d := c.build(env)
	d.Name = name
	d.Description = c.description
	return d, nil
}

// Dispatch fires event at the element carrying data-key=key inside the
// demo's render root. For "input" and "change" events a string detail is
// written to the control's value first, as typing would. It reports
// whether the element was found.
func (d *Demo) Dispatch(event, key string, detail any) bool {
	el := d.Host.Root().QuerySelectorAttr(reconcile.KeyAttr, key)
	if el == nil {
		return false
	}
	if s, ok := detail.(string); ok && slices.Contains([]string{"input", "change"}, event) {
		el.SetValue(s)
	}
	switch event {
	case "focus":
		el.Focus()
		return true
	case "blur":
		el.Blur()
		return true
	}
	el.DispatchEvent(&dom.Event{Type: event, Detail: detail})
	return true
}

// Run connects the demo under parent and performs its steps. settle is
// called after connecting and after each step to let scheduled passes run;
// report receives the render root's HTML at each point.
func (d *Demo) Run(parent *dom.Node, settle func(), report func(label, html string)) {
	d.Host.Connect(parent)
	settle()
	report("initial", d.Host.HTML())
	for _, s := range d.Steps {
		s.Do(d)
		settle()
		report(s.Label, d.Host.HTML())
	}
}
