package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/demo"
	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/loop"
	"github.com/vango-dev/weft/pkg/reconcile"
	"github.com/vango-dev/weft/pkg/telemetry"
)

// settleFrames bounds the frames run after each scripted step.
const settleFrames = 16

type globalFlags struct {
	dir      string
	logLevel string
	debug    bool
	trace    bool

	errorFormat string
}

// app is what every command builds from the global flags.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer

	shutdown func(context.Context) error
}

func (g *globalFlags) setup(logOut io.Writer) (*app, error) {
	cfg, err := config.LoadOrDefault(g.dir)
	if err != nil {
		return nil, err
	}
	if g.debug {
		cfg.Dev.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		if we, ok := err.(*errors.WeftError); ok && cfg.Path() != "" && we.Location == nil {
			we.Location = &errors.Location{File: cfg.Path()}
		}
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, errors.New("E040").
			WithDetail("unknown log level " + g.logLevel).
			WithSuggestion("Use debug, info, warn or error")
	}
	if cfg.Dev.Debug && level > slog.LevelDebug {
		level = slog.LevelDebug
	}

	a := &app{
		cfg:      cfg,
		logger:   slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})),
		metrics:  telemetry.NewMetrics(telemetry.WithNamespace(cfg.Metrics.Namespace)),
		tracer:   telemetry.NewTracer(),
		shutdown: func(context.Context) error { return nil },
	}
	if g.trace {
		tr, shutdown, err := telemetry.NewWriterTracer(logOut)
		if err != nil {
			return nil, err
		}
		a.tracer, a.shutdown = tr, shutdown
	}
	return a, nil
}

// close flushes exported spans.
func (a *app) close() {
	if err := a.shutdown(context.Background()); err != nil {
		a.logger.Warn("trace export failed", "error", err)
	}
}

func (a *app) factory(doc *dom.Document) *reconcile.Factory {
	return reconcile.NewFactory(doc,
		reconcile.WithLogger(a.logger),
		reconcile.WithMetrics(a.metrics),
		reconcile.WithDebug(a.cfg.Dev.Debug),
		reconcile.WithMaxFlattenDepth(a.cfg.Render.MaxFlattenDepth),
		reconcile.WithMaxAttributeBytes(a.cfg.Render.MaxAttributeBytes),
	)
}

// runHeadless builds the named demo on a manual loop and plays its script.
// report is called with the render root's HTML after connecting and after
// each step.
func (a *app) runHeadless(name string, report func(label, html string)) (*demo.Demo, error) {
	doc := dom.NewDocument()
	m := loop.NewManual()
	d, err := demo.New(name, demo.Env{
		Doc:     doc,
		Loop:    m,
		Logger:  a.logger,
		Metrics: a.metrics,
		Tracer:  a.tracer,
		Factory: a.factory(doc),
	})
	if err != nil {
		return nil, err
	}
	d.Run(doc.Body(), func() { m.Settle(settleFrames) }, report)
	return d, nil
}
