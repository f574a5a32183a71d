// Package devserver serves a demo component to a browser. The component
// renders into an in-process DOM driven by a loop.Runner; the page mirrors
// the render root over a WebSocket and forwards user events back as
// dispatches.
package devserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/demo"
	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/loop"
	"github.com/vango-dev/weft/pkg/reconcile"
	"github.com/vango-dev/weft/pkg/telemetry"
)

// maxDetailBytes bounds the request body of a dispatch.
const maxDetailBytes = 64 << 10

// Options configures a Server.
type Options struct {
	// Config is the project configuration.
	Config *config.Config

	// Demo names the component to serve.
	Demo string

	Logger  *slog.Logger
	Metrics *telemetry.Metrics
	Tracer  *telemetry.Tracer
}

// Server is the dev preview server.
type Server struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *telemetry.Metrics

	runner *loop.Runner
	doc    *dom.Document
	demo   *demo.Demo
	hub    *Hub
	router chi.Router

	limiter *rate.Limiter

	httpServer *http.Server
	mu         sync.Mutex
	mounted    bool
}

// New builds the server and its demo. Nothing runs until Mount or Start.
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:  cfg,
		logger:  logger,
		metrics: opts.Metrics,
		runner:  loop.NewRunner(loop.WithFrameInterval(cfg.FrameDuration()), loop.WithLogger(logger)),
		doc:     dom.NewDocument(),
		hub:     NewHub(opts.Metrics, logger),
	}
	perSecond := cfg.Dev.DispatchRate
	if perSecond < 1 {
		perSecond = config.DefaultDispatchRate
	}
	s.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, perSecond/5))

	factory := reconcile.NewFactory(s.doc,
		reconcile.WithLogger(logger),
		reconcile.WithMetrics(opts.Metrics),
		reconcile.WithDebug(cfg.Dev.Debug),
		reconcile.WithMaxFlattenDepth(cfg.Render.MaxFlattenDepth),
		reconcile.WithMaxAttributeBytes(cfg.Render.MaxAttributeBytes),
	)
	d, err := demo.New(opts.Demo, demo.Env{
		Doc:     s.doc,
		Loop:    s.runner,
		Logger:  logger,
		Metrics: opts.Metrics,
		Tracer:  opts.Tracer,
		Factory: factory,
		OnPass:  func() { s.hub.Broadcast(s.current()) },
	})
	if err != nil {
		return nil, err
	}
	s.demo = d
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/ws", s.handleWebSocket)
	r.Post("/dispatch/{event}/{key}", s.handleDispatch)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Demo returns the served demo.
func (s *Server) Demo() *demo.Demo {
	return s.demo
}

// Hub returns the client hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Mount starts the event loop and connects the demo. The loop stops when
// ctx is cancelled.
func (s *Server) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		return nil
	}
	s.mounted = true
	s.mu.Unlock()

	go s.runner.Run(ctx)
	return s.runner.Call(ctx, func() {
		s.demo.Host.Connect(s.doc.Body())
	})
}

// Start mounts the demo and serves HTTP on the configured address until
// ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	if err := s.Mount(gctx); err != nil {
		return errors.New("E081").Wrap(err)
	}

	s.httpServer = &http.Server{
		Addr:              s.config.DevAddress(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("dev server running", "url", s.config.DevURL(), "demo", s.demo.Name)

	g.Go(func() error {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.New("E081").WithDetail("listening on " + s.config.DevAddress()).Wrap(err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.Stop()
		return nil
	})
	return g.Wait()
}

// Stop disconnects clients and shuts the HTTP server down.
func (s *Server) Stop() {
	s.hub.Close()
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.httpServer.Shutdown(ctx)
}

// current describes the render root. Must run on the loop goroutine.
func (s *Server) current() Message {
	h := s.demo.Host
	return Message{
		Type:      MessageRender,
		Component: h.ComponentID(),
		HTML:      h.HTML(),
		Passes:    h.Scheduler().Passes(),
		State:     h.Scheduler().State().String(),
	}
}

// snapshot reads the current state from the loop goroutine.
func (s *Server) snapshot(ctx context.Context) (Message, error) {
	var msg Message
	err := s.runner.Call(ctx, func() { msg = s.current() })
	return msg, err
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	msg, err := s.snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, renderPage(s.demo, msg.HTML))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	msg, err := s.snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, msg)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, msg.HTML)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	msg, err := s.snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err := s.hub.Serve(w, r, &msg); err != nil {
		s.logger.Debug("websocket closed", "error", err)
	}
}

// DispatchResult is the response body of a dispatch.
type DispatchResult struct {
	Event string `json:"event"`
	Key   string `json:"key"`
	State string `json:"state"`
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	event := chi.URLParam(r, "event")
	key := chi.URLParam(r, "key")

	if !s.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "too many dispatches", http.StatusTooManyRequests)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxDetailBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var detail any
	if len(body) > 0 {
		detail = string(body)
	}

	var found bool
	var state string
	err = s.runner.Call(r.Context(), func() {
		found = s.demo.Dispatch(event, key, detail)
	})
	if err == nil {
		// Read after the dispatch's microtasks have queued their passes.
		err = s.runner.Call(r.Context(), func() {
			state = s.demo.Host.Scheduler().State().String()
		})
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if !found {
		http.Error(w, "no element with data-key "+key, http.StatusNotFound)
		return
	}
	s.logger.Debug("dispatched", "event", event, "key", key, "state", state)
	writeJSON(w, http.StatusAccepted, DispatchResult{Event: event, Key: key, State: state})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
