package inspector

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/internal/scenario"
	"github.com/vango-dev/reactive/pkg/middleware"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// RunFunc runs the configured scenarios.
type RunFunc func(ctx context.Context) ([]*scenario.Report, error)

// Options configures a Server.
type Options struct {
	// Addr is the listen address (default: "localhost:7070").
	Addr string

	// Registry serves /metrics. Default: prometheus.DefaultGatherer.
	Registry prometheus.Gatherer

	// Registerer, when set, receives HTTP request metrics.
	Registerer prometheus.Registerer

	// Namespace prefixes the HTTP metrics (default: "reactive").
	Namespace string

	// Tracer, when set, wraps each request in a span.
	Tracer trace.Tracer

	// Logger receives request and lifecycle logs.
	Logger *slog.Logger

	// Run backs POST /run. Without it the route answers 501.
	Run RunFunc

	// ShutdownTimeout bounds graceful shutdown (default: 5s).
	ShutdownTimeout time.Duration
}

// Server is the inspector HTTP server.
type Server struct {
	opts   Options
	hub    *Hub
	router chi.Router
	logger *slog.Logger

	mu      sync.RWMutex
	reports []*scenario.Report
	addr    string
	runMu   sync.Mutex
}

// New creates a Server.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = "localhost:7070"
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.DefaultGatherer
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "inspector")
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}

	s := &Server{
		opts:    opts,
		hub:     NewHub(),
		logger:  opts.Logger,
		reports: []*scenario.Report{},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	if s.opts.Tracer != nil {
		r.Use(middleware.OpenTelemetry(middleware.WithTracer(s.opts.Tracer)))
	}
	if s.opts.Registerer != nil {
		namespace := s.opts.Namespace
		if namespace == "" {
			namespace = "reactive"
		}
		r.Use(middleware.Prometheus(
			middleware.WithRegistry(s.opts.Registerer),
			middleware.WithNamespace(namespace),
		))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{}))
	r.Get("/trace", s.handleTrace)
	r.Post("/run", s.handleRun)
	r.Get("/events", s.hub.HandleWebSocket)
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Addr returns the bound address once Start is listening, or the configured
// one before that.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.addr != "" {
		return s.addr
	}
	return s.opts.Addr
}

// PublishEvent streams an engine event. Use it as a scenario observer.
func (s *Server) PublishEvent(e reactive.Event) {
	s.hub.Broadcast(Message{Type: MessageEvent, Event: &e})
}

// PublishEntry streams a trace entry. Use it as a scenario entry hook.
func (s *Server) PublishEntry(name string, e scenario.TraceEntry) {
	s.hub.Broadcast(Message{Type: MessageTrace, Scenario: name, Entry: &e})
}

// SetReports replaces the reports served by /trace and streams a summary
// of each.
func (s *Server) SetReports(reports []*scenario.Report) {
	s.mu.Lock()
	s.reports = reports
	s.mu.Unlock()

	for _, r := range reports {
		passed := r.Passed()
		s.hub.Broadcast(Message{
			Type:     MessageReport,
			Scenario: r.Scenario,
			Passed:   &passed,
			Failures: len(r.Failures),
		})
	}
}

// Reports returns the latest reports.
func (s *Server) Reports() []*scenario.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reports
}

// RunNow runs the scenarios through Options.Run and publishes the result.
// Runs are serialized.
func (s *Server) RunNow(ctx context.Context) ([]*scenario.Report, error) {
	if s.opts.Run == nil {
		return nil, errors.New("R302").WithDetail("no scenarios configured")
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	reports, err := s.opts.Run(ctx)
	if err != nil {
		return nil, errors.New("R302").Wrap(err)
	}
	s.SetReports(reports)
	return reports, nil
}

func (s *Server) handleTrace(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Reports())
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.opts.Run == nil {
		writeJSON(w, http.StatusNotImplemented, errors.New("R302").WithDetail("no scenarios configured"))
		return
	}
	reports, err := s.RunNow(r.Context())
	if err != nil {
		s.logger.Error("run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errors.FromError(err, "R302"))
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Start listens on Options.Addr and serves until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errors.New("R301").WithDetailf("cannot listen on %s", s.opts.Addr).Wrap(err)
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector listening", "address", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.hub.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
		s.logger.Info("inspector stopped")
		return nil
	case err := <-errCh:
		s.hub.Close()
		return err
	}
}
