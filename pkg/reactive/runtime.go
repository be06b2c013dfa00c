package reactive

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactive/pkg/proxy"
)

// TracerName is the instrumentation name used when no tracer is supplied.
const TracerName = "github.com/vango-dev/reactive"

// Runtime owns the trap registry and batch frames shared by its watches.
type Runtime struct {
	realm    *proxy.Realm
	traps    *Interceptor
	sched    *scheduler
	logger   *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	observer func(Event)
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithRealm sets the realm whose reads are intercepted. Containers from other
// realms are invisible to the runtime. Default: proxy.Default().
func WithRealm(realm *proxy.Realm) Option {
	return func(rt *Runtime) {
		rt.realm = realm
	}
}

// WithLogger sets the structured logger used for debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(rt *Runtime) {
		rt.metrics = m
	}
}

// WithTracer sets the tracer used for watch run spans.
// Default: otel.Tracer(TracerName) from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(rt *Runtime) {
		rt.tracer = tracer
	}
}

// WithObserver registers fn to receive every engine Event. fn is called
// synchronously and must not mutate tracked state.
func WithObserver(fn func(Event)) Option {
	return func(rt *Runtime) {
		rt.observer = fn
	}
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		realm: proxy.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.realm == nil {
		rt.realm = proxy.Default()
	}
	if rt.logger == nil {
		rt.logger = slog.Default().With("component", "reactive")
	}
	if rt.tracer == nil {
		rt.tracer = otel.Tracer(TracerName)
	}

	rt.traps = NewInterceptor(rt.realm)
	rt.traps.onChange = rt.metrics.setTraps
	rt.sched = newScheduler()
	return rt
}

var (
	defaultRuntime     *Runtime
	defaultRuntimeOnce sync.Once
)

// Default returns the process-wide runtime over proxy.Default().
func Default() *Runtime {
	defaultRuntimeOnce.Do(func() {
		defaultRuntime = New()
	})
	return defaultRuntime
}

// Realm returns the realm observed by the runtime.
func (rt *Runtime) Realm() *proxy.Realm {
	return rt.realm
}

// Interceptor returns the runtime's trap registry.
func (rt *Runtime) Interceptor() *Interceptor {
	return rt.traps
}

func (rt *Runtime) emit(e Event) {
	if rt.observer != nil {
		rt.observer(e)
	}
}

func (rt *Runtime) startSpan(w *Watcher, trigger Trigger) trace.Span {
	_, span := rt.tracer.Start(context.Background(), "reactive.watch.run",
		trace.WithAttributes(
			attribute.Int64("reactive.watch.id", int64(w.id)),
			attribute.String("reactive.watch.name", w.name),
			attribute.String("reactive.trigger", string(trigger)),
		),
	)
	return span
}
