package reactive

import (
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/vango-dev/reactive/pkg/proxy"
)

// Watcher is a function re-run whenever a value it read changes.
// Create one with Runtime.Track or Runtime.Watch.
type Watcher struct {
	id   uint64
	name string
	rt   *Runtime
	fn   func()
	rec  *record

	mu       sync.Mutex
	subs     map[proxy.Proxy]func()
	runs     int
	running  bool
	disposed bool
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithName labels the watch in logs, events and spans.
func WithName(name string) WatchOption {
	return func(w *Watcher) {
		w.name = name
	}
}

// Track runs fn once, synchronously and outside any batch, and returns the
// watch that re-runs it on change.
func (rt *Runtime) Track(fn func(), opts ...WatchOption) *Watcher {
	w := &Watcher{
		id:   nextID(),
		rt:   rt,
		fn:   fn,
		rec:  newRecord(),
		subs: make(map[proxy.Proxy]func()),
	}
	for _, opt := range opts {
		opt(w)
	}

	rt.metrics.watchCreated()
	w.run(TriggerInitial)
	return w
}

// Watch runs fn once and returns the function that stops re-running it.
//
// Example:
//
//	unwatch := rt.Watch(func() {
//	    log.Println("count:", state.Get("count"))
//	})
//	defer unwatch()
func (rt *Runtime) Watch(fn func(), opts ...WatchOption) Unwatch {
	return rt.Track(fn, opts...).Unwatch
}

// ID returns the watch's identifier.
func (w *Watcher) ID() uint64 {
	return w.id
}

// Name returns the label set with WithName.
func (w *Watcher) Name() string {
	return w.name
}

// Runs returns how many times the watch function has been invoked.
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Roots returns the containers the watch is subscribed to, ordered by
// container ID.
func (w *Watcher) Roots() []proxy.Proxy {
	w.mu.Lock()
	defer w.mu.Unlock()

	roots := make([]proxy.Proxy, 0, len(w.subs))
	for c := range w.subs {
		roots = append(roots, c)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].ID() < roots[j].ID() })
	return roots
}

// Deps returns the property names recorded per touched container during the
// latest run.
func (w *Watcher) Deps() map[proxy.Proxy][]string {
	return w.rec.deps()
}

// Disposed reports whether Unwatch has been called.
func (w *Watcher) Disposed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.disposed
}

// MarkDirty evaluates the recorded dependencies and re-runs the watch when
// any of them is stale. Implements Listener.
func (w *Watcher) MarkDirty() {
	w.mu.Lock()
	skip := w.disposed || w.running
	w.mu.Unlock()
	if skip {
		return
	}

	if !w.rec.changed() {
		w.rt.metrics.changeChecked(false)
		w.rt.emit(Event{Kind: EventSkip, WatchID: w.id, Watch: w.name})
		return
	}
	w.rt.metrics.changeChecked(true)
	w.run(TriggerChange)
}

// run records fn's reads and reconciles subscriptions afterwards, whether fn
// returns or panics. Whatever was recorded before a panic is kept.
func (w *Watcher) run(trigger Trigger) {
	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.runs++
	w.mu.Unlock()

	span := w.rt.startSpan(w, trigger)
	start := time.Now()
	completed := false

	w.rec.reset()
	trap := w.rt.traps.Install(w.rec.trap)

	defer func() {
		w.rt.traps.Remove(trap)

		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		w.reconcile()

		elapsed := time.Since(start)
		w.rt.metrics.watchRan(trigger, elapsed)
		if !completed {
			span.SetStatus(codes.Error, "watch function panicked")
		}
		span.End()

		deps := w.rec.size()
		w.rt.emit(Event{
			Kind:     EventRun,
			WatchID:  w.id,
			Watch:    w.name,
			Trigger:  trigger,
			Deps:     deps,
			Duration: elapsed,
			Panicked: !completed,
		})
		w.rt.logger.Debug("watch run",
			"watch", w.id,
			"name", w.name,
			"trigger", string(trigger),
			"deps", deps,
			"panicked", !completed,
		)
	}()

	w.fn()
	completed = true
}

// Unwatch drops every subscription and the dependency record. It is
// idempotent.
func (w *Watcher) Unwatch() {
	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return
	}
	w.disposed = true
	subs := w.subs
	w.subs = make(map[proxy.Proxy]func())
	w.mu.Unlock()

	for _, unsub := range subs {
		unsub()
	}
	w.rt.metrics.subscriptionsChanged(-len(subs))
	w.rec.reset()

	w.rt.metrics.watchDisposed()
	w.rt.emit(Event{Kind: EventUnwatch, WatchID: w.id, Watch: w.name})
	w.rt.logger.Debug("watch disposed", "watch", w.id, "name", w.name)
}
