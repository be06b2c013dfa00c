package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/proxy"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// Runner executes scenarios. Every run gets its own realm and runtime, so a
// Runner may be used from several goroutines.
type Runner struct {
	logger   *slog.Logger
	metrics  *reactive.Metrics
	tracer   trace.Tracer
	observer func(reactive.Event)
	onEntry  func(scenario string, e TraceEntry)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger passed to each runtime.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMetrics shares m across every runtime the runner creates.
func WithMetrics(m *reactive.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithTracer sets the tracer for scenario and watch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) {
		r.tracer = tracer
	}
}

// WithObserver forwards every engine event.
func WithObserver(fn func(reactive.Event)) Option {
	return func(r *Runner) {
		r.observer = fn
	}
}

// WithEntryHook is called with each trace entry as it is recorded.
func WithEntryHook(fn func(scenario string, e TraceEntry)) Option {
	return func(r *Runner) {
		r.onEntry = fn
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default().With("component", "scenario")
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(reactive.TracerName)
	}
	return r
}

// RunFiles loads and runs each file in order. A file that fails to load
// yields a report holding the load error. The returned error is non-nil only
// when ctx is cancelled.
func (r *Runner) RunFiles(ctx context.Context, paths []string) ([]*Report, error) {
	reports := make([]*Report, 0, len(paths))
	for _, path := range paths {
		s, err := Load(path)
		if err != nil {
			reports = append(reports, &Report{
				Scenario: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
				File:     path,
				Started:  time.Now(),
				Failures: []*errors.Error{errors.FromError(err, "R201")},
			})
			continue
		}
		report, err := r.Run(ctx, s)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

// Run executes s against a fresh realm. Failed expectations and step errors
// are collected in the report; the error is non-nil only when ctx is
// cancelled, in which case the partial report is returned too.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Report, error) {
	ctx, span := r.tracer.Start(ctx, "reactive.scenario.run",
		trace.WithAttributes(
			attribute.String("reactive.scenario.name", s.Name),
			attribute.String("reactive.scenario.file", s.File),
		),
	)
	defer span.End()

	x := &execution{
		runner:  r,
		s:       s,
		watches: make(map[string]*watchState, len(s.Watches)),
		report: &Report{
			Scenario: s.Name,
			File:     s.File,
			Started:  time.Now(),
			Trace:    []TraceEntry{},
		},
	}
	err := x.run(ctx)
	x.report.Duration = time.Since(x.report.Started)

	span.SetAttributes(attribute.Int("reactive.scenario.failures", len(x.report.Failures)))
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !x.report.Passed():
		span.SetStatus(codes.Error, "expectations failed")
	}

	r.logger.Info("scenario finished",
		"scenario", s.Name,
		"steps", len(s.Steps),
		"failures", len(x.report.Failures),
		"duration", x.report.Duration,
	)
	return x.report, err
}

type watchState struct {
	runs int
	last []any
}

// execution is the state of one Run.
type execution struct {
	runner *Runner
	s      *Scenario
	report *Report

	mu       sync.Mutex
	step     int
	rt       *reactive.Runtime
	root     *proxy.Object
	computed *proxy.Object
	watches  map[string]*watchState
}

func (x *execution) run(ctx context.Context) error {
	realm := proxy.NewRealm()
	x.root = realm.NewObject(x.s.State)

	opts := []reactive.Option{
		reactive.WithRealm(realm),
		reactive.WithLogger(x.runner.logger.With("scenario", x.s.Name)),
		reactive.WithTracer(x.runner.tracer),
		reactive.WithObserver(x.observe),
	}
	if x.runner.metrics != nil {
		opts = append(opts, reactive.WithMetrics(x.runner.metrics))
	}
	x.rt = reactive.New(opts...)

	var stops []reactive.Unwatch
	defer func() {
		for _, stop := range stops {
			stop()
		}
	}()

	for _, spec := range x.s.Watches {
		stops = append(stops, x.rt.Watch(x.watchFunc(spec), reactive.WithName(spec.Name)))
	}

	if len(x.s.Computed) > 0 {
		fns := make(map[string]func() any, len(x.s.Computed))
		for key, paths := range x.s.Computed {
			fns[key] = x.computeFunc(key, paths)
		}
		out, stop := x.rt.Derive(fns)
		x.computed = out
		stops = append(stops, stop)
	}

	for i, step := range x.s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		x.setStep(i + 1)
		x.apply(step)
	}
	return nil
}

func (x *execution) watchFunc(spec WatchSpec) func() {
	return func() {
		values := make([]any, len(spec.Read))
		for i, path := range spec.Read {
			values[i] = plain(read(x.root, path))
		}

		x.mu.Lock()
		st := x.watches[spec.Name]
		if st == nil {
			st = &watchState{}
			x.watches[spec.Name] = st
		}
		st.runs++
		st.last = values
		x.mu.Unlock()

		x.record(TraceEntry{Watch: spec.Name, Kind: KindRun, Values: values})
	}
}

func (x *execution) computeFunc(key string, paths []string) func() any {
	return func() any {
		values := make([]any, len(paths))
		for i, path := range paths {
			values[i] = read(x.root, path)
		}
		total := sum(values)
		x.record(TraceEntry{Watch: key, Kind: KindComputed, Values: []any{total}})
		return total
	}
}

func (x *execution) observe(e reactive.Event) {
	if x.runner.observer != nil {
		x.runner.observer(e)
	}
	switch e.Kind {
	case reactive.EventSkip:
		x.record(TraceEntry{Watch: e.Watch, Kind: KindSkip})
	case reactive.EventFlush:
		x.record(TraceEntry{Kind: KindFlush, Detail: fmt.Sprintf("%d pending", e.Pending)})
	}
}

func (x *execution) setStep(n int) {
	x.mu.Lock()
	x.step = n
	x.mu.Unlock()
}

func (x *execution) record(e TraceEntry) {
	x.mu.Lock()
	e.Step = x.step
	x.report.Trace = append(x.report.Trace, e)
	x.mu.Unlock()

	if x.runner.onEntry != nil {
		x.runner.onEntry(x.s.Name, e)
	}
}

// apply performs one step. Panics raised by the engine or by the containers
// while the step runs are reported as R206 failures.
func (x *execution) apply(step Step) {
	defer func() {
		if p := recover(); p != nil {
			x.fail(step, errors.New("R206").WithDetailf("%s: %v", step, p))
		}
	}()

	action := step.Action()
	if action != "expect" {
		x.record(TraceEntry{Kind: KindStep, Detail: step.String()})
	}

	var err error
	switch action {
	case "set":
		err = assign(x.root, step.Set.Path, step.Set.Value)
	case "delete":
		err = remove(x.root, step.Delete)
	case "push":
		err = push(x.root, step.Push.Path, step.Push.Value)
	case "shift":
		err = shift(x.root, step.Shift)
	case "batch":
		x.rt.Batch(func() {
			for _, sub := range step.Batch {
				x.apply(sub)
			}
		})
	case "expect":
		x.check(step)
	default:
		err = errors.New("R203").WithDetail("step has no single action")
	}
	if err != nil {
		x.fail(step, err)
	}
}

func (x *execution) check(step Step) {
	e := step.Expect
	if e.Computed != "" {
		var got any
		if x.computed != nil {
			got, _ = x.computed.Peek(e.Computed)
		}
		if !sameValue(got, e.Value) {
			x.fail(step, errors.New("R205").
				WithDetailf("computed %s = %v, want %v", e.Computed, plain(got), e.Value))
		}
		return
	}

	x.mu.Lock()
	st := x.watches[e.Watch]
	runs, last := 0, []any(nil)
	if st != nil {
		runs, last = st.runs, st.last
	}
	x.mu.Unlock()

	if e.Runs != nil && runs != *e.Runs {
		x.fail(step, errors.New("R205").
			WithDetailf("watch %s ran %d times, want %d", e.Watch, runs, *e.Runs))
	}
	if e.Last != nil && !sameValues(last, e.Last) {
		x.fail(step, errors.New("R205").
			WithDetailf("watch %s last read %v, want %v", e.Watch, last, e.Last))
	}
}

func (x *execution) fail(step Step, err error) {
	e := errors.FromError(err, "R206")
	if x.s.File != "" {
		e.WithLocation(x.s.File, step.Line, step.Column)
	} else if step.Line > 0 {
		e.Location = &errors.Location{Line: step.Line, Column: step.Column}
	}

	x.mu.Lock()
	x.report.Failures = append(x.report.Failures, e)
	x.mu.Unlock()

	x.record(TraceEntry{Kind: KindFail, Detail: e.Detail})
	x.runner.logger.Debug("scenario step failed", "scenario", x.s.Name, "step", step.String(), "error", e)
}
