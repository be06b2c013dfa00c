package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/reactive/internal/config"
	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/internal/scenario"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// app bundles what the commands share once configuration is loaded.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *reactive.Metrics
}

func loadApp(opts *rootOptions, stderr io.Writer) (*app, error) {
	if opts.envFile != "" {
		if err := config.LoadDotEnv(opts.envFile); err != nil {
			return nil, err
		}
	}

	var (
		cfg *config.Config
		err error
	)
	if opts.configDir != "" {
		cfg, err = config.Load(opts.configDir)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   newLogger(stderr, cfg.Log),
		registry: prometheus.NewRegistry(),
	}
	slog.SetDefault(a.logger)

	if cfg.Metrics.On() {
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.metrics = reactive.NewMetrics(
			reactive.WithRegistry(a.registry),
			reactive.WithNamespace(cfg.Metrics.Namespace),
		)
	}
	return a, nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// runner builds a scenario runner wired to the app's logger, metrics and
// the global tracer provider.
func (a *app) runner(extra ...scenario.Option) *scenario.Runner {
	opts := []scenario.Option{
		scenario.WithLogger(a.logger),
		scenario.WithTracer(otel.Tracer(reactive.TracerName)),
	}
	if a.metrics != nil {
		opts = append(opts, scenario.WithMetrics(a.metrics))
	}
	return scenario.NewRunner(append(opts, extra...)...)
}

// scenarioFiles resolves command-line arguments, relative to the working
// directory, or the configured entries when there are none.
func (a *app) scenarioFiles(args []string) ([]string, error) {
	cfg := *a.cfg
	if len(args) > 0 {
		cfg.Scenarios = make([]string, 0, len(args))
		for _, arg := range args {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return nil, err
			}
			cfg.Scenarios = append(cfg.Scenarios, abs)
		}
	}

	files, err := cfg.ScenarioFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("R401").
			WithSuggestion("Pass scenario files or set \"scenarios\" in " + config.ConfigFileName)
	}
	return files, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
