package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/reactive/internal/config"
	"github.com/vango-dev/reactive/internal/dev"
	"github.com/vango-dev/reactive/internal/inspector"
	"github.com/vango-dev/reactive/internal/scenario"
)

func serveCmd(root *rootOptions) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve [files...]",
		Short: "Start the inspector",
		Long: `Start the inspector HTTP server.

Scenarios are run once on start and again whenever their files change.
Connect to /events for a live stream of engine events, fetch /trace for
the latest reports, or POST /run to run them on demand.

Examples:
  reactive serve
  reactive serve --port=8080
  reactive serve --host=0.0.0.0 scenarios/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if port > 0 {
				a.cfg.Inspector.Port = port
			}
			if host != "" {
				a.cfg.Inspector.Host = host
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			var runner *scenario.Runner
			opts := inspector.Options{
				Addr:     a.cfg.Address(),
				Registry: a.registry,
				Tracer:   otel.Tracer("reactive/inspector"),
				Logger:   a.logger.With("component", "inspector"),
				Run: func(ctx context.Context) ([]*scenario.Report, error) {
					files, err := a.scenarioFiles(args)
					if err != nil {
						return nil, err
					}
					return runner.RunFiles(ctx, files)
				},
			}
			if a.metrics != nil {
				opts.Registerer = a.registry
				opts.Namespace = a.cfg.Metrics.Namespace
			}
			srv := inspector.New(opts)
			runner = a.runner(
				scenario.WithObserver(srv.PublishEvent),
				scenario.WithEntryHook(srv.PublishEntry),
			)

			files, err := a.scenarioFiles(args)
			if err != nil {
				return err
			}
			if _, err := srv.RunNow(ctx); err != nil {
				a.logger.Error("initial run failed", "error", err)
			}

			w := dev.NewWatcher(dev.WatcherConfig{
				Paths:  dev.CollectWatchPaths(a.cfg, files),
				Filter: config.IsScenarioFile,
				Logger: a.logger,
			})
			w.OnChange(func(paths []string) {
				a.logger.Info("scenarios changed", "paths", paths)
				if _, err := srv.RunNow(ctx); err != nil && ctx.Err() == nil {
					a.logger.Error("run failed", "error", err)
				}
			})
			go func() {
				if err := w.Start(ctx); err != nil {
					a.logger.Error("watcher stopped", "error", err)
				}
			}()

			success(cmd, "Inspector running at http://%s", a.cfg.Address())
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from reactive.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from reactive.json)")

	return cmd
}
