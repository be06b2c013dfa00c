package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/config"
	"github.com/vango-dev/reactive/internal/dev"
	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/internal/scenario"
)

func runCmd(root *rootOptions) *cobra.Command {
	var (
		watch   bool
		asJSON  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Run scenario files",
		Long: `Run scenario files and report failed expectations.

Without arguments the scenarios listed in reactive.json are run
(default: every .yaml file in ./scenarios). Directories are scanned
one level deep.

Examples:
  reactive run
  reactive run scenarios/nested.yaml
  reactive run --watch
  reactive run --json > report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Watch = watch
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			files, err := a.scenarioFiles(args)
			if err != nil {
				return err
			}
			runner := a.runner()
			out := cmd.OutOrStdout()

			failed, err := runOnce(ctx, runner, files, out, asJSON, verbose)
			if err != nil {
				return err
			}
			if !a.cfg.Watch {
				if failed > 0 {
					return errors.New("R402").WithDetailf("%d of %d scenarios failed", failed, len(files))
				}
				return nil
			}

			info(cmd, "Watching for changes (Ctrl+C to stop)")
			w := dev.NewWatcher(dev.WatcherConfig{
				Paths:  dev.CollectWatchPaths(a.cfg, files),
				Filter: config.IsScenarioFile,
				Logger: a.logger,
			})
			w.OnChange(func(paths []string) {
				if current, err := a.scenarioFiles(args); err == nil {
					files = current
				}
				fmt.Fprintln(out)
				info(cmd, "Changed: %v", paths)
				if _, err := runOnce(ctx, runner, files, out, asJSON, verbose); err != nil && ctx.Err() == nil {
					errors.Fprint(cmd.ErrOrStderr(), err)
				}
			})
			return w.Start(ctx)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run scenarios when their files change")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print reports as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the trace of passing scenarios too")

	return cmd
}

// runOnce runs files and prints the reports. It returns the number of
// failed scenarios.
func runOnce(ctx context.Context, runner *scenario.Runner, files []string, out io.Writer, asJSON, verbose bool) (int, error) {
	reports, err := runner.RunFiles(ctx, files)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, r := range reports {
		if !r.Passed() {
			failed++
		}
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return failed, enc.Encode(reports)
	}

	for _, r := range reports {
		r.WriteText(out, verbose)
	}
	fmt.Fprintf(out, "\n%d passed, %d failed\n", len(reports)-failed, failed)
	return failed, nil
}
