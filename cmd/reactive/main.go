package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configDir string
	envFile   string
	logLevel  string
	logFormat string
	noColor   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "reactive",
		Short: "Run and inspect reactive engine scenarios",
		Long: `reactive drives the watch/batch engine from YAML scenario files.

A scenario declares state, watches reading parts of it, and steps that
mutate the state and check which watches re-ran and what they read.

  • scaffold a project with init
  • run scenarios once, or on every save with --watch
  • serve an inspector with metrics and a live event stream`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				errors.DisableColors()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configDir, "config", "c", "", "Directory holding reactive.json (default: nearest to the working directory)")
	flags.StringVar(&opts.envFile, "env", ".env", "Environment file with REACTIVE_* overrides (ignored if missing)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from reactive.json)")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: text or json (default from reactive.json)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		initCmd(),
		runCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)

	return rootCmd
}

// success prints a success message.
func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", fmt.Sprintf(format, args...))
}
