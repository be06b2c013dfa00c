package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/templates"
)

func initCmd() *cobra.Command {
	var (
		template    string
		scenarioDir string
		port        int
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create reactive.json and example scenarios",
		Long: `Create reactive.json and example scenarios in a directory
(default: the working directory).

Templates:
  minimal   reactive.json and a single counter scenario
  full      Every config section plus scenarios for nested state,
            lists, batches and computed keys (default)

Examples:
  reactive init
  reactive init demo --template=minimal
  reactive init --scenarios=specs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			dir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			tmpl, err := templates.Get(template)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}

			files, err := tmpl.Create(dir, templates.Config{
				ProjectName: filepath.Base(dir),
				ScenarioDir: scenarioDir,
				Port:        port,
			})
			if err != nil {
				return err
			}

			for _, f := range files {
				info(cmd, "Created %s", f)
			}
			success(cmd, "Initialized %s from the '%s' template", dir, template)
			info(cmd, "Run the scenarios with: reactive run -c %s", dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "full", "Project template (minimal, full)")
	cmd.Flags().StringVar(&scenarioDir, "scenarios", "", "Scenario directory (default: scenarios)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Inspector port written to reactive.json")

	return cmd
}
