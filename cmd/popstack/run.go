package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popstack/internal/adapter/output"
	"github.com/jmylchreest/popstack/internal/scenario"
)

var runOpts struct {
	format   string
	template string
	final    bool
	noAge    bool
	list     bool
}

var runCmd = &cobra.Command{
	Use:   "run [script.yaml...]",
	Short: "Replay scripted scenarios against the popup manager",
	Long: `Run scenario scripts against a fresh popup manager and print a trace of
every step: the action, its result, the events raised and the resulting
stack, queue and overlay state.

Without arguments the bundled scenarios are run. A script fails when an
expect step does not match or the manager breaks a stacking invariant.

Examples:
  # Run the bundled scenarios
  popstack run

  # List them
  popstack run --list

  # Run a script and print only the final state as JSON
  popstack run my_flow.yaml --final --format json

  # Custom template for the final stack
  popstack run --final --template '{{.Popup.SiblingIndex}} {{.Popup.Name}}'`,
	RunE: runScenarios,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runOpts.format, "format", "f", "plain",
		fmt.Sprintf("Output format %v", output.ValidFormats()))
	runCmd.Flags().StringVar(&runOpts.template, "template", "",
		"Custom Go template for each popup (plain and line formats)")
	runCmd.Flags().BoolVar(&runOpts.final, "final", false,
		"Print only the final snapshot of each scenario")
	runCmd.Flags().BoolVar(&runOpts.noAge, "no-age", false,
		"Omit popup ages")
	runCmd.Flags().BoolVar(&runOpts.list, "list", false,
		"List scenarios without running them")
}

func runScenarios(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(runOpts.format)
	if err != nil {
		return err
	}

	scripts, err := loadScripts(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if runOpts.list {
		for _, s := range scripts {
			fmt.Fprintf(out, "%-20s %s\n", s.Name, s.Description)
		}
		return nil
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = runOpts.template
	opts.ShowAge = !runOpts.noAge
	formatter := output.NewFormatter(format, opts)

	runner := scenario.NewRunner(cfg, logger)
	failed := 0
	for _, script := range scripts {
		trace, runErr := runner.Run(cmd.Context(), script)
		if errors.Is(runErr, context.Canceled) {
			return runErr
		}

		if trace != nil {
			if runOpts.final {
				err = formatter.FormatSnapshot(out, trace.Final)
			} else {
				err = formatter.FormatTrace(out, trace)
			}
			if err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}

		if runErr != nil {
			failed++
			logger.Error("scenario failed", "scenario", script.Name, "error", runErr)
			fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s: %v\n", script.Name, runErr)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(scripts))
	}
	return nil
}

func loadScripts(paths []string) ([]*scenario.Script, error) {
	if len(paths) == 0 {
		return scenario.Builtin()
	}

	scripts := make([]*scenario.Script, 0, len(paths))
	for _, path := range paths {
		s, err := scenario.Load(path)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}
