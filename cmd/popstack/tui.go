package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popstack/internal/tui"
)

var tuiOpts struct {
	noWatch bool
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive popup demo",
	Long: `Launch a terminal host that drives the popup manager.

Popups animate in and out on a frame clock, the overlay is drawn in its
sibling slot below the top popup, and the event log shows open, close,
all-closed and overlay-clicked events as they are raised. The config file
is watched and reloaded while the TUI runs.

Key bindings:
  1-9         Request the popup kind bound to the key
  enter       Open the next queued popup immediately
  esc         Back (close the most recent popup)
  x / X       Force close the top popup / close everything
  space       Click the overlay (closes the top popup)
  m / f       Toggle overlay mode / force the fade
  + / 0       Raise / reset the canvas sorting order
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().BoolVar(&tuiOpts.noWatch, "no-watch", false,
		"Do not reload the config file when it changes")
}

func runTUI(cmd *cobra.Command, args []string) error {
	path := configPath()
	if tuiOpts.noWatch {
		path = ""
	}

	// Log lines would tear the alternate screen
	tuiLogger := logger
	if !globalOpts.verbose {
		tuiLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return tui.Run(cmd.Context(), tui.RunOptions{
		Config:     cfg,
		ConfigPath: path,
		Logger:     tuiLogger,
	})
}
