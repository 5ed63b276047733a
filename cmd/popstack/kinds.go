package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popstack/internal/popup"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the configured popup kinds",
	Long: `List the popup kinds registered from the config file, in key order.
The TUI binds the first nine kinds to the number keys.`,
	RunE: runKinds,
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}

func runKinds(cmd *cobra.Command, args []string) error {
	reg := popup.NewRegistry()
	if err := reg.RegisterTemplates(cfg.Templates(), nil); err != nil {
		return err
	}

	templates := make(map[popup.Kind]popup.Template, len(cfg.Kinds))
	for _, t := range cfg.Templates() {
		templates[t.Kind] = t
	}

	out := cmd.OutOrStdout()
	for i, kind := range reg.Kinds() {
		t := templates[kind]
		fmt.Fprintf(out, "%d  %-12s %-20s open=%-6s close=%s\n", i+1, kind, t.Title, t.Open, t.Close)
	}
	return nil
}
