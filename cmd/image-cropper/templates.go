package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List target size presets",
	Args:  cobra.NoArgs,
	RunE:  runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, _ []string) error {
	templates := cfg.AllTemplates()
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, templates)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tRATIO\tTITLE")
	for _, t := range templates {
		fmt.Fprintf(w, "%s\t%dx%d\t%.3f\t%s\n", t.Name, t.Width, t.Height, t.AspectRatio(), t.Title)
	}
	return w.Flush()
}
