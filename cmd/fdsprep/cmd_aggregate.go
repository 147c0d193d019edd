package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newAggregateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Build the per-scenario aggregated summary dataset",
		Long: `Build a dataset with one row per scenario, holding mean, std, max and
min for every sensor channel, joined with the scenario's catalog
attributes and class label.

Examples:
  fdsprep aggregate
  fdsprep aggregate --sqlite        # also export to a SQLite database
  fdsprep aggregate --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, cleanup, err := newBuilder(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			var sqlitePath string
			if export, _ := cmd.Flags().GetBool("sqlite"); export {
				base := strings.TrimSuffix(builder.Config.Output.Aggregated, filepath.Ext(builder.Config.Output.Aggregated))
				sqlitePath = filepath.Join(builder.Config.Output.Dir, base+".db")
			}

			summary, err := builder.BuildAggregated(sqlitePath)
			if err != nil {
				return err
			}
			return printSummary(cmd, "aggregated", summary)
		},
	}

	cmd.Flags().Bool("sqlite", false, "Also export the dataset to a SQLite database")
	return cmd
}
