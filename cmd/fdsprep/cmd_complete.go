package main

import (
	"github.com/spf13/cobra"
)

func newCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Build the concatenated raw time-series dataset",
		Long: `Concatenate every cataloged scenario's raw device time series into one
table, with the scenario's identity and catalog attributes joined onto
every row. Values are numerically coerced but not scaled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, cleanup, err := newBuilder(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := builder.BuildComplete()
			if err != nil {
				return err
			}
			return printSummary(cmd, "complete", summary)
		},
	}
}
