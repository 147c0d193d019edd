package main

import (
	"github.com/spf13/cobra"
)

func newTimeseriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeseries",
		Short: "Build the windowed/normalized time-series dataset",
		Long: `Build the sequence-model training dataset: each scenario's sensor
channels are scaled to zero mean and unit variance against that
scenario's own data, sliced into fixed-length overlapping windows and
flattened into feature vectors labeled with the emission point.

Scenarios are normalized independently, so absolute magnitudes are not
comparable across scenarios.

Examples:
  fdsprep timeseries
  fdsprep timeseries --window 20 --stride 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, cleanup, err := newBuilder(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if cmd.Flags().Changed("window") {
				builder.Config.Window.Size, _ = cmd.Flags().GetInt("window")
			}
			if cmd.Flags().Changed("stride") {
				builder.Config.Window.Stride, _ = cmd.Flags().GetInt("stride")
			}
			if err := builder.Config.Validate(); err != nil {
				return err
			}

			summary, err := builder.BuildTimeseries()
			if err != nil {
				return err
			}
			return printSummary(cmd, "timeseries", summary)
		},
	}

	cmd.Flags().Int("window", 0, "Window size in time steps (overrides config)")
	cmd.Flags().Int("stride", 0, "Stride between window starts (overrides config)")
	return cmd
}
