package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dispersionlab/fdsprep/internal/catalog"
	"github.com/dispersionlab/fdsprep/internal/config"
	"github.com/dispersionlab/fdsprep/internal/dataset"
	"github.com/dispersionlab/fdsprep/internal/logging"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "fdsprep",
		Short: "Dataset preparation for particle-dispersion simulations",
		Long: `fdsprep turns raw particle-dispersion simulation output into datasets
for downstream modeling.

It reads per-scenario device files (particle_devc.csv) and a metadata
catalog, and builds three derivative datasets: a per-scenario aggregated
summary, a fully concatenated raw time series, and a windowed/normalized
time-series dataset for sequence-model training.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output build summaries as JSON")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default <root>/fdsprep.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newAggregateCmd(),
		newCompleteCmd(),
		newTimeseriesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newBuilder loads the effective config and catalog and wires up a
// dataset.Builder. The returned cleanup closes the run logger.
func newBuilder(cmd *cobra.Command) (*dataset.Builder, func(), error) {
	root, _ := cmd.Flags().GetString("root")
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(root, configPath)
	if err != nil {
		return nil, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	resolvePaths(cfg, root)

	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())

	cat, err := catalog.Load(cfg.Data.Catalog, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load metadata catalog: %w", err)
	}

	runLog := logging.NewRunLogger(cfg.Output.Dir, cfg.Logging.Level)

	b := &dataset.Builder{
		Config:  cfg,
		Catalog: cat,
		Logger:  logger,
		RunLog:  runLog,
	}
	return b, func() { runLog.Close() }, nil
}

// resolvePaths anchors relative config paths at the project root.
func resolvePaths(cfg *config.Config, root string) {
	if !filepath.IsAbs(cfg.Data.RawRoot) {
		cfg.Data.RawRoot = filepath.Join(root, cfg.Data.RawRoot)
	}
	if !filepath.IsAbs(cfg.Data.Catalog) {
		cfg.Data.Catalog = filepath.Join(root, cfg.Data.Catalog)
	}
	if !filepath.IsAbs(cfg.Output.Dir) {
		cfg.Output.Dir = filepath.Join(root, cfg.Output.Dir)
	}
}

// printSummary renders a build summary, as JSON with --json.
func printSummary(cmd *cobra.Command, name string, summary *dataset.Summary) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"dataset": name,
			"summary": summary,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"%s dataset saved to %s (%d rows from %d scenarios, %d skipped, %d failed)\n",
		name, summary.OutputPath, summary.Rows, summary.Scenarios, summary.Skipped, summary.Failed)
	return nil
}
