// Package dataset builds the three derivative datasets from the raw
// simulation tree: the per-scenario aggregated summary, the concatenated
// complete dataset, and the windowed timeseries dataset.
//
// Per-scenario failures (missing device file, missing catalog key, parse or
// scale errors) are logged and skipped; one bad scenario never aborts a run.
// A catalog failure or a feature-width mismatch in the timeseries output is
// fatal.
package dataset

import (
	"log/slog"
	"math"
	"strconv"

	"github.com/dispersionlab/fdsprep/internal/catalog"
	"github.com/dispersionlab/fdsprep/internal/config"
	"github.com/dispersionlab/fdsprep/internal/logging"
)

// Builder carries the shared collaborators of the dataset builds.
type Builder struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Logger  *slog.Logger
	RunLog  *logging.RunLogger
}

// Summary reports the outcome of one dataset build.
type Summary struct {
	Scenarios  int    `json:"scenarios"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	Rows       int    `json:"rows"`
	OutputPath string `json:"output_path"`
}

// formatFloat renders a value for CSV output; NaN becomes an empty cell.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
