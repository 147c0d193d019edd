package dataset

import (
	"fmt"

	"github.com/dispersionlab/fdsprep/internal/devc"
	"github.com/dispersionlab/fdsprep/internal/logging"
	"github.com/dispersionlab/fdsprep/internal/scan"
	"github.com/dispersionlab/fdsprep/internal/stats"
	"github.com/dispersionlab/fdsprep/internal/window"
)

// MassColumn is excluded from the windowed dataset: it tracks emitted
// particle mass, not a sensor of interest.
const MassColumn = "mass"

// BuildTimeseries builds the windowed/normalized dataset: per scenario, the
// sensor matrix is scaled to zero mean and unit variance against that
// scenario's own data, sliced into overlapping windows, flattened and
// appended to the output with the emission point as class label.
func (b *Builder) BuildTimeseries() (*Summary, error) {
	cfg := b.Config
	scanner := scan.New(cfg.Data.RawRoot, cfg.Data.EmissionPoints, cfg.Data.DeviceFile)

	total, err := scanner.Count()
	if err != nil {
		return nil, err
	}
	scenarios, err := scanner.Scenarios()
	if err != nil {
		return nil, err
	}

	writer, err := NewWriter(cfg.TimeseriesPath())
	if err != nil {
		return nil, err
	}

	summary := &Summary{OutputPath: cfg.TimeseriesPath()}
	bar := newProgress(total, "Building timeseries dataset", cfg.Logging.Progress)
	defer bar.Finish()

	for _, sc := range scenarios {
		if !sc.HasDeviceFile() {
			b.Logger.Debug("device file missing, skipping scenario", "path", sc.DevicePath)
			b.RunLog.Scenario("timeseries", sc.Tag, sc.EmissionPoint, logging.OutcomeNoFile, 0, "")
			summary.Skipped++
			bar.Add(1)
			continue
		}
		if _, ok := b.Catalog.Lookup(sc.Tag, sc.EmissionPoint); !ok {
			b.Logger.Warn("metadata not found for scenario",
				"tag", sc.Tag, "emission_point", sc.EmissionPoint)
			b.RunLog.Scenario("timeseries", sc.Tag, sc.EmissionPoint, logging.OutcomeNoMetadata, 0, "")
			summary.Skipped++
			bar.Add(1)
			continue
		}

		batch, err := b.windowScenario(sc)
		if err != nil {
			b.Logger.Error("failed to process scenario",
				"path", sc.DevicePath, "error", err)
			b.RunLog.Scenario("timeseries", sc.Tag, sc.EmissionPoint, logging.OutcomeFailed, 0, err.Error())
			summary.Failed++
			bar.Add(1)
			continue
		}

		// A width mismatch or I/O failure here corrupts the shared
		// output table, so it aborts the run.
		if err := writer.Append(batch, sc.EmissionPoint); err != nil {
			return nil, fmt.Errorf("scenario %s/%s: %w", sc.EmissionPoint, sc.Tag, err)
		}

		b.RunLog.Scenario("timeseries", sc.Tag, sc.EmissionPoint, logging.OutcomeProcessed, len(batch), "")
		summary.Scenarios++
		bar.Add(1)
	}

	summary.Rows = writer.Rows()
	b.Logger.Info("timeseries dataset saved",
		"path", summary.OutputPath, "rows", summary.Rows,
		"scenarios", summary.Scenarios, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

// windowScenario loads one scenario's device table, normalizes it against
// its own statistics and slices it into flattened windows.
func (b *Builder) windowScenario(sc scan.Scenario) ([][]float64, error) {
	table, err := devc.ReadTable(sc.DevicePath)
	if err != nil {
		return nil, err
	}

	table.DropColumn(MassColumn)

	cols := table.SensorColumns()
	if len(cols) == 0 {
		return nil, fmt.Errorf("%s: no sensor columns", sc.DevicePath)
	}
	m, err := table.Matrix(cols)
	if err != nil {
		return nil, err
	}

	var scaler stats.Scaler
	scaler.FitTransform(m)

	size, stride := b.Config.Window.Size, b.Config.Window.Stride
	batch := make([][]float64, 0, window.Count(len(m), size, stride))
	for vec := range window.Slide(m, size, stride) {
		batch = append(batch, vec)
	}
	return batch, nil
}
