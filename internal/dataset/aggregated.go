package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dispersionlab/fdsprep/internal/catalog"
	"github.com/dispersionlab/fdsprep/internal/devc"
	"github.com/dispersionlab/fdsprep/internal/logging"
	"github.com/dispersionlab/fdsprep/internal/scan"
	"github.com/dispersionlab/fdsprep/internal/stats"
)

// statSuffixes is the per-sensor reduction order of the aggregated dataset.
var statSuffixes = []string{"mean", "std", "max", "min"}

// BuildAggregated builds the per-scenario summary dataset: one row per
// scenario holding mean/std/max/min for every sensor channel, joined with
// all of the scenario's catalog columns, class label and tag. When sqlitePath
// is non-empty the finished table is also written to a SQLite database.
//
// The sensor channel set is fixed by the first successful scenario; a
// scenario whose channels differ is skipped as failed.
func (b *Builder) BuildAggregated(sqlitePath string) (*Summary, error) {
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

	summary := &Summary{OutputPath: cfg.AggregatedPath()}
	bar := newProgress(total, "Building aggregated dataset", cfg.Logging.Progress)
	defer bar.Finish()

	var sensorCols []string
	var header []string
	var rows [][]string

	for _, sc := range scenarios {
		if !sc.HasDeviceFile() {
			b.RunLog.Scenario("aggregated", sc.Tag, sc.EmissionPoint, logging.OutcomeNoFile, 0, "")
			summary.Skipped++
			bar.Add(1)
			continue
		}
		rec, ok := b.Catalog.Lookup(sc.Tag, sc.EmissionPoint)
		if !ok {
			b.Logger.Warn("metadata not found for scenario",
				"tag", sc.Tag, "emission_point", sc.EmissionPoint)
			b.RunLog.Scenario("aggregated", sc.Tag, sc.EmissionPoint, logging.OutcomeNoMetadata, 0, "")
			summary.Skipped++
			bar.Add(1)
			continue
		}

		row, cols, err := b.aggregateScenario(sc, rec, sensorCols)
		if err != nil {
			b.Logger.Error("failed to process scenario",
				"path", sc.DevicePath, "error", err)
			b.RunLog.Scenario("aggregated", sc.Tag, sc.EmissionPoint, logging.OutcomeFailed, 0, err.Error())
			summary.Failed++
			bar.Add(1)
			continue
		}
		if sensorCols == nil {
			sensorCols = cols
			header = aggregatedHeader(cols, b.Catalog.ExtraColumns())
		}

		rows = append(rows, row)
		b.RunLog.Scenario("aggregated", sc.Tag, sc.EmissionPoint, logging.OutcomeProcessed, 1, "")
		summary.Scenarios++
		bar.Add(1)
	}

	if err := writeCSVFile(summary.OutputPath, header, rows); err != nil {
		return nil, err
	}
	summary.Rows = len(rows)

	if sqlitePath != "" && len(rows) > 0 {
		if err := exportAggregatedSQLite(sqlitePath, sensorCols, header, rows); err != nil {
			return nil, err
		}
		b.Logger.Info("aggregated dataset exported", "path", sqlitePath)
	}

	b.Logger.Info("aggregated dataset saved",
		"path", summary.OutputPath, "rows", summary.Rows,
		"scenarios", summary.Scenarios, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

// aggregateScenario reduces one scenario to a single feature row. wantCols
// is the channel set fixed by the first scenario, or nil for the first.
func (b *Builder) aggregateScenario(sc scan.Scenario, rec catalog.Record, wantCols []string) ([]string, []string, error) {
	table, err := devc.ReadTable(sc.DevicePath)
	if err != nil {
		return nil, nil, err
	}

	// Unlike the windowed dataset, the summary keeps the mass channel;
	// only the time index is dropped.
	table.DropColumn(devc.TimeColumn)

	cols := table.Columns()
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("%s: no sensor columns", sc.DevicePath)
	}
	if wantCols != nil && !equalStrings(cols, wantCols) {
		return nil, nil, fmt.Errorf("%s: sensor columns %v differ from established set %v", sc.DevicePath, cols, wantCols)
	}

	extraCols := b.Catalog.ExtraColumns()
	row := make([]string, 0, len(cols)*len(statSuffixes)+len(catalog.AttributeColumns)+len(extraCols)+2)
	for _, col := range cols {
		values, _ := table.Column(col)
		s := stats.Summarize(values)
		row = append(row,
			formatFloat(s.Mean), formatFloat(s.Std), formatFloat(s.Max), formatFloat(s.Min))
	}
	row = append(row, rec.AttributeValues()...)
	row = append(row, rec.ExtraValues(extraCols)...)
	row = append(row, sc.EmissionPoint, sc.Tag)
	return row, cols, nil
}

// aggregatedHeader names the columns: per-sensor stats, catalog attributes
// (canonical first, then any extra catalog columns), class label, tag.
func aggregatedHeader(sensorCols, extraCols []string) []string {
	header := make([]string, 0, len(sensorCols)*len(statSuffixes)+len(catalog.AttributeColumns)+len(extraCols)+2)
	for _, col := range sensorCols {
		for _, suffix := range statSuffixes {
			header = append(header, col+"_"+suffix)
		}
	}
	header = append(header, catalog.AttributeColumns...)
	header = append(header, extraCols...)
	header = append(header, LabelColumn, "tag")
	return header
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// writeCSVFile writes header+rows to path in one pass, creating the output
// directory. With no rows the file is created empty, mirroring the
// incremental writer's header-on-first-batch rule.
func writeCSVFile(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	cw := csv.NewWriter(bw)

	if len(rows) > 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		for _, row := range rows {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush rows: %w", err)
	}
	return bw.Flush()
}
