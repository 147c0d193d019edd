package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/dispersionlab/fdsprep/internal/catalog"
	"github.com/dispersionlab/fdsprep/internal/devc"
	"github.com/dispersionlab/fdsprep/internal/logging"
)

// identityColumns are appended to every row of the complete dataset ahead
// of the catalog attributes.
var identityColumns = []string{"Emission_Point", "Subfolder"}

// BuildComplete concatenates every cataloged scenario's raw time series into
// one table, with the scenario's identity and catalog attributes joined onto
// each row. Iteration follows catalog order; scenarios missing on disk are
// logged and skipped. Rows stream to the output as they are read, so no
// scenario's table is retained after it is written.
//
// The device column set is fixed by the first scenario read; a scenario
// whose columns differ is skipped as failed.
func (b *Builder) BuildComplete() (*Summary, error) {
	cfg := b.Config
	summary := &Summary{OutputPath: cfg.CompletePath()}

	if err := os.MkdirAll(filepath.Dir(summary.OutputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(summary.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	cw := csv.NewWriter(bw)

	keys := b.Catalog.Keys()
	bar := newProgress(len(keys), "Merging complete dataset", cfg.Logging.Progress)
	defer bar.Finish()

	var deviceCols []string
	for _, key := range keys {
		path := filepath.Join(cfg.Data.RawRoot, key.EmissionPoint, key.Tag, cfg.Data.DeviceFile)
		if _, err := os.Stat(path); err != nil {
			b.Logger.Warn("file not found, skipping scenario", "path", path)
			b.RunLog.Scenario("complete", key.Tag, key.EmissionPoint, logging.OutcomeNoFile, 0, "")
			summary.Skipped++
			bar.Add(1)
			continue
		}

		table, err := devc.ReadTable(path)
		if err != nil {
			b.Logger.Error("failed to read scenario", "path", path, "error", err)
			b.RunLog.Scenario("complete", key.Tag, key.EmissionPoint, logging.OutcomeFailed, 0, err.Error())
			summary.Failed++
			bar.Add(1)
			continue
		}

		cols := table.Columns()
		if deviceCols == nil {
			deviceCols = cols
			header := append(append(append([]string{}, cols...), identityColumns...), catalog.AttributeColumns...)
			if err := cw.Write(header); err != nil {
				return nil, fmt.Errorf("failed to write header: %w", err)
			}
		} else if !equalStrings(cols, deviceCols) {
			err := fmt.Errorf("device columns %v differ from established set %v", cols, deviceCols)
			b.Logger.Error("failed to read scenario", "path", path, "error", err)
			b.RunLog.Scenario("complete", key.Tag, key.EmissionPoint, logging.OutcomeFailed, 0, err.Error())
			summary.Failed++
			bar.Add(1)
			continue
		}

		b.warnEmptyColumns(path, table)

		rec, _ := b.Catalog.Lookup(key.Tag, key.EmissionPoint)
		attrs := rec.AttributeValues()

		row := make([]string, len(deviceCols)+len(identityColumns)+len(attrs))
		for i := 0; i < table.NumRows(); i++ {
			values := table.Row(i)
			for j, v := range values {
				row[j] = formatFloat(v)
			}
			row[len(values)] = key.EmissionPoint
			row[len(values)+1] = key.Tag
			copy(row[len(values)+2:], attrs)
			if err := cw.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}

		b.RunLog.Scenario("complete", key.Tag, key.EmissionPoint, logging.OutcomeProcessed, table.NumRows(), "")
		summary.Scenarios++
		summary.Rows += table.NumRows()
		bar.Add(1)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush rows: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush output: %w", err)
	}

	b.Logger.Info("complete dataset saved",
		"path", summary.OutputPath, "rows", summary.Rows,
		"scenarios", summary.Scenarios, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

// warnEmptyColumns reports device columns that coerced to nothing but NaN,
// the usual sign of a text column leaking through the numeric conversion.
func (b *Builder) warnEmptyColumns(path string, table *devc.Table) {
	var empty []string
	for _, col := range table.Columns() {
		values, _ := table.Column(col)
		allNaN := true
		for _, v := range values {
			if !math.IsNaN(v) {
				allNaN = false
				break
			}
		}
		if allNaN && len(values) > 0 {
			empty = append(empty, col)
		}
	}
	if len(empty) > 0 {
		b.Logger.Warn("columns contain no numeric values", "path", path, "columns", empty)
	}
}
