package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// LabelColumn is the class column name of the windowed dataset.
const LabelColumn = "classe"

// Writer appends one scenario's window batch at a time to the timeseries
// dataset file, so the full output never needs to fit in memory.
//
// The file is opened in append mode per batch and the header (f0..f{K-1},
// classe) is written exactly once, on the first non-empty batch. That first
// batch also fixes the feature-vector width: a later batch with a different
// width is an error, since a ragged table would silently corrupt every
// downstream consumer. The header-written state is scoped to one Writer,
// i.e. one output-file lifetime.
type Writer struct {
	path        string
	width       int
	wroteHeader bool
	rows        int
}

// NewWriter prepares the output file at path, creating its directory and
// removing any previous run's file so reruns are idempotent.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove previous output: %w", err)
	}
	return &Writer{path: path}, nil
}

// Append writes one scenario's batch of flattened window vectors, each
// labeled with the scenario's class. An empty batch writes nothing, not
// even the header.
func (w *Writer) Append(batch [][]float64, label string) error {
	if len(batch) == 0 {
		return nil
	}

	if !w.wroteHeader {
		w.width = len(batch[0])
	}
	for i, vec := range batch {
		if len(vec) != w.width {
			return fmt.Errorf("feature vector %d has length %d, want %d: sensor column count differs between scenarios", i, len(vec), w.width)
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	cw := csv.NewWriter(bw)

	if !w.wroteHeader {
		header := make([]string, w.width+1)
		for i := 0; i < w.width; i++ {
			header[i] = fmt.Sprintf("f%d", i)
		}
		header[w.width] = LabelColumn
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		w.wroteHeader = true
	}

	row := make([]string, w.width+1)
	for _, vec := range batch {
		for i, v := range vec {
			row[i] = formatFloat(v)
		}
		row[w.width] = label
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush rows: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	w.rows += len(batch)
	return nil
}

// Rows returns the number of data rows written so far (excludes header).
func (w *Writer) Rows() int {
	return w.rows
}

// Width returns the feature-vector width fixed by the first batch,
// or 0 before any batch was written.
func (w *Writer) Width() int {
	if !w.wroteHeader {
		return 0
	}
	return w.width
}
