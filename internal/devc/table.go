// Package devc parses FDS-style device output files (particle_devc.csv).
//
// Device files carry two header rows: the first is a units marker line and is
// discarded, the second holds the true column names. All non-Time cells are
// coerced to float64; cells that do not parse become NaN and propagate
// through downstream statistics.
package devc

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// TimeColumn is the name of the time-index column in device files.
const TimeColumn = "Time"

// Table is a numeric, NaN-carrying view of one scenario's device file.
// Rows are time steps, columns are named channels.
type Table struct {
	cols []string
	rows [][]float64
}

// ReadTable reads a device file: line 1 is discarded, line 2 (trimmed) is
// promoted to the header, every following line is a data row. A data row
// whose field count differs from the header is an error for the whole file,
// as is any CSV syntax error; a broken file never yields a partial table.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open device file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	// Units marker line
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("failed to read units line of %s: %w", path, err)
	}

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header line of %s: %w", path, err)
	}

	cols := make([]string, len(header))
	for i, name := range header {
		cols[i] = strings.TrimSpace(name)
	}

	var rows [][]float64
	line := 2
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse device file %s: %w", path, err)
		}
		line++
		if len(rec) != len(cols) {
			return nil, fmt.Errorf("%s: line %d has %d fields, want %d", path, line, len(rec), len(cols))
		}
		row := make([]float64, len(rec))
		for i, cell := range rec {
			row[i] = parseCell(cell)
		}
		rows = append(rows, row)
	}

	return &Table{cols: cols, rows: rows}, nil
}

// parseCell converts one CSV cell to float64, mapping empty or
// non-numeric cells to NaN.
func parseCell(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Columns returns the column names in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	return t.index(name) >= 0
}

func (t *Table) index(name string) int {
	for i, c := range t.cols {
		if c == name {
			return i
		}
	}
	return -1
}

// DropColumn removes the named column in place. Dropping a column that does
// not exist is a no-op.
func (t *Table) DropColumn(name string) {
	idx := t.index(name)
	if idx < 0 {
		return
	}
	t.cols = append(t.cols[:idx], t.cols[idx+1:]...)
	for i, row := range t.rows {
		t.rows[i] = append(row[:idx], row[idx+1:]...)
	}
}

// Column returns a copy of the named column's values.
func (t *Table) Column(name string) ([]float64, bool) {
	idx := t.index(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]float64, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out, true
}

// Row returns the i-th data row. The returned slice is shared with the table.
func (t *Table) Row(i int) []float64 {
	return t.rows[i]
}

// SensorColumns returns all column names except Time, in file order.
func (t *Table) SensorColumns() []string {
	out := make([]string, 0, len(t.cols))
	for _, c := range t.cols {
		if c != TimeColumn {
			out = append(out, c)
		}
	}
	return out
}

// Matrix returns the values of the given columns as a row-major matrix.
// Every requested column must exist.
func (t *Table) Matrix(cols []string) ([][]float64, error) {
	idx := make([]int, len(cols))
	for i, name := range cols {
		j := t.index(name)
		if j < 0 {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		idx[i] = j
	}

	m := make([][]float64, len(t.rows))
	for r, row := range t.rows {
		out := make([]float64, len(idx))
		for i, j := range idx {
			out[i] = row[j]
		}
		m[r] = out
	}
	return m, nil
}
