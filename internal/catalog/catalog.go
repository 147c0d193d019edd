// Package catalog loads the scenario metadata catalog.
//
// The catalog is a spreadsheet (.xlsx) or CSV file keyed by scenario tag and
// emission-point label. Column names are trimmed before use and the upstream
// "TAG (SUBPASTA)" header is renamed to "TAG". Duplicate keys keep the first
// occurrence; every duplicate is reported but never fatal. A missing or
// malformed catalog is fatal to the run.
package catalog

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Catalog key and header conventions of the upstream spreadsheet.
const (
	TagColumn           = "TAG"
	RawTagColumn        = "TAG (SUBPASTA)"
	EmissionPointColumn = "Locais de emissão"
)

// Canonical attribute column names, in catalog order. These are the names
// the derivative datasets use when joining attributes onto rows.
var AttributeColumns = []string{
	"Wind_Direction",
	"Wind_Speed",
	"Emission_Interval",
	"Height",
}

// Key identifies one scenario: its tag (subfolder name) and emission point.
type Key struct {
	Tag           string
	EmissionPoint string
}

// Record holds the catalog attributes of one scenario. Numeric attributes
// that fail to parse are NaN. Extra preserves any columns beyond the four
// canonical attributes as raw strings.
type Record struct {
	WindDirection    string
	WindSpeed        float64
	EmissionInterval float64
	Height           float64
	Extra            map[string]string
}

// AttributeValues returns the record's canonical attributes formatted for
// CSV output, in AttributeColumns order. NaN formats as an empty cell.
func (r Record) AttributeValues() []string {
	return []string{
		r.WindDirection,
		formatFloat(r.WindSpeed),
		formatFloat(r.EmissionInterval),
		formatFloat(r.Height),
	}
}

// ExtraValues returns the raw values of the given extra columns, in order.
// A column absent from this record yields an empty cell.
func (r Record) ExtraValues(cols []string) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = r.Extra[col]
	}
	return out
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Catalog is the immutable lookup built once at the start of a run.
type Catalog struct {
	records   map[Key]Record
	keys      []Key
	extraCols []string
}

// Load reads the catalog at path, choosing the reader by file extension:
// .xlsx via excelize (first sheet), anything else as CSV.
func Load(path string, logger *slog.Logger) (*Catalog, error) {
	var rows [][]string
	var err error

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = readXLSX(path)
	} else {
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}

	return build(rows, logger)
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("catalog %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return rows, nil
}

// build assembles the lookup from raw sheet rows. Row 0 is the header;
// spreadsheet readers may return ragged rows, so short rows are padded.
func build(rows [][]string, logger *slog.Logger) (*Catalog, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		name = strings.TrimSpace(name)
		if name == RawTagColumn {
			name = TagColumn
		}
		header[i] = name
	}

	tagIdx, pointIdx := -1, -1
	for i, name := range header {
		switch name {
		case TagColumn:
			tagIdx = i
		case EmissionPointColumn:
			pointIdx = i
		}
	}
	if tagIdx < 0 {
		return nil, fmt.Errorf("catalog is missing required column %q", TagColumn)
	}
	if pointIdx < 0 {
		return nil, fmt.Errorf("catalog is missing required column %q", EmissionPointColumn)
	}

	// Attribute columns are every non-key column, in catalog order: the
	// first four are the canonical attributes, the rest land in Extra.
	var attrIdx []int
	for i := range header {
		if i != tagIdx && i != pointIdx {
			attrIdx = append(attrIdx, i)
		}
	}

	c := &Catalog{records: make(map[Key]Record)}
	for n, i := range attrIdx {
		if n >= len(AttributeColumns) {
			c.extraCols = append(c.extraCols, header[i])
		}
	}
	for _, raw := range rows[1:] {
		row := pad(raw, len(header))

		key := Key{
			Tag:           strings.TrimSpace(row[tagIdx]),
			EmissionPoint: strings.TrimSpace(row[pointIdx]),
		}
		if key.Tag == "" && key.EmissionPoint == "" {
			continue
		}

		if _, exists := c.records[key]; exists {
			if logger != nil {
				logger.Warn("duplicate catalog key, keeping first occurrence",
					"tag", key.Tag, "emission_point", key.EmissionPoint)
			}
			continue
		}

		rec := Record{
			WindSpeed:        math.NaN(),
			EmissionInterval: math.NaN(),
			Height:           math.NaN(),
		}
		for n, i := range attrIdx {
			v := strings.TrimSpace(row[i])
			switch n {
			case 0:
				rec.WindDirection = v
			case 1:
				rec.WindSpeed = parseFloat(v)
			case 2:
				rec.EmissionInterval = parseFloat(v)
			case 3:
				rec.Height = parseFloat(v)
			default:
				if rec.Extra == nil {
					rec.Extra = make(map[string]string)
				}
				rec.Extra[header[i]] = v
			}
		}

		c.records[key] = rec
		c.keys = append(c.keys, key)
	}

	return c, nil
}

func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Lookup returns the record for an exact (tag, emission point) match.
func (c *Catalog) Lookup(tag, emissionPoint string) (Record, bool) {
	rec, ok := c.records[Key{Tag: tag, EmissionPoint: emissionPoint}]
	return rec, ok
}

// Len returns the number of distinct keys.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Keys returns the catalog keys in file order, duplicates removed.
func (c *Catalog) Keys() []Key {
	out := make([]Key, len(c.keys))
	copy(out, c.keys)
	return out
}

// ExtraColumns returns the names of catalog columns beyond the canonical
// attributes, in catalog order. Empty when the catalog carries none.
func (c *Catalog) ExtraColumns() []string {
	out := make([]string, len(c.extraCols))
	copy(out, c.extraCols)
	return out
}
