package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dispersionlab/fdsprep/internal/catalog"
	"github.com/dispersionlab/fdsprep/internal/config"
	"github.com/dispersionlab/fdsprep/internal/logging"
)

// fixture is a raw-data tree with a catalog and a ready Builder.
type fixture struct {
	cfg     *config.Config
	builder *Builder
	root    string
}

// deviceFile renders a two-row-header device file from rows of
// (time, s1, s2, mass) values.
func deviceFile(rows [][4]float64) string {
	var sb strings.Builder
	sb.WriteString("\"s\",\"m/s\",\"m/s\",\"kg\"\n")
	sb.WriteString("\"Time\",\"S1\",\"S2\",\"mass\"\n")
	for _, r := range rows {
		sb.WriteString(formatFloat(r[0]) + "," + formatFloat(r[1]) + "," + formatFloat(r[2]) + "," + formatFloat(r[3]) + "\n")
	}
	return sb.String()
}

// rampRows generates n device rows with linearly increasing channels.
func rampRows(n int) [][4]float64 {
	rows := make([][4]float64, n)
	for i := range rows {
		t := float64(i)
		rows[i] = [4]float64{t / 10, t + 1, (t + 1) * 10, 0.5}
	}
	return rows
}

// newFixture builds a tree with the given scenarios (point/tag -> device
// file content; empty content means the directory exists without the file)
// and a catalog covering the keys in catalogKeys.
func newFixture(t *testing.T, scenarios map[string]string, catalogKeys []string) *fixture {
	t.Helper()
	root := t.TempDir()

	for layout, content := range scenarios {
		parts := strings.SplitN(layout, "/", 2)
		dir := filepath.Join(root, "raw", parts[0], parts[1])
		if err := os.MkdirAll(dir, 0700); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if content != "" {
			if err := os.WriteFile(filepath.Join(dir, "particle_devc.csv"), []byte(content), 0600); err != nil {
				t.Fatalf("write device file: %v", err)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("TAG (SUBPASTA),Locais de emissão,Direção do vento,Velocidade do vento,Intervalo de emissão,Altura\n")
	for _, key := range catalogKeys {
		parts := strings.SplitN(key, "/", 2)
		sb.WriteString(parts[1] + "," + parts[0] + ",N,2.5,10,1.5\n")
	}
	catalogPath := filepath.Join(root, "raw", "metadata.csv")
	if err := os.WriteFile(catalogPath, []byte(sb.String()), 0600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cfg := config.Default()
	cfg.Data.RawRoot = filepath.Join(root, "raw")
	cfg.Data.Catalog = catalogPath
	cfg.Output.Dir = filepath.Join(root, "processed")
	cfg.Logging.Progress = false

	logger := logging.NewLogger("info", io.Discard)
	cat, err := catalog.Load(catalogPath, logger)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	return &fixture{
		cfg:  cfg,
		root: root,
		builder: &Builder{
			Config:  cfg,
			Catalog: cat,
			Logger:  logger,
		},
	}
}

// readCSVFile parses an output file into records.
func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return records
}
