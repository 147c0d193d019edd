package catalog

import (
	"bytes"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const sampleCSV = `TAG (SUBPASTA) ,Locais de emissão,Direção do vento,Velocidade do vento,Intervalo de emissão,Altura
V001,E1,N,2.5,10,1.5
V002,E2,SE,"3,1",20,2.0
V001,E1,S,9.9,99,9.9
V003,E3,NW,bad,30,0.5
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.csv")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	c, err := Load(writeCSV(t, sampleCSV), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	rec, ok := c.Lookup("V001", "E1")
	if !ok {
		t.Fatal("expected (V001, E1) in catalog")
	}
	// First occurrence wins over the duplicate row
	if rec.WindDirection != "N" {
		t.Errorf("WindDirection = %q, want N (first occurrence)", rec.WindDirection)
	}
	if rec.WindSpeed != 2.5 {
		t.Errorf("WindSpeed = %v, want 2.5", rec.WindSpeed)
	}
	if rec.EmissionInterval != 10 {
		t.Errorf("EmissionInterval = %v, want 10", rec.EmissionInterval)
	}
	if rec.Height != 1.5 {
		t.Errorf("Height = %v, want 1.5", rec.Height)
	}
}

func TestLoadDecimalComma(t *testing.T) {
	c, err := Load(writeCSV(t, sampleCSV), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rec, ok := c.Lookup("V002", "E2")
	if !ok {
		t.Fatal("expected (V002, E2) in catalog")
	}
	if rec.WindSpeed != 3.1 {
		t.Errorf("WindSpeed = %v, want 3.1 (decimal comma)", rec.WindSpeed)
	}
}

func TestLoadBadNumericCell(t *testing.T) {
	c, err := Load(writeCSV(t, sampleCSV), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rec, ok := c.Lookup("V003", "E3")
	if !ok {
		t.Fatal("expected (V003, E3) in catalog")
	}
	if !math.IsNaN(rec.WindSpeed) {
		t.Errorf("unparseable wind speed should be NaN, got %v", rec.WindSpeed)
	}
}

func TestLoadDuplicateWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	c, err := Load(writeCSV(t, sampleCSV), logger)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3 after dedup", c.Len())
	}
	if !strings.Contains(buf.String(), "duplicate") {
		t.Errorf("expected duplicate warning, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "V001") {
		t.Errorf("warning should name the duplicate key, got %q", buf.String())
	}
}

func TestLookupExactMatch(t *testing.T) {
	c, err := Load(writeCSV(t, sampleCSV), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, ok := c.Lookup("V001", "E2"); ok {
		t.Error("lookup must match both tag and emission point")
	}
	if _, ok := c.Lookup("v001", "E1"); ok {
		t.Error("lookup must be case-sensitive exact match")
	}
}

func TestKeysPreserveOrder(t *testing.T) {
	c, err := Load(writeCSV(t, sampleCSV), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	keys := c.Keys()
	want := []Key{
		{Tag: "V001", EmissionPoint: "E1"},
		{Tag: "V002", EmissionPoint: "E2"},
		{Tag: "V003", EmissionPoint: "E3"},
	}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %v, want %v", i, keys[i], want[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"), nil)
	if err == nil {
		t.Fatal("expected error for missing catalog")
	}
}

func TestLoadMissingKeyColumn(t *testing.T) {
	content := "TAG,Altura\nV001,1.5\n"
	_, err := Load(writeCSV(t, content), nil)
	if err == nil {
		t.Fatal("expected error for missing emission-point column")
	}
	if !strings.Contains(err.Error(), EmissionPointColumn) {
		t.Errorf("error should name the missing column, got %v", err)
	}
}

func TestLoadExtraColumns(t *testing.T) {
	content := "TAG,Locais de emissão,Dir,Vel,Int,Alt,Observações\nV001,E1,N,2.5,10,1.5,repetir\n"
	c, err := Load(writeCSV(t, content), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rec, ok := c.Lookup("V001", "E1")
	if !ok {
		t.Fatal("expected (V001, E1) in catalog")
	}
	if rec.Extra["Observações"] != "repetir" {
		t.Errorf("Extra = %v, want Observações preserved", rec.Extra)
	}

	extra := c.ExtraColumns()
	if len(extra) != 1 || extra[0] != "Observações" {
		t.Errorf("ExtraColumns() = %v, want [Observações]", extra)
	}
	values := rec.ExtraValues(extra)
	if len(values) != 1 || values[0] != "repetir" {
		t.Errorf("ExtraValues() = %v, want [repetir]", values)
	}
}

func TestExtraValuesMissingColumn(t *testing.T) {
	rec := Record{Extra: map[string]string{"Notas": "ok"}}
	got := rec.ExtraValues([]string{"Notas", "Fonte"})
	if got[0] != "ok" || got[1] != "" {
		t.Errorf("ExtraValues() = %v, want [ok \"\"]", got)
	}
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	rows := [][]interface{}{
		{"TAG (SUBPASTA)", "Locais de emissão", "Direção do vento", "Velocidade do vento", "Intervalo de emissão", "Altura"},
		{"V010", "E1", "NE", 4.2, 15, 2.5},
		{"V011", "E3", "W", 1.1, 5, 0.5},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}

	c, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	rec, ok := c.Lookup("V010", "E1")
	if !ok {
		t.Fatal("expected (V010, E1) in catalog")
	}
	if rec.WindSpeed != 4.2 {
		t.Errorf("WindSpeed = %v, want 4.2", rec.WindSpeed)
	}
	if rec.Height != 2.5 {
		t.Errorf("Height = %v, want 2.5", rec.Height)
	}
}

func TestAttributeValues(t *testing.T) {
	rec := Record{
		WindDirection:    "N",
		WindSpeed:        2.5,
		EmissionInterval: math.NaN(),
		Height:           1.5,
	}
	got := rec.AttributeValues()
	want := []string{"N", "2.5", "", "1.5"}
	if len(got) != len(want) {
		t.Fatalf("got %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AttributeValues()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
