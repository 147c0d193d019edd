package dataset

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// exportAggregatedSQLite writes the aggregated table to a SQLite database
// for downstream querying. The table is keyed by (tag, classe), so
// re-exporting replaces rows instead of duplicating them.
func exportAggregatedSQLite(path string, sensorCols, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// SQLite works best with single writer
	db.SetMaxOpenConns(1)

	if err := initAggregatedSchema(db, sensorCols, header); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(header)), ",")
	stmt, err := tx.Prepare(fmt.Sprintf(
		`INSERT OR REPLACE INTO aggregated (%s) VALUES (%s)`,
		quotedColumnList(header), placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(header))
	for _, row := range rows {
		for i, v := range row {
			if v == "" {
				args[i] = nil
			} else {
				args[i] = v
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// initAggregatedSchema creates the aggregated table: REAL for the sensor
// statistics and numeric catalog attributes, TEXT for the rest, keyed by
// (tag, classe).
func initAggregatedSchema(db *sql.DB, sensorCols, header []string) error {
	numeric := make(map[string]bool)
	for _, col := range sensorCols {
		for _, suffix := range statSuffixes {
			numeric[col+"_"+suffix] = true
		}
	}
	numeric["Wind_Speed"] = true
	numeric["Emission_Interval"] = true
	numeric["Height"] = true

	defs := make([]string, 0, len(header)+1)
	for _, col := range header {
		typ := "TEXT"
		if numeric[col] {
			typ = "REAL"
		}
		defs = append(defs, fmt.Sprintf("%q %s", col, typ))
	}
	defs = append(defs, fmt.Sprintf("PRIMARY KEY (%q, %q)", "tag", LabelColumn))

	_, err := db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS aggregated (%s)`, strings.Join(defs, ", ")))
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func quotedColumnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return strings.Join(quoted, ", ")
}
