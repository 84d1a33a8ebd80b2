// Package ingest parses heterogeneous sensor data files (spreadsheet,
// delimited text, HOBO logger exports) into a uniform row/column table.
// Parsing is pure: no adapter mutates any other state.
package ingest

import "fmt"

// Format identifies the source file family of a parsed table.
type Format string

const (
	FormatSpreadsheet Format = "spreadsheet"
	FormatCSV         Format = "csv"
	FormatHOBO        Format = "hobo"
)

// Metadata carries source-level information captured during parsing.
// Logger exports embed their own header metadata (units, serial); it is kept
// here so chart titles and exports can reference it.
type Metadata struct {
	Format       Format
	LoggerSerial string
	Units        map[string]string
	RowCount     int
}

// RawTable is the uniform in-memory representation of a parsed source file.
// Columns are unique; rows are ordered value sequences aligned to Columns.
type RawTable struct {
	Columns []string
	Rows    [][]string
	Meta    Metadata
}

// Head returns up to n rows for previewing.
func (t *RawTable) Head(n int) [][]string {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// dedupeColumns makes column names unique by suffixing repeats with " (2)",
// " (3)", ... in encounter order, so the result is deterministic for a given
// header row. Empty names become "column N".
func dedupeColumns(columns []string) []string {
	seen := make(map[string]int, len(columns))
	result := make([]string, len(columns))
	for i, name := range columns {
		if name == "" {
			name = fmt.Sprintf("column %d", i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s (%d)", name, n)
			seen[name]++
		}
		result[i] = name
	}
	return result
}

// padRow aligns a row to the column count, filling missing cells with "".
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
