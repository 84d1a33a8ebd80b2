package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var hoboSerialPattern = regexp.MustCompile(`(?i)(?:serial number|s/n)\s*:?\s*([0-9]+)`)

// parseHOBO reads a HOBO data-logger export: free-form metadata lines, then a
// header line recognizable by its timestamp column, then comma-delimited data
// rows. Logger serial and per-column units are captured into Metadata rather
// than dropped, so downstream titles and exports can reference them.
func (p *Parser) parseHOBO(path string) (*RawTable, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}

	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	headerIdx := -1
	for i, line := range lines {
		if strings.Contains(line, "Date Time") || strings.Contains(line, "Horodatage") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("%w: logger header line not found", ErrCorruptFile)
	}

	meta := Metadata{Format: FormatHOBO, Units: make(map[string]string)}
	for _, line := range lines[:headerIdx] {
		if m := hoboSerialPattern.FindStringSubmatch(line); m != nil {
			meta.LoggerSerial = m[1]
			break
		}
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[headerIdx:], "\n")))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rawColumns, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	if meta.LoggerSerial == "" {
		for _, col := range rawColumns {
			if m := hoboSerialPattern.FindStringSubmatch(col); m != nil {
				meta.LoggerSerial = m[1]
				break
			}
		}
	}
	columns := dedupeColumns(rawColumns)
	for _, col := range columns {
		if unit := hoboColumnUnit(col); unit != "" {
			meta.Units[col] = unit
		}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
		}
		if emptyRow(record) {
			continue
		}
		if len(rows) == p.maxRows {
			return nil, p.rowLimitErr()
		}
		rows = append(rows, padRow(record, len(columns)))
	}

	return &RawTable{Columns: columns, Rows: rows, Meta: meta}, nil
}

// hoboColumnUnit extracts the unit segment of a logger column name, e.g.
// "Temp, °C (LGR S/N: 10469937)" -> "°C".
func hoboColumnUnit(column string) string {
	idx := strings.Index(column, ",")
	if idx < 0 {
		return ""
	}
	unit := column[idx+1:]
	if paren := strings.Index(unit, "("); paren >= 0 {
		unit = unit[:paren]
	}
	return strings.TrimSpace(unit)
}
