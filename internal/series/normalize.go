package series

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"climagraph/internal/ingest"
	"climagraph/internal/mapping"
)

// dateLayouts is the cascade of accepted timestamp formats, ISO-8601 first,
// then common locale layouts seen in spreadsheet and logger exports.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"01/02/2006 03:04:05 PM",
	"01/02/06 03:04:05 PM",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"2006/01/02 15:04:05",
}

// Normalize projects the mapped columns of a raw table into a typed, sorted
// series for one sensor.
//
// Per-row failures are recovered locally: a row whose date parses under none
// of the accepted layouts is dropped and counted; a non-numeric optional
// field becomes absent; a non-numeric temperature drops the row. Exact
// duplicate timestamps are resolved by keeping the last-parsed occurrence,
// which is deterministic and stable under re-parse of an unchanged file.
// Missing dew points are derived via the Magnus approximation when both
// temperature and humidity are present.
func Normalize(table *ingest.RawTable, m mapping.ColumnMapping, rng Range) (*Series, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(table.Columns); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(table.Columns))
	for i, col := range table.Columns {
		index[col] = i
	}
	dateIdx := index[m.Date]
	tempIdx := index[m.Temperature]
	humIdx, hasHum := optionalIndex(index, m.Humidity)
	dewIdx, hasDew := optionalIndex(index, m.DewPoint)

	s := &Series{Records: make([]Record, 0, len(table.Rows))}
	for _, row := range table.Rows {
		at, ok := parseTimestamp(cell(row, dateIdx))
		if !ok {
			s.Dropped++
			continue
		}
		temp, ok := parseFloat(cell(row, tempIdx))
		if !ok {
			s.Dropped++
			continue
		}

		record := Record{At: at, Temperature: temp}
		if hasHum {
			if v, ok := parseFloat(cell(row, humIdx)); ok {
				record.Humidity = &v
			}
		}
		if hasDew {
			if v, ok := parseFloat(cell(row, dewIdx)); ok {
				record.DewPoint = &v
			}
		}
		s.Records = append(s.Records, record)
	}

	sort.SliceStable(s.Records, func(i, j int) bool {
		return s.Records[i].At.Before(s.Records[j].At)
	})
	s.Records = dedupeTimestamps(s.Records)
	deriveDewPoint(s.Records)

	if !rng.Start.IsZero() || !rng.End.IsZero() {
		kept := s.Records[:0]
		for _, r := range s.Records {
			if rng.Contains(r.At) {
				kept = append(kept, r)
			}
		}
		s.Records = kept
	}
	return s, nil
}

// dedupeTimestamps keeps the last occurrence of each exact timestamp.
// Records must already be stably sorted, so equal timestamps sit adjacent in
// original parse order.
func dedupeTimestamps(records []Record) []Record {
	if len(records) < 2 {
		return records
	}
	out := records[:0]
	for i, r := range records {
		if i+1 < len(records) && records[i+1].At.Equal(r.At) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func optionalIndex(index map[string]int, column string) (int, bool) {
	if column == "" {
		return 0, false
	}
	i, ok := index[column]
	return i, ok
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseFloat accepts comma or dot decimal separators.
func parseFloat(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	value = strings.ReplaceAll(value, ",", ".")
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Describe is a compact human-readable summary used in logs.
func (s *Series) Describe() string {
	return fmt.Sprintf("%d records (%d dropped)", len(s.Records), s.Dropped)
}
