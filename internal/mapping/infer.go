package mapping

import (
	"regexp"
	"strconv"
	"strings"
)

// Inference is a best-effort partial mapping proposed from column headers.
// Fields without a match stay unset; the caller decides whether to fall back
// to manual mapping.
type Inference struct {
	Mapping      ColumnMapping
	Matched      map[Field]bool
	TableVersion string
}

// NeedsMapping reports whether a mandatory field remained unset.
func (i Inference) NeedsMapping() bool {
	return !i.Mapping.Complete()
}

// Infer proposes a mapping from an ordered column name list.
//
// Matching is greedy with no backtracking: fields are evaluated in priority
// order (date, temperature, humidity, dew point), and for each field the
// leftmost unclaimed column whose lowercased name contains one of the field's
// keywords wins. A column claimed by one field is never reused for another.
// An empty column list yields an empty inference, not an error.
func Infer(columns []string) Inference {
	inf := Inference{
		Matched:      make(map[Field]bool, len(fieldKeywords)),
		TableVersion: KeywordTableVersion,
	}

	lowered := make([]string, len(columns))
	for i, col := range columns {
		lowered[i] = strings.ToLower(col)
	}

	claimed := make(map[int]bool, len(columns))
	for _, entry := range fieldKeywords {
		idx := matchColumn(lowered, claimed, entry.keywords)
		if idx < 0 {
			continue
		}
		claimed[idx] = true
		inf.Mapping.Set(entry.field, columns[idx])
		inf.Matched[entry.field] = true
	}
	return inf
}

func matchColumn(lowered []string, claimed map[int]bool, keywords []string) int {
	for i, col := range lowered {
		if claimed[i] {
			continue
		}
		for _, keyword := range keywords {
			if strings.Contains(col, keyword) {
				return i
			}
		}
	}
	return -1
}

// datePatterns match value shapes of common date/time encodings.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{2,4}[-/]\d{1,2}[-/]\d{1,2}`),
	regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`),
	regexp.MustCompile(`\d{1,2}:\d{2}(:\d{2})?`),
}

const valueSampleSize = 5

// InferFromValues proposes a mapping by inspecting cell values, for sources
// whose headers carry no recognizable keywords. A column is taken as the date
// column when most sampled values look like dates; numeric columns are split
// by plausible range: 0..100 reads as relative humidity, -50..50 as
// temperature. First plausible column wins each field.
func InferFromValues(columns []string, rows [][]string) Inference {
	inf := Inference{
		Matched:      make(map[Field]bool, 2),
		TableVersion: KeywordTableVersion,
	}

	for i, col := range columns {
		sample := sampleColumn(rows, i)
		if len(sample) == 0 {
			continue
		}

		if !inf.Matched[FieldDate] && looksLikeDates(sample) {
			inf.Mapping.Set(FieldDate, col)
			inf.Matched[FieldDate] = true
			continue
		}

		values, ok := numericValues(sample)
		if !ok {
			continue
		}
		min, max := minMax(values)
		switch {
		case !inf.Matched[FieldHumidity] && min >= 0 && max <= 100:
			inf.Mapping.Set(FieldHumidity, col)
			inf.Matched[FieldHumidity] = true
		case !inf.Matched[FieldTemperature] && min >= -50 && max <= 50:
			inf.Mapping.Set(FieldTemperature, col)
			inf.Matched[FieldTemperature] = true
		}
	}
	return inf
}

func sampleColumn(rows [][]string, col int) []string {
	sample := make([]string, 0, valueSampleSize)
	for _, row := range rows {
		if len(sample) == valueSampleSize {
			break
		}
		if col >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[col])
		if value != "" {
			sample = append(sample, value)
		}
	}
	return sample
}

func looksLikeDates(sample []string) bool {
	matches := 0
	for _, value := range sample {
		for _, pattern := range datePatterns {
			if pattern.MatchString(value) {
				matches++
				break
			}
		}
	}
	needed := len(sample)
	if needed > 3 {
		needed = 3
	}
	return matches >= needed
}

func numericValues(sample []string) ([]float64, bool) {
	values := make([]float64, 0, len(sample))
	for _, raw := range sample {
		normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
		v, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	return values, len(values) > 0
}

func minMax(values []float64) (float64, float64) {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
