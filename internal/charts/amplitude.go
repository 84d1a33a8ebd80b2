package charts

import (
	"sort"
	"time"

	"climagraph/internal/mapping"
	"climagraph/internal/series"
)

// DayValue is one daily aggregate point.
type DayValue struct {
	Day   time.Time
	Value float64
}

// DailyAmplitude groups a series by local calendar day and returns
// max(field) - min(field) per day. Days with fewer than two valid samples
// are excluded rather than zero-filled.
func DailyAmplitude(s *series.Series, field mapping.Field) []DayValue {
	type extremes struct {
		min, max float64
		count    int
	}
	days := make(map[time.Time]*extremes)

	for _, r := range s.Records {
		value, ok := fieldValue(r, field)
		if !ok {
			continue
		}
		day := time.Date(r.At.Year(), r.At.Month(), r.At.Day(), 0, 0, 0, 0, r.At.Location())
		e := days[day]
		if e == nil {
			days[day] = &extremes{min: value, max: value, count: 1}
			continue
		}
		if value < e.min {
			e.min = value
		}
		if value > e.max {
			e.max = value
		}
		e.count++
	}

	out := make([]DayValue, 0, len(days))
	for day, e := range days {
		if e.count < 2 {
			continue
		}
		out = append(out, DayValue{Day: day, Value: e.max - e.min})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// fieldValue extracts a logical field from a record, reporting presence.
func fieldValue(r series.Record, field mapping.Field) (float64, bool) {
	switch field {
	case mapping.FieldTemperature:
		return r.Temperature, true
	case mapping.FieldHumidity:
		if r.Humidity == nil {
			return 0, false
		}
		return *r.Humidity, true
	case mapping.FieldDewPoint:
		if r.DewPoint == nil {
			return 0, false
		}
		return *r.DewPoint, true
	}
	return 0, false
}
