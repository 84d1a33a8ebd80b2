package charts

import (
	"sort"

	"climagraph/internal/series"
)

// Summary is a five-number distribution summary of one sensor's humidity.
type Summary struct {
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	Count  int
}

// HumidityProfile computes per-sensor summary statistics over all humidity
// values in the series. Returns ok=false when the series has no humidity.
func HumidityProfile(s *series.Series) (Summary, bool) {
	values := make([]float64, 0, len(s.Records))
	for _, r := range s.Records {
		if r.Humidity != nil {
			values = append(values, *r.Humidity)
		}
	}
	if len(values) == 0 {
		return Summary{}, false
	}
	sort.Float64s(values)

	return Summary{
		Min:    values[0],
		Q1:     quantile(values, 0.25),
		Median: quantile(values, 0.5),
		Q3:     quantile(values, 0.75),
		Max:    values[len(values)-1],
		Count:  len(values),
	}, true
}

// quantile interpolates linearly over a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
