package series

import "math"

// Magnus approximation constants, valid for ordinary indoor/outdoor ranges.
const (
	magnusA = 17.27
	magnusB = 237.7 // °C
)

// DewPoint derives the dew point in °C from temperature (°C) and relative
// humidity (%) using the Magnus approximation.
func DewPoint(temperature, humidity float64) float64 {
	alpha := math.Log(humidity/100) + magnusA*temperature/(magnusB+temperature)
	return magnusB * alpha / (magnusA - alpha)
}

// deriveDewPoint fills in missing dew points where both temperature and a
// plausible humidity are present. Computed at read time, never persisted.
func deriveDewPoint(records []Record) {
	for i := range records {
		r := &records[i]
		if r.DewPoint != nil || r.Humidity == nil {
			continue
		}
		h := *r.Humidity
		if h <= 0 || h > 100 {
			continue
		}
		dp := DewPoint(r.Temperature, h)
		r.DewPoint = &dp
	}
}
