// Package series turns mapped raw tables into typed, sorted per-sensor time
// series. All analytics downstream consume only this representation.
package series

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned when a requested range has start after end.
var ErrInvalidRange = errors.New("series: range start after end")

// Record is one normalized sample. Temperature is always present on a kept
// record; humidity and dew point are nil when absent from the source.
type Record struct {
	At          time.Time
	Temperature float64
	Humidity    *float64
	DewPoint    *float64
}

// Series is a per-sensor normalized time series, sorted by timestamp with no
// duplicate timestamps.
type Series struct {
	SensorID   string
	SensorName string
	Records    []Record
	// Dropped counts source rows discarded for unparseable date or
	// temperature. Tracked for diagnostics, never escalated per row.
	Dropped int
}

// Empty reports whether no valid records survived normalization.
func (s *Series) Empty() bool {
	return len(s.Records) == 0
}

// HasHumidity reports whether any record carries a humidity value.
func (s *Series) HasHumidity() bool {
	for _, r := range s.Records {
		if r.Humidity != nil {
			return true
		}
	}
	return false
}

// HasDewPoint reports whether any record carries a dew point value.
func (s *Series) HasDewPoint() bool {
	for _, r := range s.Records {
		if r.DewPoint != nil {
			return true
		}
	}
	return false
}

// Range restricts normalization to [Start, End], inclusive on both ends.
// A zero Start or End leaves that side unbounded.
type Range struct {
	Start time.Time
	End   time.Time
}

// Validate rejects ranges whose start is after their end.
func (r Range) Validate() error {
	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return ErrInvalidRange
	}
	return nil
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}
