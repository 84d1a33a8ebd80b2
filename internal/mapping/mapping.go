// Package mapping declares the correspondence between logical measurement
// fields and the column names of a source file, and infers that
// correspondence heuristically from column headers.
package mapping

import (
	"errors"
	"fmt"
)

// Field is a logical measurement field a column can be mapped to.
type Field string

const (
	FieldDate        Field = "date"
	FieldTemperature Field = "temperature"
	FieldHumidity    Field = "humidity"
	FieldDewPoint    Field = "dew_point"
)

// Fields lists all logical fields in evaluation priority order.
func Fields() []Field {
	return []Field{FieldDate, FieldTemperature, FieldHumidity, FieldDewPoint}
}

var (
	// ErrIncompleteMapping is returned when date or temperature is unset.
	ErrIncompleteMapping = errors.New("mapping: date and temperature columns are required")
	// ErrUnknownColumn is returned when a mapped column does not exist in the source.
	ErrUnknownColumn = errors.New("mapping: unknown column")
)

// ColumnMapping binds logical fields to source column names.
// Date and Temperature are mandatory; Humidity and DewPoint are optional.
type ColumnMapping struct {
	Date        string `json:"date" yaml:"date"`
	Temperature string `json:"temperature" yaml:"temperature"`
	Humidity    string `json:"humidity,omitempty" yaml:"humidity,omitempty"`
	DewPoint    string `json:"dew_point,omitempty" yaml:"dew_point,omitempty"`
}

// Column returns the source column bound to a field, or "".
func (m ColumnMapping) Column(field Field) string {
	switch field {
	case FieldDate:
		return m.Date
	case FieldTemperature:
		return m.Temperature
	case FieldHumidity:
		return m.Humidity
	case FieldDewPoint:
		return m.DewPoint
	}
	return ""
}

// Set binds a field to a source column.
func (m *ColumnMapping) Set(field Field, column string) {
	switch field {
	case FieldDate:
		m.Date = column
	case FieldTemperature:
		m.Temperature = column
	case FieldHumidity:
		m.Humidity = column
	case FieldDewPoint:
		m.DewPoint = column
	}
}

// Complete reports whether both mandatory fields are bound.
func (m ColumnMapping) Complete() bool {
	return m.Date != "" && m.Temperature != ""
}

// Validate checks that the mandatory fields are bound and that every bound
// column exists in the given source column list.
func (m ColumnMapping) Validate(columns []string) error {
	if !m.Complete() {
		return ErrIncompleteMapping
	}

	known := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		known[col] = struct{}{}
	}
	for _, field := range Fields() {
		col := m.Column(field)
		if col == "" {
			continue
		}
		if _, ok := known[col]; !ok {
			return fmt.Errorf("%w: %s column %q not present in source", ErrUnknownColumn, field, col)
		}
	}
	return nil
}
