package events

import (
	"time"

	"climagraph/internal/ingest"
	"climagraph/internal/mapping"
)

// SensorAdded is raised when a sensor is registered.
type SensorAdded struct {
	SensorID   string
	Name       string
	OccurredAt time.Time
}

// SensorRenamed is raised when a sensor's display name changes.
type SensorRenamed struct {
	SensorID   string
	OldName    string
	NewName    string
	OccurredAt time.Time
}

// SensorDeleted is raised when a sensor and its bound state are removed.
type SensorDeleted struct {
	SensorID   string
	Name       string
	OccurredAt time.Time
}

// FileBound is raised when a data file is attached to a sensor. NeedsMapping
// reports whether automatic inference left gaps the operator must fill.
type FileBound struct {
	SensorID     string
	Name         string
	Path         string
	Format       ingest.Format
	LoggerSerial string
	NeedsMapping bool
	OccurredAt   time.Time
}

// MappingSaved is raised when a complete column mapping is committed.
type MappingSaved struct {
	SensorID   string
	Name       string
	Mapping    mapping.ColumnMapping
	OccurredAt time.Time
}
