package events

import "time"

// GraphGenerated is raised for each successfully rendered chart.
type GraphGenerated struct {
	TypeID     string
	SensorIDs  []string
	OccurredAt time.Time
}

// GraphExported is raised when an image lands on disk.
type GraphExported struct {
	Path       string
	Format     string
	OccurredAt time.Time
}
