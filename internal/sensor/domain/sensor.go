package sensor

import (
	"context"
	"errors"
	"strings"
	"time"

	"climagraph/internal/mapping"
)

// Sentinel errors for sensor lookups and command validation.
var (
	ErrNotFound      = errors.New("sensor: not found")
	ErrInvalidName   = errors.New("sensor: invalid name")
	ErrDuplicateName = errors.New("sensor: duplicate name")
	ErrNoFileBound   = errors.New("sensor: no file bound")
)

const maxNameLength = 100

// Sensor represents one registered measurement logger. A sensor may exist
// without a bound file, and a bound file may still await its column mapping.
type Sensor struct {
	ID           string
	Name         string
	FilePath     string
	LoggerSerial string
	Mapping      *mapping.ColumnMapping
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks sensor invariants.
func (s Sensor) Validate() error {
	if s.ID == "" {
		return errors.New("sensor: empty id")
	}
	return ValidateName(s.Name)
}

// ValidateName rejects empty or oversized display names.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed != name {
		return ErrInvalidName
	}
	if len([]rune(name)) > maxNameLength {
		return ErrInvalidName
	}
	return nil
}

// HasFile reports whether a data file is bound.
func (s Sensor) HasFile() bool {
	return s.FilePath != ""
}

// NeedsMapping reports whether the bound file still awaits a complete
// column mapping.
func (s Sensor) NeedsMapping() bool {
	return s.HasFile() && (s.Mapping == nil || !s.Mapping.Complete())
}

// Clone returns a deep copy so repository callers cannot alias stored state.
func (s *Sensor) Clone() *Sensor {
	if s == nil {
		return nil
	}
	out := *s
	if s.Mapping != nil {
		m := *s.Mapping
		out.Mapping = &m
	}
	return &out
}

// Repository manages sensor persistence.
type Repository interface {
	Get(ctx context.Context, id string) (*Sensor, error)
	GetByName(ctx context.Context, name string) (*Sensor, error)
	List(ctx context.Context) ([]*Sensor, error)
	Save(ctx context.Context, sensor *Sensor) error
	Delete(ctx context.Context, id string) error
}
