package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"climagraph/internal/eventing"
	"climagraph/internal/ingest"
	"climagraph/internal/mapping"
	"climagraph/internal/sensor/application/events"
	sensor "climagraph/internal/sensor/domain"
)

// TableSource yields the parsed table for a bound file path and drops any
// cached state for paths no sensor references anymore. The ingest cache
// satisfies this.
type TableSource interface {
	Get(path string) (*ingest.RawTable, error)
	Invalidate(path string)
}

// Service implements sensor registry commands and queries.
//
// Commands hold mu across their whole load-validate-commit sequence so
// mutations are serialized: a mapping validated against one bound file can
// never commit over a bind that completed in between.
type Service struct {
	repo   sensor.Repository
	source TableSource
	bus    eventing.EventBus
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	mu sync.Mutex
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a sensor service.
func NewService(repo sensor.Repository, source TableSource, bus eventing.EventBus, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("sensor service: nil repository")
	}
	if source == nil {
		return nil, errors.New("sensor service: nil table source")
	}
	if bus == nil {
		return nil, errors.New("sensor service: nil event bus")
	}
	s := &Service{
		repo:   repo,
		source: source,
		bus:    bus,
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Add registers a new sensor under a unique display name.
func (s *Service) Add(ctx context.Context, name string) (*sensor.Sensor, error) {
	if err := sensor.ValidateName(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	now := s.now()
	sn := &sensor.Sensor{
		ID:        s.newID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, sn); err != nil {
		return nil, err
	}

	s.publish(ctx, events.SensorAdded{SensorID: sn.ID, Name: sn.Name, OccurredAt: now})
	return sn.Clone(), nil
}

// Rename changes a sensor's display name, keeping names unique.
func (s *Service) Rename(ctx context.Context, id, newName string) (*sensor.Sensor, error) {
	if err := sensor.ValidateName(newName); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sn, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sn.Name == newName {
		return sn.Clone(), nil
	}
	if err := s.checkNameFree(ctx, newName, id); err != nil {
		return nil, err
	}

	oldName := sn.Name
	sn.Name = newName
	sn.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, sn); err != nil {
		return nil, err
	}

	s.publish(ctx, events.SensorRenamed{
		SensorID:   sn.ID,
		OldName:    oldName,
		NewName:    newName,
		OccurredAt: sn.UpdatedAt,
	})
	return sn.Clone(), nil
}

// Delete removes a sensor together with its bound file reference, mapping
// and the cached table for its file.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if sn.HasFile() {
		s.source.Invalidate(sn.FilePath)
	}

	s.publish(ctx, events.SensorDeleted{SensorID: sn.ID, Name: sn.Name, OccurredAt: s.now()})
	return nil
}

// Get loads one sensor.
func (s *Service) Get(ctx context.Context, id string) (*sensor.Sensor, error) {
	return s.repo.Get(ctx, id)
}

// List returns all sensors.
func (s *Service) List(ctx context.Context) ([]*sensor.Sensor, error) {
	return s.repo.List(ctx)
}

// BindResult reports the outcome of attaching a file to a sensor.
type BindResult struct {
	Sensor    *sensor.Sensor
	Meta      ingest.Metadata
	Inference mapping.Inference
}

// BindFile attaches a data file to a sensor and runs column inference.
//
// Rebinding always discards the previous mapping first: a mapping is only
// meaningful against the file it was made for. When header inference leaves
// mandatory fields unset, a value-based fallback over the first rows is
// tried before asking the operator to map manually.
func (s *Service) BindFile(ctx context.Context, id, path string) (*BindResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	table, err := s.source.Get(path)
	if err != nil {
		return nil, err
	}

	inf := mapping.Infer(table.Columns)
	if inf.NeedsMapping() {
		inf = mergeInference(inf, mapping.InferFromValues(table.Columns, table.Head(20)))
	}

	oldPath := sn.FilePath
	sn.FilePath = path
	sn.LoggerSerial = table.Meta.LoggerSerial
	sn.Mapping = nil
	if inf.Mapping != (mapping.ColumnMapping{}) {
		// A partial inference is stored too; the operator completes it
		// instead of starting over.
		m := inf.Mapping
		sn.Mapping = &m
	}
	sn.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, sn); err != nil {
		return nil, err
	}
	if oldPath != "" && oldPath != path {
		s.source.Invalidate(oldPath)
	}

	s.publish(ctx, events.FileBound{
		SensorID:     sn.ID,
		Name:         sn.Name,
		Path:         path,
		Format:       table.Meta.Format,
		LoggerSerial: table.Meta.LoggerSerial,
		NeedsMapping: sn.NeedsMapping(),
		OccurredAt:   sn.UpdatedAt,
	})
	return &BindResult{Sensor: sn.Clone(), Meta: table.Meta, Inference: inf}, nil
}

// SetMapping validates a manual column mapping against the bound file's
// current columns and commits it. Nothing is persisted on a failed check.
func (s *Service) SetMapping(ctx context.Context, id string, m mapping.ColumnMapping) (*sensor.Sensor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sn.HasFile() {
		return nil, sensor.ErrNoFileBound
	}
	table, err := s.source.Get(sn.FilePath)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(table.Columns); err != nil {
		return nil, err
	}

	sn.Mapping = &m
	sn.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, sn); err != nil {
		return nil, err
	}

	s.publish(ctx, events.MappingSaved{
		SensorID:   sn.ID,
		Name:       sn.Name,
		Mapping:    m,
		OccurredAt: sn.UpdatedAt,
	})
	return sn.Clone(), nil
}

// Columns returns the bound file's column names.
func (s *Service) Columns(ctx context.Context, id string) ([]string, error) {
	table, err := s.boundTable(ctx, id)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), table.Columns...), nil
}

// Preview returns the bound file's columns plus up to n raw rows.
func (s *Service) Preview(ctx context.Context, id string, n int) ([]string, [][]string, error) {
	table, err := s.boundTable(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return append([]string(nil), table.Columns...), table.Head(n), nil
}

// BoundTable loads the sensor's parsed table, for series assembly.
func (s *Service) BoundTable(ctx context.Context, id string) (*sensor.Sensor, *ingest.RawTable, error) {
	sn, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !sn.HasFile() {
		return nil, nil, sensor.ErrNoFileBound
	}
	table, err := s.source.Get(sn.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return sn, table, nil
}

func (s *Service) boundTable(ctx context.Context, id string) (*ingest.RawTable, error) {
	_, table, err := s.BoundTable(ctx, id)
	return table, err
}

func (s *Service) checkNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, sensor.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return sensor.ErrDuplicateName
	}
	return nil
}

// publish is fire-and-forget: registry commands never fail because a
// subscriber did.
func (s *Service) publish(ctx context.Context, event any) {
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event", eventing.EventType(event)),
			zap.Error(err))
	}
}

// mergeInference fills fields left unset by the header pass with fields the
// value pass matched, never overwriting a header match.
func mergeInference(header, values mapping.Inference) mapping.Inference {
	for _, field := range mapping.Fields() {
		if header.Matched[field] {
			continue
		}
		col := values.Mapping.Column(field)
		if col == "" {
			continue
		}
		if claimedBy(header.Mapping, col) {
			continue
		}
		header.Mapping.Set(field, col)
		header.Matched[field] = true
	}
	return header
}

func claimedBy(m mapping.ColumnMapping, col string) bool {
	for _, field := range mapping.Fields() {
		if m.Column(field) == col {
			return true
		}
	}
	return false
}
