package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	sensor "climagraph/internal/sensor/domain"
)

// SensorRepository is an in-memory repository. It is the default store when
// no database is configured and doubles as the test repository.
type SensorRepository struct {
	mu   sync.RWMutex
	data map[string]*sensor.Sensor
}

// NewSensorRepository constructs a repository.
func NewSensorRepository() *SensorRepository {
	return &SensorRepository{
		data: make(map[string]*sensor.Sensor),
	}
}

// Get loads a sensor by id.
func (r *SensorRepository) Get(ctx context.Context, id string) (*sensor.Sensor, error) {
	_ = ctx
	if id == "" {
		return nil, sensor.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	sn := r.data[id]
	if sn == nil {
		return nil, sensor.ErrNotFound
	}
	return sn.Clone(), nil
}

// GetByName loads a sensor by its display name.
func (r *SensorRepository) GetByName(ctx context.Context, name string) (*sensor.Sensor, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sn := range r.data {
		if sn.Name == name {
			return sn.Clone(), nil
		}
	}
	return nil, sensor.ErrNotFound
}

// List returns all sensors ordered by name.
func (r *SensorRepository) List(ctx context.Context) ([]*sensor.Sensor, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*sensor.Sensor, 0, len(r.data))
	for _, sn := range r.data {
		result = append(result, sn.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Save upserts a sensor.
func (r *SensorRepository) Save(ctx context.Context, sn *sensor.Sensor) error {
	_ = ctx
	if sn == nil {
		return errors.New("memory sensor repo: nil sensor")
	}
	if err := sn.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[sn.ID] = sn.Clone()
	return nil
}

// Delete removes a sensor by id.
func (r *SensorRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return sensor.ErrNotFound
	}
	delete(r.data, id)
	return nil
}
