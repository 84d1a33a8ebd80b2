// Package audit records registry activity (sensor lifecycle, file binds,
// mapping changes) as an append-only history that can be listed and exported.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apievents "climagraph/internal/api/events"
	"climagraph/internal/eventing"
	"climagraph/internal/sensor/application/events"
)

// Actions recorded in the history.
const (
	ActionSensorAdded   = "sensor_added"
	ActionSensorRenamed = "sensor_renamed"
	ActionSensorDeleted = "sensor_deleted"
	ActionFileBound     = "file_bound"
	ActionMappingSaved  = "mapping_saved"
	ActionGraphMade     = "graph_generated"
	ActionGraphExported = "graph_exported"
)

// Entry is one history record.
type Entry struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	SensorID   string          `json:"sensor_id"`
	SensorName string          `json:"sensor_name"`
	Detail     json.RawMessage `json:"detail,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Store persists history entries.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context) ([]Entry, error)
}

// Recorder turns registry events into history entries.
type Recorder struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewRecorder constructs a recorder over a store.
func NewRecorder(store Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Subscribe wires the recorder to every registry event type on the bus.
func (r *Recorder) Subscribe(bus eventing.EventBus) {
	bus.Subscribe(eventing.EventTypeOf[events.SensorAdded](), func(ctx context.Context, e any) error {
		ev := e.(events.SensorAdded)
		return r.record(ctx, ActionSensorAdded, ev.SensorID, ev.Name, ev.OccurredAt, nil)
	})
	bus.Subscribe(eventing.EventTypeOf[events.SensorRenamed](), func(ctx context.Context, e any) error {
		ev := e.(events.SensorRenamed)
		return r.record(ctx, ActionSensorRenamed, ev.SensorID, ev.NewName, ev.OccurredAt, map[string]any{
			"old_name": ev.OldName,
			"new_name": ev.NewName,
		})
	})
	bus.Subscribe(eventing.EventTypeOf[events.SensorDeleted](), func(ctx context.Context, e any) error {
		ev := e.(events.SensorDeleted)
		return r.record(ctx, ActionSensorDeleted, ev.SensorID, ev.Name, ev.OccurredAt, nil)
	})
	bus.Subscribe(eventing.EventTypeOf[events.FileBound](), func(ctx context.Context, e any) error {
		ev := e.(events.FileBound)
		return r.record(ctx, ActionFileBound, ev.SensorID, ev.Name, ev.OccurredAt, map[string]any{
			"path":          ev.Path,
			"format":        ev.Format,
			"logger_serial": ev.LoggerSerial,
			"needs_mapping": ev.NeedsMapping,
		})
	})
	bus.Subscribe(eventing.EventTypeOf[events.MappingSaved](), func(ctx context.Context, e any) error {
		ev := e.(events.MappingSaved)
		return r.record(ctx, ActionMappingSaved, ev.SensorID, ev.Name, ev.OccurredAt, ev.Mapping)
	})
	bus.Subscribe(eventing.EventTypeOf[apievents.GraphGenerated](), func(ctx context.Context, e any) error {
		ev := e.(apievents.GraphGenerated)
		return r.record(ctx, ActionGraphMade, "", "", ev.OccurredAt, map[string]any{
			"type":       ev.TypeID,
			"sensor_ids": ev.SensorIDs,
		})
	})
	bus.Subscribe(eventing.EventTypeOf[apievents.GraphExported](), func(ctx context.Context, e any) error {
		ev := e.(apievents.GraphExported)
		return r.record(ctx, ActionGraphExported, "", "", ev.OccurredAt, map[string]any{
			"path":   ev.Path,
			"format": ev.Format,
		})
	})
}

// List returns the recorded history, oldest first.
func (r *Recorder) List(ctx context.Context) ([]Entry, error) {
	return r.store.List(ctx)
}

func (r *Recorder) record(ctx context.Context, action, sensorID, name string, at time.Time, detail any) error {
	entry := Entry{
		ID:         r.newID(),
		Action:     action,
		SensorID:   sensorID,
		SensorName: name,
		OccurredAt: at,
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = r.now()
	}
	if detail != nil {
		raw, err := json.Marshal(detail)
		if err != nil {
			r.logger.Warn("history detail marshal failed", zap.String("action", action), zap.Error(err))
		} else {
			entry.Detail = raw
		}
	}
	return r.store.Append(ctx, entry)
}
