package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"climagraph/internal/mapping"
	sensor "climagraph/internal/sensor/domain"
)

// DBTX abstracts *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const defaultSensorsTable = "sensors"

// SensorRepository is a Postgres implementation for sensors. The column
// mapping is stored as a JSONB document.
type SensorRepository struct {
	db    DBTX
	table string
}

// NewSensorRepository constructs a repository.
func NewSensorRepository(db DBTX, opts ...SensorOption) *SensorRepository {
	repo := &SensorRepository{db: db, table: defaultSensorsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// SensorOption configures the repository.
type SensorOption func(*SensorRepository)

// WithSensorTable overrides the default table name.
func WithSensorTable(table string) SensorOption {
	return func(repo *SensorRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads a sensor by id.
func (r *SensorRepository) Get(ctx context.Context, id string) (*sensor.Sensor, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("sensor repo: nil db")
	}
	if id == "" {
		return nil, sensor.ErrNotFound
	}

	query := fmt.Sprintf(`
SELECT id, name, file_path, logger_serial, column_mapping, created_at, updated_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByName loads a sensor by display name.
func (r *SensorRepository) GetByName(ctx context.Context, name string) (*sensor.Sensor, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("sensor repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, name, file_path, logger_serial, column_mapping, created_at, updated_at
FROM %s
WHERE name = $1
LIMIT 1`, r.table)

	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

// List returns all sensors ordered by name.
func (r *SensorRepository) List(ctx context.Context) ([]*sensor.Sensor, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("sensor repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, name, file_path, logger_serial, column_mapping, created_at, updated_at
FROM %s
ORDER BY name`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*sensor.Sensor
	for rows.Next() {
		sn, err := scanSensor(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, sn)
	}
	return result, rows.Err()
}

// Save upserts a sensor.
func (r *SensorRepository) Save(ctx context.Context, sn *sensor.Sensor) error {
	if r == nil || r.db == nil {
		return errors.New("sensor repo: nil db")
	}
	if sn == nil {
		return errors.New("sensor repo: nil sensor")
	}
	if err := sn.Validate(); err != nil {
		return err
	}

	var mappingJSON []byte
	if sn.Mapping != nil {
		var err error
		mappingJSON, err = json.Marshal(sn.Mapping)
		if err != nil {
			return err
		}
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	name,
	file_path,
	logger_serial,
	column_mapping
) VALUES (
	$1, $2, $3, $4, $5
)
ON CONFLICT (id)
DO UPDATE SET
	name = EXCLUDED.name,
	file_path = EXCLUDED.file_path,
	logger_serial = EXCLUDED.logger_serial,
	column_mapping = EXCLUDED.column_mapping,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		sn.ID,
		sn.Name,
		sn.FilePath,
		sn.LoggerSerial,
		mappingJSON,
	)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if sn.CreatedAt.IsZero() {
		sn.CreatedAt = now
	}
	sn.UpdatedAt = now
	return nil
}

// Delete removes a sensor by id.
func (r *SensorRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("sensor repo: nil db")
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sensor.ErrNotFound
	}
	return nil
}

func (r *SensorRepository) scanOne(row *sql.Row) (*sensor.Sensor, error) {
	sn, err := scanSensor(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sensor.ErrNotFound
		}
		return nil, err
	}
	return sn, nil
}

func scanSensor(scan func(dest ...any) error) (*sensor.Sensor, error) {
	var (
		sn          sensor.Sensor
		filePath    sql.NullString
		serial      sql.NullString
		mappingJSON []byte
	)
	if err := scan(
		&sn.ID,
		&sn.Name,
		&filePath,
		&serial,
		&mappingJSON,
		&sn.CreatedAt,
		&sn.UpdatedAt,
	); err != nil {
		return nil, err
	}
	sn.FilePath = filePath.String
	sn.LoggerSerial = serial.String
	if len(mappingJSON) > 0 {
		var m mapping.ColumnMapping
		if err := json.Unmarshal(mappingJSON, &m); err != nil {
			return nil, err
		}
		sn.Mapping = &m
	}
	sn.CreatedAt = sn.CreatedAt.UTC()
	sn.UpdatedAt = sn.UpdatedAt.UTC()
	return &sn, nil
}
