// Package api is the core-facing facade consumed by exterior shells. Every
// operation returns a payload plus an optional Fault; errors never cross the
// boundary untagged and the facade never panics into its caller.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"climagraph/internal/api/events"
	"climagraph/internal/charts"
	"climagraph/internal/eventing"
	"climagraph/internal/mapping"
	"climagraph/internal/observability/metrics"
	"climagraph/internal/sensor/application"
	sensor "climagraph/internal/sensor/domain"
	"climagraph/internal/series"
)

// Service exposes the registry, mapping and chart operations as one surface.
type Service struct {
	sensors  *application.Service
	engine   *charts.Engine
	exporter *charts.Exporter
	bus      eventing.EventBus
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs the facade.
func NewService(sensors *application.Service, engine *charts.Engine, exporter *charts.Exporter, bus eventing.EventBus, logger *zap.Logger) (*Service, error) {
	if sensors == nil {
		return nil, fmt.Errorf("api: nil sensor service")
	}
	if engine == nil {
		return nil, fmt.Errorf("api: nil chart engine")
	}
	if exporter == nil {
		return nil, fmt.Errorf("api: nil exporter")
	}
	if bus == nil {
		return nil, fmt.Errorf("api: nil event bus")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sensors:  sensors,
		engine:   engine,
		exporter: exporter,
		bus:      bus,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}, nil
}

// SensorView is the boundary representation of a registered sensor.
type SensorView struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	FilePath     string                 `json:"file_path,omitempty"`
	LoggerSerial string                 `json:"logger_serial,omitempty"`
	HasFile      bool                   `json:"has_file"`
	NeedsMapping bool                   `json:"needs_mapping"`
	Mapping      *mapping.ColumnMapping `json:"mapping,omitempty"`
}

func sensorView(sn *sensor.Sensor) SensorView {
	return SensorView{
		ID:           sn.ID,
		Name:         sn.Name,
		FilePath:     sn.FilePath,
		LoggerSerial: sn.LoggerSerial,
		HasFile:      sn.HasFile(),
		NeedsMapping: sn.NeedsMapping(),
		Mapping:      sn.Mapping,
	}
}

// ListSensors returns every registered sensor.
func (s *Service) ListSensors(ctx context.Context) ([]SensorView, *Fault) {
	list, err := s.sensors.List(ctx)
	if err != nil {
		return nil, faultFrom(err)
	}
	views := make([]SensorView, 0, len(list))
	for _, sn := range list {
		views = append(views, sensorView(sn))
	}
	return views, nil
}

// ListSensorsForGraphs returns only sensors ready for chart generation: a
// file bound and a complete mapping.
func (s *Service) ListSensorsForGraphs(ctx context.Context) ([]SensorView, *Fault) {
	list, err := s.sensors.List(ctx)
	if err != nil {
		return nil, faultFrom(err)
	}
	views := make([]SensorView, 0, len(list))
	for _, sn := range list {
		if !sn.HasFile() || sn.NeedsMapping() {
			continue
		}
		views = append(views, sensorView(sn))
	}
	return views, nil
}

// AddSensorRequest names a new sensor.
type AddSensorRequest struct {
	Name string `json:"name" validate:"required"`
}

// AddSensor registers a sensor and returns its id.
func (s *Service) AddSensor(ctx context.Context, req AddSensorRequest) (string, *Fault) {
	if err := s.validate.Struct(req); err != nil {
		return "", newFault(KindInvalidName, err.Error())
	}
	sn, err := s.sensors.Add(ctx, req.Name)
	if err != nil {
		return "", faultFrom(err)
	}
	return sn.ID, nil
}

// RenameSensorRequest renames an existing sensor.
type RenameSensorRequest struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// RenameSensor changes a sensor's display name.
func (s *Service) RenameSensor(ctx context.Context, req RenameSensorRequest) *Fault {
	if err := s.validate.Struct(req); err != nil {
		return newFault(KindInvalidName, err.Error())
	}
	if _, err := s.sensors.Rename(ctx, req.ID, req.Name); err != nil {
		return faultFrom(err)
	}
	return nil
}

// DeleteSensor removes a sensor and all its bound state.
func (s *Service) DeleteSensor(ctx context.Context, id string) *Fault {
	if err := s.sensors.Delete(ctx, id); err != nil {
		return faultFrom(err)
	}
	return nil
}

// BindFileRequest attaches a data file to a sensor.
type BindFileRequest struct {
	ID   string `json:"id" validate:"required"`
	Path string `json:"path" validate:"required"`
}

// BindFileResult reports inference outcome after binding.
type BindFileResult struct {
	NeedsMapping bool                  `json:"needs_mapping"`
	Inferred     mapping.ColumnMapping `json:"inferred"`
	LoggerSerial string                `json:"logger_serial,omitempty"`
	RowCount     int                   `json:"row_count"`
}

// BindFile parses and binds a file, running column inference.
func (s *Service) BindFile(ctx context.Context, req BindFileRequest) (*BindFileResult, *Fault) {
	if err := s.validate.Struct(req); err != nil {
		return nil, newFault(KindNotFound, err.Error())
	}
	res, err := s.sensors.BindFile(ctx, req.ID, req.Path)
	if err != nil {
		return nil, faultFrom(err)
	}
	return &BindFileResult{
		NeedsMapping: res.Sensor.NeedsMapping(),
		Inferred:     res.Inference.Mapping,
		LoggerSerial: res.Meta.LoggerSerial,
		RowCount:     res.Meta.RowCount,
	}, nil
}

// GetColumns returns the bound file's column names.
func (s *Service) GetColumns(ctx context.Context, id string) ([]string, *Fault) {
	cols, err := s.sensors.Columns(ctx, id)
	if err != nil {
		return nil, faultFrom(err)
	}
	return cols, nil
}

// PreviewResult carries column names plus sample rows.
type PreviewResult struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// GetDataPreview returns the first rows of the bound file.
func (s *Service) GetDataPreview(ctx context.Context, id string, rowLimit int) (*PreviewResult, *Fault) {
	if rowLimit <= 0 {
		rowLimit = 10
	}
	cols, rows, err := s.sensors.Preview(ctx, id, rowLimit)
	if err != nil {
		return nil, faultFrom(err)
	}
	return &PreviewResult{Columns: cols, Rows: rows}, nil
}

// SaveMappingRequest commits a manual column mapping.
type SaveMappingRequest struct {
	ID      string                `json:"id" validate:"required"`
	Mapping mapping.ColumnMapping `json:"mapping"`
}

// SaveMapping validates the mapping against the bound file and commits it.
func (s *Service) SaveMapping(ctx context.Context, req SaveMappingRequest) *Fault {
	if err := s.validate.Struct(req); err != nil {
		return newFault(KindNotFound, err.Error())
	}
	if _, err := s.sensors.SetMapping(ctx, req.ID, req.Mapping); err != nil {
		return faultFrom(err)
	}
	return nil
}

// ListGraphTypes returns the fixed chart catalog.
func (s *Service) ListGraphTypes(ctx context.Context) ([]charts.GraphType, *Fault) {
	_ = ctx
	return charts.Catalog(), nil
}

// GraphView is a rendered chart plus its display metadata.
type GraphView struct {
	TypeID string `json:"type_id"`
	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`
	PNG    []byte `json:"png"`
}

// GenerateGraphRequest selects a chart type, sensors and optional range.
type GenerateGraphRequest struct {
	TypeID    string     `json:"type_id" validate:"required"`
	SensorIDs []string   `json:"sensor_ids" validate:"min=1,dive,required"`
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
}

func (r GenerateGraphRequest) timeRange() series.Range {
	var rng series.Range
	if r.Start != nil {
		rng.Start = *r.Start
	}
	if r.End != nil {
		rng.End = *r.End
	}
	return rng
}

// GenerateGraph renders one chart type over the selected sensors.
func (s *Service) GenerateGraph(ctx context.Context, req GenerateGraphRequest) (*GraphView, *Fault) {
	if err := s.validate.Struct(req); err != nil {
		return nil, newFault(KindNotFound, err.Error())
	}

	input, fault := s.loadSeries(ctx, req.SensorIDs, req.timeRange())
	if fault != nil {
		return nil, fault
	}

	started := s.now()
	res, err := s.engine.Generate(req.TypeID, input)
	if err != nil {
		metrics.ObserveChart(req.TypeID, metrics.ResultError, s.now().Sub(started))
		return nil, faultFrom(err)
	}
	metrics.ObserveChart(req.TypeID, metrics.ResultSuccess, s.now().Sub(started))

	s.publish(ctx, events.GraphGenerated{
		TypeID:     req.TypeID,
		SensorIDs:  req.SensorIDs,
		OccurredAt: s.now(),
	})
	return &GraphView{
		TypeID: res.TypeID,
		Title:  res.Title,
		XLabel: res.XLabel,
		YLabel: res.YLabel,
		PNG:    res.PNG,
	}, nil
}

// GraphOutcome is one entry of a generate-all batch.
type GraphOutcome struct {
	TypeID string     `json:"type_id"`
	Name   string     `json:"name"`
	Graph  *GraphView `json:"graph,omitempty"`
	Fault  *Fault     `json:"fault,omitempty"`
}

// GenerateAllGraphsRequest selects sensors and an optional range for a batch
// over the whole catalog.
type GenerateAllGraphsRequest struct {
	SensorIDs []string   `json:"sensor_ids" validate:"min=1,dive,required"`
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
}

// GenerateAllGraphs renders every catalog type, tagging each outcome
// individually. A failed type never aborts the batch; only a failure to load
// the input series fails the operation as a whole.
func (s *Service) GenerateAllGraphs(ctx context.Context, req GenerateAllGraphsRequest) ([]GraphOutcome, *Fault) {
	if err := s.validate.Struct(req); err != nil {
		return nil, newFault(KindNotFound, err.Error())
	}

	rng := series.Range{}
	if req.Start != nil {
		rng.Start = *req.Start
	}
	if req.End != nil {
		rng.End = *req.End
	}
	input, fault := s.loadSeries(ctx, req.SensorIDs, rng)
	if fault != nil {
		return nil, fault
	}

	results := s.engine.GenerateAll(input)
	outcomes := make([]GraphOutcome, 0, len(results))
	for _, r := range results {
		outcome := GraphOutcome{TypeID: r.Type.ID, Name: r.Type.Name}
		if r.Err != nil {
			outcome.Fault = faultFrom(r.Err)
			metrics.ObserveChart(r.Type.ID, metrics.ResultError, 0)
		} else {
			outcome.Graph = &GraphView{
				TypeID: r.Result.TypeID,
				Title:  r.Result.Title,
				XLabel: r.Result.XLabel,
				YLabel: r.Result.YLabel,
				PNG:    r.Result.PNG,
			}
			metrics.ObserveChart(r.Type.ID, metrics.ResultSuccess, 0)
			s.publish(ctx, events.GraphGenerated{
				TypeID:     r.Type.ID,
				SensorIDs:  req.SensorIDs,
				OccurredAt: s.now(),
			})
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// ExportImageRequest saves rendered image bytes to the export directory.
type ExportImageRequest struct {
	PNG      []byte `json:"png" validate:"required"`
	Filename string `json:"filename" validate:"required"`
	Format   string `json:"format" validate:"oneof=png pdf"`
	Title    string `json:"title,omitempty"`
}

// ExportImage writes the image as PNG or wraps it in a PDF page.
func (s *Service) ExportImage(ctx context.Context, req ExportImageRequest) (string, *Fault) {
	if err := s.validate.Struct(req); err != nil {
		return "", newFault(KindIOError, err.Error())
	}

	var (
		path string
		err  error
	)
	switch req.Format {
	case "pdf":
		path, err = s.exporter.ExportPDF(&charts.Result{Title: req.Title, PNG: req.PNG}, req.Filename)
	default:
		path, err = s.exporter.ExportPNG(req.PNG, req.Filename)
	}
	if err != nil {
		metrics.IncExport(req.Format, metrics.ResultError)
		return "", newFault(KindIOError, err.Error())
	}
	metrics.IncExport(req.Format, metrics.ResultSuccess)

	s.publish(ctx, events.GraphExported{
		Path:       path,
		Format:     req.Format,
		OccurredAt: s.now(),
	})
	return path, nil
}

// ExportSeriesRequest saves the normalized series behind a selection as XLSX.
type ExportSeriesRequest struct {
	SensorIDs []string   `json:"sensor_ids" validate:"min=1,dive,required"`
	Filename  string     `json:"filename" validate:"required"`
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
}

// ExportSeries writes one sheet per sensor with the normalized records.
func (s *Service) ExportSeries(ctx context.Context, req ExportSeriesRequest) (string, *Fault) {
	if err := s.validate.Struct(req); err != nil {
		return "", newFault(KindIOError, err.Error())
	}

	rng := series.Range{}
	if req.Start != nil {
		rng.Start = *req.Start
	}
	if req.End != nil {
		rng.End = *req.End
	}
	input, fault := s.loadSeries(ctx, req.SensorIDs, rng)
	if fault != nil {
		return "", fault
	}

	path, err := s.exporter.ExportSeriesXLSX(input, req.Filename)
	if err != nil {
		metrics.IncExport("xlsx", metrics.ResultError)
		return "", newFault(KindIOError, err.Error())
	}
	metrics.IncExport("xlsx", metrics.ResultSuccess)

	s.publish(ctx, events.GraphExported{
		Path:       path,
		Format:     "xlsx",
		OccurredAt: s.now(),
	})
	return path, nil
}

// loadSeries assembles the normalized series for each selected sensor. A
// sensor with a HOBO serial gets it appended to the display name so legends
// identify the physical logger.
func (s *Service) loadSeries(ctx context.Context, ids []string, rng series.Range) ([]*series.Series, *Fault) {
	if err := rng.Validate(); err != nil {
		return nil, faultFrom(err)
	}

	input := make([]*series.Series, 0, len(ids))
	for _, id := range ids {
		sn, table, err := s.sensors.BoundTable(ctx, id)
		if err != nil {
			return nil, faultFrom(err)
		}
		if sn.Mapping == nil {
			return nil, newFault(KindInvalidMapping, fmt.Sprintf("sensor %q has no column mapping", sn.Name))
		}

		ser, err := series.Normalize(table, *sn.Mapping, rng)
		if err != nil {
			return nil, faultFrom(err)
		}
		metrics.AddRowsDropped(ser.Dropped)

		ser.SensorID = sn.ID
		ser.SensorName = sn.Name
		if sn.LoggerSerial != "" {
			ser.SensorName = fmt.Sprintf("%s (SN %s)", sn.Name, sn.LoggerSerial)
		}
		input = append(input, ser)
	}
	return input, nil
}

func (s *Service) publish(ctx context.Context, event any) {
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event", eventing.EventType(event)),
			zap.Error(err))
	}
}
