package api

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"climagraph/internal/charts"
	"climagraph/internal/eventing"
	"climagraph/internal/ingest"
	"climagraph/internal/mapping"
	"climagraph/internal/sensor/application"
	"climagraph/internal/sensor/infrastructure/memory"
)

type stubSource struct {
	tables map[string]*ingest.RawTable
}

func (s *stubSource) Get(path string) (*ingest.RawTable, error) {
	table, ok := s.tables[path]
	if !ok {
		return nil, ingest.ErrCorruptFile
	}
	return table, nil
}

func (s *stubSource) Invalidate(string) {}

func fullTable() *ingest.RawTable {
	return &ingest.RawTable{
		Columns: []string{"Date Time", "Temp, °C", "RH, %"},
		Rows: [][]string{
			{"2023-06-01 08:00:00", "15.0", "60.0"},
			{"2023-06-01 14:00:00", "22.0", "48.5"},
			{"2023-06-02 08:00:00", "14.2", "62.1"},
			{"2023-06-02 14:00:00", "21.3", "50.0"},
		},
		Meta: ingest.Metadata{Format: ingest.FormatHOBO, LoggerSerial: "10456789", RowCount: 4},
	}
}

func temperatureTable() *ingest.RawTable {
	return &ingest.RawTable{
		Columns: []string{"Date Time", "Temp, °C"},
		Rows: [][]string{
			{"2023-06-01 08:00:00", "15.0"},
			{"2023-06-01 14:00:00", "22.0"},
		},
		Meta: ingest.Metadata{Format: ingest.FormatCSV, RowCount: 2},
	}
}

func newTestAPI(t *testing.T) *Service {
	t.Helper()
	source := &stubSource{tables: map[string]*ingest.RawTable{
		"/data/full.csv": fullTable(),
		"/data/temp.csv": temperatureTable(),
	}}
	bus := eventing.NewInMemoryBus(nil)
	sensors, err := application.NewService(memory.NewSensorRepository(), source, bus)
	if err != nil {
		t.Fatalf("sensor service: %v", err)
	}
	svc, err := NewService(sensors, charts.NewEngine(), charts.NewExporter(filepath.Join(t.TempDir(), "out")), bus, nil)
	if err != nil {
		t.Fatalf("api service: %v", err)
	}
	return svc
}

func mustAddBound(t *testing.T, svc *Service, name, path string) string {
	t.Helper()
	ctx := context.Background()
	id, fault := svc.AddSensor(ctx, AddSensorRequest{Name: name})
	if fault != nil {
		t.Fatalf("AddSensor: %v", fault)
	}
	if _, fault := svc.BindFile(ctx, BindFileRequest{ID: id, Path: path}); fault != nil {
		t.Fatalf("BindFile: %v", fault)
	}
	return id
}

func TestSensorLifecycle(t *testing.T) {
	svc := newTestAPI(t)
	ctx := context.Background()

	id := mustAddBound(t, svc, "C3", "/data/full.csv")

	list, fault := svc.ListSensors(ctx)
	if fault != nil {
		t.Fatalf("ListSensors: %v", fault)
	}
	if len(list) != 1 || list[0].NeedsMapping {
		t.Fatalf("list = %+v", list)
	}
	if list[0].LoggerSerial != "10456789" {
		t.Fatalf("serial = %q", list[0].LoggerSerial)
	}

	if fault := svc.RenameSensor(ctx, RenameSensorRequest{ID: id, Name: "C3 cave"}); fault != nil {
		t.Fatalf("RenameSensor: %v", fault)
	}
	if fault := svc.DeleteSensor(ctx, id); fault != nil {
		t.Fatalf("DeleteSensor: %v", fault)
	}

	if _, fault := svc.GetColumns(ctx, id); fault == nil || fault.Kind != KindNotFound {
		t.Fatalf("expected not_found, got %v", fault)
	}
	ready, _ := svc.ListSensorsForGraphs(ctx)
	if len(ready) != 0 {
		t.Fatalf("deleted sensor still listed: %+v", ready)
	}
}

func TestAddSensorFaults(t *testing.T) {
	svc := newTestAPI(t)
	ctx := context.Background()

	if _, fault := svc.AddSensor(ctx, AddSensorRequest{Name: ""}); fault == nil || fault.Kind != KindInvalidName {
		t.Fatalf("expected invalid_name, got %v", fault)
	}
	if _, fault := svc.AddSensor(ctx, AddSensorRequest{Name: "C3"}); fault != nil {
		t.Fatalf("AddSensor: %v", fault)
	}
	if _, fault := svc.AddSensor(ctx, AddSensorRequest{Name: "C3"}); fault == nil || fault.Kind != KindDuplicateName {
		t.Fatalf("expected duplicate_name, got %v", fault)
	}
}

func TestBindFileFaultKinds(t *testing.T) {
	svc := newTestAPI(t)
	ctx := context.Background()

	id, _ := svc.AddSensor(ctx, AddSensorRequest{Name: "C3"})
	if _, fault := svc.BindFile(ctx, BindFileRequest{ID: id, Path: "/data/nope.csv"}); fault == nil || fault.Kind != KindCorruptFile {
		t.Fatalf("expected corrupt_file, got %v", fault)
	}
	if _, fault := svc.BindFile(ctx, BindFileRequest{ID: "missing", Path: "/data/full.csv"}); fault == nil || fault.Kind != KindNotFound {
		t.Fatalf("expected not_found, got %v", fault)
	}
}

func TestSaveMappingStaleColumns(t *testing.T) {
	svc := newTestAPI(t)
	ctx := context.Background()

	id := mustAddBound(t, svc, "C3", "/data/full.csv")

	// Rebinding to a different file wipes the mapping; the old column names
	// no longer exist and must be rejected, not silently carried over.
	if _, fault := svc.BindFile(ctx, BindFileRequest{ID: id, Path: "/data/temp.csv"}); fault != nil {
		t.Fatalf("rebind: %v", fault)
	}

	var stale mapping.ColumnMapping
	stale.Set(mapping.FieldDate, "Date Time")
	stale.Set(mapping.FieldTemperature, "Temp, °C")
	stale.Set(mapping.FieldHumidity, "RH, %")
	if fault := svc.SaveMapping(ctx, SaveMappingRequest{ID: id, Mapping: stale}); fault == nil || fault.Kind != KindInvalidMapping {
		t.Fatalf("expected invalid_mapping, got %v", fault)
	}
}

func TestGetDataPreview(t *testing.T) {
	svc := newTestAPI(t)
	ctx := context.Background()

	id := mustAddBound(t, svc, "C3", "/data/full.csv")
	preview, fault := svc.GetDataPreview(ctx, id, 2)
	if fault != nil {
		t.Fatalf("GetDataPreview: %v", fault)
	}
	if len(preview.Columns) != 3 || len(preview.Rows) != 2 {
		t.Fatalf("preview = %+v", preview)
	}

	unbound, _ := svc.AddSensor(ctx, AddSensorRequest{Name: "C4"})
	if _, fault := svc.GetDataPreview(ctx, unbound, 2); fault == nil || fault.Kind != KindNoFileBound {
		t.Fatalf("expected no_file_bound, got %v", fault)
	}
}

func TestGenerateGraph(t *testing.T) {
	svc := newTestAPI(t)
	ctx := context.Background()

	id := mustAddBound(t, svc, "C3", "/data/full.csv")

	view, fault := svc.GenerateGraph(ctx, GenerateGraphRequest{
		TypeID:    charts.TypeTemperatureTime,
		SensorIDs: []string{id},
	})
	if fault != nil {
		t.Fatalf("GenerateGraph: %v", fault)
	}
	if !bytes.HasPrefix(view.PNG, []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatal("payload is not a PNG")
	}

	if _, fault := svc.GenerateGraph(ctx, GenerateGraphRequest{
		TypeID:    "no_such_type",
		SensorIDs: []string{id},
	}); fault == nil || fault.Kind != KindUnknownGraphType {
		t.Fatalf("expected unknown_graph_type, got %v", fault)
	}

	if _, fault := svc.GenerateGraph(ctx, GenerateGraphRequest{
		TypeID:    charts.TypeTemperatureTime,
		SensorIDs: []string{"missing"},
	}); fault == nil || fault.Kind != KindNotFound {
		t.Fatalf("expected not_found, got %v", fault)
	}
}

func TestGenerateAllGraphsPartialSuccess(t *testing.T) {
	svc := newTestAPI(t)
	ctx := context.Background()

	id := mustAddBound(t, svc, "C6", "/data/temp.csv")

	var m mapping.ColumnMapping
	m.Set(mapping.FieldDate, "Date Time")
	m.Set(mapping.FieldTemperature, "Temp, °C")
	if fault := svc.SaveMapping(ctx, SaveMappingRequest{ID: id, Mapping: m}); fault != nil {
		t.Fatalf("SaveMapping: %v", fault)
	}

	outcomes, fault := svc.GenerateAllGraphs(ctx, GenerateAllGraphsRequest{SensorIDs: []string{id}})
	if fault != nil {
		t.Fatalf("GenerateAllGraphs: %v", fault)
	}
	if len(outcomes) != len(charts.Catalog()) {
		t.Fatalf("outcomes = %d", len(outcomes))
	}

	byType := make(map[string]GraphOutcome)
	for _, o := range outcomes {
		byType[o.TypeID] = o
	}
	if o := byType[charts.TypeTemperatureTime]; o.Fault != nil || o.Graph == nil {
		t.Fatalf("temperature_time outcome = %+v", o)
	}
	if o := byType[charts.TypeHumidityProfile]; o.Fault == nil || o.Fault.Kind != KindMissingRequiredColumn {
		t.Fatalf("humidity_profile outcome = %+v", o)
	}
}

func TestExportImage(t *testing.T) {
	svc := newTestAPI(t)
	ctx := context.Background()

	id := mustAddBound(t, svc, "C3", "/data/full.csv")
	view, fault := svc.GenerateGraph(ctx, GenerateGraphRequest{
		TypeID:    charts.TypeTemperatureTime,
		SensorIDs: []string{id},
	})
	if fault != nil {
		t.Fatalf("GenerateGraph: %v", fault)
	}

	path, fault := svc.ExportImage(ctx, ExportImageRequest{
		PNG:      view.PNG,
		Filename: "temperature",
		Format:   "png",
		Title:    view.Title,
	})
	if fault != nil {
		t.Fatalf("ExportImage: %v", fault)
	}
	if filepath.Ext(path) != ".png" {
		t.Fatalf("path = %q", path)
	}

	pdfPath, fault := svc.ExportImage(ctx, ExportImageRequest{
		PNG:      view.PNG,
		Filename: "temperature",
		Format:   "pdf",
		Title:    view.Title,
	})
	if fault != nil {
		t.Fatalf("ExportImage pdf: %v", fault)
	}
	if filepath.Ext(pdfPath) != ".pdf" {
		t.Fatalf("path = %q", pdfPath)
	}

	if _, fault := svc.ExportImage(ctx, ExportImageRequest{Filename: "x", Format: "gif"}); fault == nil || fault.Kind != KindIOError {
		t.Fatalf("expected io_error, got %v", fault)
	}
}

func TestInvalidRange(t *testing.T) {
	svc := newTestAPI(t)
	ctx := context.Background()

	id := mustAddBound(t, svc, "C3", "/data/full.csv")
	begin := time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	if _, fault := svc.GenerateGraph(ctx, GenerateGraphRequest{
		TypeID:    charts.TypeTemperatureTime,
		SensorIDs: []string{id},
		Start:     &begin,
		End:       &end,
	}); fault == nil || fault.Kind != KindInvalidRange {
		t.Fatalf("expected invalid_range, got %v", fault)
	}
}
