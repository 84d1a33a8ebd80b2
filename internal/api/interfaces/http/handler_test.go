package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"climagraph/internal/api"
	"climagraph/internal/charts"
	"climagraph/internal/eventing"
	"climagraph/internal/ingest"
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

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	source := &stubSource{tables: map[string]*ingest.RawTable{
		"/data/c3.csv": {
			Columns: []string{"Date Time", "Temp, °C", "RH, %"},
			Rows: [][]string{
				{"2023-06-01 08:00:00", "15.0", "60.0"},
				{"2023-06-01 14:00:00", "22.0", "48.5"},
			},
			Meta: ingest.Metadata{Format: ingest.FormatCSV, RowCount: 2},
		},
	}}
	bus := eventing.NewInMemoryBus(nil)
	sensors, err := application.NewService(memory.NewSensorRepository(), source, bus)
	if err != nil {
		t.Fatalf("sensor service: %v", err)
	}
	svc, err := api.NewService(sensors, charts.NewEngine(), charts.NewExporter(filepath.Join(t.TempDir(), "out")), bus, nil)
	if err != nil {
		t.Fatalf("api service: %v", err)
	}
	handler, err := NewHandler(svc, nil, nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return handler
}

func doJSON(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSensorEndpoints(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sensors", `{"name":"C3"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}
	var added map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &added); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id := added["id"]
	if id == "" {
		t.Fatal("empty id")
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/sensors/"+id+"/file", `{"path":"/data/c3.csv"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("bind status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/sensors/"+id+"/columns", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Date Time") {
		t.Fatalf("columns = %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/sensors/"+id+"/preview?rows=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("preview status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/sensors/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/sensors/"+id+"/columns", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("columns after delete = %d", rec.Code)
	}
}

func TestFaultStatusMapping(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sensors", `{"name":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid name status = %d", rec.Code)
	}

	doJSON(t, h, http.MethodPost, "/api/v1/sensors", `{"name":"C3"}`)
	rec = doJSON(t, h, http.MethodPost, "/api/v1/sensors", `{"name":"C3"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/graphs", `{"type_id":"temperature_time","sensor_ids":["missing"]}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("graph missing sensor status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"kind":"not_found"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/graphs", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json status = %d", rec.Code)
	}
}

func TestGraphTypesEndpoint(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/api/v1/graph-types", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var types []charts.GraphType
	if err := json.Unmarshal(rec.Body.Bytes(), &types); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(types) != 6 {
		t.Fatalf("types = %d, want 6", len(types))
	}
}

func TestHistoryEndpointWithoutRecorder(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/api/v1/history", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
