// Package http exposes the facade operations as a JSON API for exterior
// shells, plus the history endpoints of the audit recorder.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"climagraph/internal/api"
	"climagraph/internal/audit"
)

// Handler routes the sensor, mapping, chart and history endpoints.
type Handler struct {
	service *api.Service
	history *audit.Recorder
	logger  *zap.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *api.Service, history *audit.Recorder, logger *zap.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("http handler: nil service")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, history: history, logger: logger}, nil
}

// ServeHTTP routes API endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/sensors" && r.Method == http.MethodGet:
		h.handleListSensors(w, r)
	case r.URL.Path == "/api/v1/sensors" && r.Method == http.MethodPost:
		h.handleAddSensor(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/sensors/") && r.Method == http.MethodDelete:
		h.handleDeleteSensor(w, r)
	case strings.HasSuffix(r.URL.Path, "/rename") && r.Method == http.MethodPost:
		h.handleRenameSensor(w, r)
	case strings.HasSuffix(r.URL.Path, "/file") && r.Method == http.MethodPost:
		h.handleBindFile(w, r)
	case strings.HasSuffix(r.URL.Path, "/columns") && r.Method == http.MethodGet:
		h.handleGetColumns(w, r)
	case strings.HasSuffix(r.URL.Path, "/preview") && r.Method == http.MethodGet:
		h.handlePreview(w, r)
	case strings.HasSuffix(r.URL.Path, "/mapping") && r.Method == http.MethodPost:
		h.handleSaveMapping(w, r)
	case r.URL.Path == "/api/v1/graph-sensors" && r.Method == http.MethodGet:
		h.handleListForGraphs(w, r)
	case r.URL.Path == "/api/v1/graph-types" && r.Method == http.MethodGet:
		h.handleGraphTypes(w, r)
	case r.URL.Path == "/api/v1/graphs" && r.Method == http.MethodPost:
		h.handleGenerateGraph(w, r)
	case r.URL.Path == "/api/v1/graphs/all" && r.Method == http.MethodPost:
		h.handleGenerateAll(w, r)
	case r.URL.Path == "/api/v1/exports/image" && r.Method == http.MethodPost:
		h.handleExportImage(w, r)
	case r.URL.Path == "/api/v1/exports/series" && r.Method == http.MethodPost:
		h.handleExportSeries(w, r)
	case r.URL.Path == "/api/v1/history" && r.Method == http.MethodGet:
		h.handleHistory(w, r)
	case r.URL.Path == "/api/v1/history/export" && r.Method == http.MethodGet:
		h.handleHistoryExport(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// sensorID extracts the id segment from /api/v1/sensors/{id}[/suffix].
func sensorID(path string) string {
	rest := strings.TrimPrefix(path, "/api/v1/sensors/")
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		rest = rest[:idx]
	}
	return rest
}

func (h *Handler) handleListSensors(w http.ResponseWriter, r *http.Request) {
	views, fault := h.service.ListSensors(r.Context())
	h.respond(w, views, fault)
}

func (h *Handler) handleAddSensor(w http.ResponseWriter, r *http.Request) {
	var req api.AddSensorRequest
	if !decode(w, r, &req) {
		return
	}
	id, fault := h.service.AddSensor(r.Context(), req)
	h.respond(w, map[string]string{"id": id}, fault)
}

func (h *Handler) handleRenameSensor(w http.ResponseWriter, r *http.Request) {
	var req api.RenameSensorRequest
	if !decode(w, r, &req) {
		return
	}
	req.ID = sensorID(r.URL.Path)
	h.respond(w, map[string]bool{"ok": true}, h.service.RenameSensor(r.Context(), req))
}

func (h *Handler) handleDeleteSensor(w http.ResponseWriter, r *http.Request) {
	h.respond(w, map[string]bool{"ok": true}, h.service.DeleteSensor(r.Context(), sensorID(r.URL.Path)))
}

func (h *Handler) handleBindFile(w http.ResponseWriter, r *http.Request) {
	var req api.BindFileRequest
	if !decode(w, r, &req) {
		return
	}
	req.ID = sensorID(r.URL.Path)
	res, fault := h.service.BindFile(r.Context(), req)
	h.respond(w, res, fault)
}

func (h *Handler) handleGetColumns(w http.ResponseWriter, r *http.Request) {
	cols, fault := h.service.GetColumns(r.Context(), sensorID(r.URL.Path))
	h.respond(w, map[string][]string{"columns": cols}, fault)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("rows"))
	preview, fault := h.service.GetDataPreview(r.Context(), sensorID(r.URL.Path), limit)
	h.respond(w, preview, fault)
}

func (h *Handler) handleSaveMapping(w http.ResponseWriter, r *http.Request) {
	var req api.SaveMappingRequest
	if !decode(w, r, &req) {
		return
	}
	req.ID = sensorID(r.URL.Path)
	h.respond(w, map[string]bool{"ok": true}, h.service.SaveMapping(r.Context(), req))
}

func (h *Handler) handleListForGraphs(w http.ResponseWriter, r *http.Request) {
	views, fault := h.service.ListSensorsForGraphs(r.Context())
	h.respond(w, views, fault)
}

func (h *Handler) handleGraphTypes(w http.ResponseWriter, r *http.Request) {
	types, fault := h.service.ListGraphTypes(r.Context())
	h.respond(w, types, fault)
}

func (h *Handler) handleGenerateGraph(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateGraphRequest
	if !decode(w, r, &req) {
		return
	}
	view, fault := h.service.GenerateGraph(r.Context(), req)
	h.respond(w, view, fault)
}

func (h *Handler) handleGenerateAll(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateAllGraphsRequest
	if !decode(w, r, &req) {
		return
	}
	outcomes, fault := h.service.GenerateAllGraphs(r.Context(), req)
	h.respond(w, outcomes, fault)
}

func (h *Handler) handleExportImage(w http.ResponseWriter, r *http.Request) {
	var req api.ExportImageRequest
	if !decode(w, r, &req) {
		return
	}
	path, fault := h.service.ExportImage(r.Context(), req)
	h.respond(w, map[string]string{"path": path}, fault)
}

func (h *Handler) handleExportSeries(w http.ResponseWriter, r *http.Request) {
	var req api.ExportSeriesRequest
	if !decode(w, r, &req) {
		return
	}
	path, fault := h.service.ExportSeries(r.Context(), req)
	h.respond(w, map[string]string{"path": path}, fault)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	entries, err := h.history.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
	if err := h.history.ExportCSV(r.Context(), w); err != nil {
		h.logger.Warn("history export failed", zap.Error(err))
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, payload any, fault *api.Fault) {
	if fault != nil {
		writeJSON(w, statusFor(fault.Kind), map[string]*api.Fault{"fault": fault})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func statusFor(kind api.Kind) int {
	switch kind {
	case api.KindNotFound:
		return http.StatusNotFound
	case api.KindDuplicateName:
		return http.StatusConflict
	case api.KindIOError, api.KindInternal:
		return http.StatusInternalServerError
	case api.KindMissingRequiredColumn, api.KindInsufficientData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
