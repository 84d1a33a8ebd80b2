package charts

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"climagraph/internal/mapping"
	"climagraph/internal/series"
)

// DefaultExteriorMarkers match sensor names denoting outdoor placement.
var DefaultExteriorMarkers = []string{"ext", "exterieur", "extérieur", "outdoor"}

// Engine generates the analytical chart catalog from normalized series.
// Each generation call is self-contained: no state is shared between chart
// computations beyond the read-only input series.
type Engine struct {
	markers []string
	logger  *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithExteriorMarkers overrides the keywords marking a sensor as exterior.
func WithExteriorMarkers(markers []string) EngineOption {
	return func(e *Engine) {
		if len(markers) > 0 {
			e.markers = markers
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine constructs an Engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{markers: DefaultExteriorMarkers, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsExterior reports whether a sensor name carries one of the configured
// exterior markers. Exterior sensors render with a dashed line style; the
// rule is data-driven on the sensor name, so it lives here rather than in
// any presentation layer.
func IsExterior(name string, markers []string) bool {
	lowered := strings.ToLower(name)
	for _, marker := range markers {
		if marker != "" && strings.Contains(lowered, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// Result is a rendered chart with its display metadata.
type Result struct {
	TypeID string
	Title  string
	XLabel string
	YLabel string
	PNG    []byte
}

// TypeResult is one entry of a generate-all batch: either a Result or the
// error that felled this chart type.
type TypeResult struct {
	Type   GraphType
	Result *Result
	Err    error
}

// Generate renders one chart type over the selected sensors' series.
//
// Every selected sensor must satisfy the type's required fields; a sensor
// lacking one entirely fails with ErrMissingRequiredColumn naming sensor and
// field. Zero plottable records across the selection fail with
// ErrInsufficientData.
func (e *Engine) Generate(typeID string, input []*series.Series) (*Result, error) {
	gt, ok := TypeByID(typeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGraphType, typeID)
	}
	if err := e.validateRequired(gt, input); err != nil {
		return nil, err
	}

	switch gt.ID {
	case TypeTemperatureTime:
		return e.renderFieldOverTime(gt, input, mapping.FieldTemperature, "Temperature (°C)")
	case TypeHumidityTime:
		return e.renderFieldOverTime(gt, input, mapping.FieldHumidity, "Humidity (%)")
	case TypeTemperatureAmplitude:
		return e.renderDailyAmplitude(gt, input, mapping.FieldTemperature, "Amplitude (°C)")
	case TypeHumidityAmplitude:
		return e.renderDailyAmplitude(gt, input, mapping.FieldHumidity, "Amplitude (%)")
	case TypeHumidityProfile:
		return e.renderHumidityProfile(gt, input)
	case TypeDewPointRisk:
		return e.renderDewPointRisk(gt, input)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownGraphType, typeID)
}

// GenerateAll iterates the fixed catalog in order for the given selection.
// A failure on one type never aborts the remaining types; the outcome list
// carries per-type success or error.
func (e *Engine) GenerateAll(input []*series.Series) []TypeResult {
	results := make([]TypeResult, 0, len(catalog))
	for _, gt := range catalog {
		res, err := e.Generate(gt.ID, input)
		if err != nil {
			e.logger.Info("chart type failed",
				zap.String("type", gt.ID),
				zap.Error(err))
		}
		results = append(results, TypeResult{Type: gt, Result: res, Err: err})
	}
	return results
}

// validateRequired checks each selected sensor against the type's required
// fields. Date and temperature are structural in a normalized series, so
// only the optional fields can be missing.
func (e *Engine) validateRequired(gt GraphType, input []*series.Series) error {
	for _, s := range input {
		for _, field := range gt.Required {
			switch field {
			case mapping.FieldHumidity:
				if !s.HasHumidity() && !s.Empty() {
					return fmt.Errorf("%w: sensor %q has no %s data", ErrMissingRequiredColumn, s.SensorName, field)
				}
			case mapping.FieldDewPoint:
				if !s.HasDewPoint() && !s.Empty() {
					return fmt.Errorf("%w: sensor %q has no %s data", ErrMissingRequiredColumn, s.SensorName, field)
				}
			}
		}
	}
	return nil
}
