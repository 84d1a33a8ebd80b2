// Package charts computes the fixed catalog of analytical views over
// normalized sensor series and renders them to exportable raster images.
package charts

import "climagraph/internal/mapping"

// Graph type ids of the fixed catalog.
const (
	TypeTemperatureTime      = "temperature_time"
	TypeHumidityTime         = "humidity_time"
	TypeTemperatureAmplitude = "temperature_amplitude"
	TypeHumidityAmplitude    = "humidity_amplitude"
	TypeHumidityProfile      = "humidity_profile"
	TypeDewPointRisk         = "dew_point_risk"
)

// GraphType describes one catalog entry. The catalog is immutable, defined at
// process start, and not user-editable.
type GraphType struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Required    []mapping.Field `json:"required_fields"`
}

var catalog = []GraphType{
	{
		ID:          TypeTemperatureTime,
		Name:        "Temperature over time",
		Description: "Line chart of each sensor's temperature readings.",
		Required:    []mapping.Field{mapping.FieldDate, mapping.FieldTemperature},
	},
	{
		ID:          TypeHumidityTime,
		Name:        "Humidity over time",
		Description: "Line chart of each sensor's relative humidity readings.",
		Required:    []mapping.Field{mapping.FieldDate, mapping.FieldHumidity},
	},
	{
		ID:          TypeTemperatureAmplitude,
		Name:        "Daily temperature amplitude",
		Description: "Daily max minus min temperature per sensor.",
		Required:    []mapping.Field{mapping.FieldDate, mapping.FieldTemperature},
	},
	{
		ID:          TypeHumidityAmplitude,
		Name:        "Daily humidity amplitude",
		Description: "Daily max minus min relative humidity per sensor.",
		Required:    []mapping.Field{mapping.FieldDate, mapping.FieldHumidity},
	},
	{
		ID:          TypeHumidityProfile,
		Name:        "Humidity distribution profile",
		Description: "Box-plot summary of humidity values per sensor.",
		Required:    []mapping.Field{mapping.FieldDate, mapping.FieldHumidity},
	},
	{
		ID:          TypeDewPointRisk,
		Name:        "Dew point condensation risk",
		Description: "Margin between temperature and dew point with risk bands.",
		Required:    []mapping.Field{mapping.FieldDate, mapping.FieldTemperature, mapping.FieldDewPoint},
	},
}

// Catalog returns the fixed graph type catalog in generation order.
func Catalog() []GraphType {
	out := make([]GraphType, len(catalog))
	copy(out, catalog)
	return out
}

// TypeByID looks a graph type up by id.
func TypeByID(id string) (GraphType, bool) {
	for _, gt := range catalog {
		if gt.ID == id {
			return gt, true
		}
	}
	return GraphType{}, false
}
