package mapping

// KeywordTableVersion identifies the keyword set below. Bump when keywords
// change so stored inference provenance stays interpretable.
const KeywordTableVersion = "2024.1"

// fieldKeywords is the per-field keyword table driving header inference.
// Order matters twice: fields are evaluated date, temperature, humidity,
// dew point, and within a field the keywords are tried in the listed order.
// Locale-specific spellings live here, not in the engine.
var fieldKeywords = []struct {
	field    Field
	keywords []string
}{
	{FieldDate, []string{
		"date", "time", "timestamp", "datetime", "horodatage", "heure", "temps",
	}},
	{FieldTemperature, []string{
		"temp", "température", "temperature", "t°",
	}},
	{FieldHumidity, []string{
		"humid", "humidité", "humidity", "hum", "hr", "rh", "h%",
	}},
	{FieldDewPoint, []string{
		"rosée", "rosee", "dew", "point de rosée",
	}},
}
