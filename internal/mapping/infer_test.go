package mapping

import (
	"errors"
	"testing"
)

func TestInferAssignsFieldsGreedily(t *testing.T) {
	cases := []struct {
		name    string
		columns []string
		want    ColumnMapping
	}{
		{
			name:    "hobo style headers",
			columns: []string{"#", "Date Time, GMT+01:00", "Temp, °C", "RH, %", "Dew Point, °C"},
			want: ColumnMapping{
				Date:        "Date Time, GMT+01:00",
				Temperature: "Temp, °C",
				Humidity:    "RH, %",
				DewPoint:    "Dew Point, °C",
			},
		},
		{
			name:    "french headers",
			columns: []string{"Horodatage", "Température (°C)", "Humidité relative"},
			want: ColumnMapping{
				Date:        "Horodatage",
				Temperature: "Température (°C)",
				Humidity:    "Humidité relative",
			},
		},
		{
			name:    "no humidity column",
			columns: []string{"timestamp", "temperature"},
			want: ColumnMapping{
				Date:        "timestamp",
				Temperature: "temperature",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Infer(tc.columns)
			if got.Mapping != tc.want {
				t.Fatalf("Infer(%v) = %+v, want %+v", tc.columns, got.Mapping, tc.want)
			}
		})
	}
}

func TestInferDoesNotReuseClaimedColumn(t *testing.T) {
	// "temp timestamp" contains keywords of both date and temperature. Date is
	// evaluated first, claims it, and temperature must settle for the next one.
	columns := []string{"temp timestamp", "temp"}
	inf := Infer(columns)

	if inf.Mapping.Date != "temp timestamp" {
		t.Fatalf("date = %q, want %q", inf.Mapping.Date, "temp timestamp")
	}
	if inf.Mapping.Temperature != "temp" {
		t.Fatalf("temperature = %q, want %q", inf.Mapping.Temperature, "temp")
	}
}

func TestInferTemperatureAssignedExactlyOnce(t *testing.T) {
	columns := []string{"Temp A", "Temp B", "date"}
	inf := Infer(columns)

	if inf.Mapping.Temperature != "Temp A" {
		t.Fatalf("temperature = %q, want leftmost match", inf.Mapping.Temperature)
	}
	// The second temp-looking column must not leak into another field.
	if inf.Mapping.Humidity != "" || inf.Mapping.DewPoint != "" {
		t.Fatalf("unexpected reuse: %+v", inf.Mapping)
	}
}

func TestInferPartialResultIsNotAnError(t *testing.T) {
	inf := Infer([]string{"foo", "bar"})
	if inf.Matched[FieldDate] || inf.Matched[FieldTemperature] {
		t.Fatalf("unexpected matches: %+v", inf.Matched)
	}
	if !inf.NeedsMapping() {
		t.Fatal("expected NeedsMapping for unmatched mandatory fields")
	}
}

func TestInferEmptyColumnList(t *testing.T) {
	inf := Infer(nil)
	if inf.Mapping != (ColumnMapping{}) {
		t.Fatalf("expected empty mapping, got %+v", inf.Mapping)
	}
}

func TestInferFromValues(t *testing.T) {
	columns := []string{"a", "b", "c"}
	rows := [][]string{
		{"2023-01-02 10:00", "-2,5", "55"},
		{"2023-01-02 11:00", "0,8", "57"},
		{"2023-01-02 12:00", "3,1", "58"},
	}

	inf := InferFromValues(columns, rows)
	if inf.Mapping.Date != "a" {
		t.Fatalf("date = %q, want a", inf.Mapping.Date)
	}
	if inf.Mapping.Temperature != "b" {
		t.Fatalf("temperature = %q, want b", inf.Mapping.Temperature)
	}
	if inf.Mapping.Humidity != "c" {
		t.Fatalf("humidity = %q, want c", inf.Mapping.Humidity)
	}
}

func TestValidate(t *testing.T) {
	columns := []string{"Date", "Temp", "RH"}

	m := ColumnMapping{Date: "Date", Temperature: "Temp", Humidity: "RH"}
	if err := m.Validate(columns); err != nil {
		t.Fatalf("valid mapping rejected: %v", err)
	}

	incomplete := ColumnMapping{Date: "Date"}
	if err := incomplete.Validate(columns); !errors.Is(err, ErrIncompleteMapping) {
		t.Fatalf("expected ErrIncompleteMapping, got %v", err)
	}

	stale := ColumnMapping{Date: "Date", Temperature: "OldTemp"}
	if err := stale.Validate(columns); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}
