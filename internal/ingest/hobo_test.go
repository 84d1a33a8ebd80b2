package ingest

import (
	"testing"
)

const hoboSample = `Plot Title: cave voutee
Serial Number: 10469937

"#","Date Time, GMT+01:00","Temp, °C (LGR S/N: 10469937)","RH, % (LGR S/N: 10469937)"
1,01/12/2023 00:00:00,12.345,78.9
2,01/12/2023 01:00:00,12.301,79.2
`

func TestParseHOBO(t *testing.T) {
	path := writeFile(t, "logger.hobo", hoboSample)

	table, err := NewParser().Parse(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if table.Meta.Format != FormatHOBO {
		t.Fatalf("format = %s, want hobo", table.Meta.Format)
	}
	if got, want := table.Meta.LoggerSerial, "10469937"; got != want {
		t.Fatalf("serial = %q, want %q", got, want)
	}
	if got, want := len(table.Rows), 2; got != want {
		t.Fatalf("rows = %d, want %d", got, want)
	}
	if got, want := table.Columns[1], "Date Time, GMT+01:00"; got != want {
		t.Fatalf("column[1] = %q, want %q", got, want)
	}
	if unit := table.Meta.Units["Temp, °C (LGR S/N: 10469937)"]; unit != "°C" {
		t.Fatalf("temp unit = %q, want °C", unit)
	}
}

func TestParseHOBOWithoutHeaderLine(t *testing.T) {
	path := writeFile(t, "logger.hobo", "no header here\n1,2,3\n")
	if _, err := NewParser().Parse(path); err == nil {
		t.Fatal("expected error for missing header line")
	}
}

func TestHoboColumnUnit(t *testing.T) {
	cases := []struct {
		column string
		want   string
	}{
		{"Temp, °C (LGR S/N: 10469937)", "°C"},
		{"RH, % (LGR S/N: 10469937)", "%"},
		{"Date Time, GMT+01:00", "GMT+01:00"},
		{"#", ""},
	}
	for _, tc := range cases {
		if got := hoboColumnUnit(tc.column); got != tc.want {
			t.Errorf("hoboColumnUnit(%q) = %q, want %q", tc.column, got, tc.want)
		}
	}
}
