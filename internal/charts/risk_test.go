package charts

import (
	"testing"
	"time"

	"climagraph/internal/series"
)

func TestClassifyMargin(t *testing.T) {
	cases := []struct {
		margin float64
		want   RiskBand
	}{
		{-1.0, BandCritical},
		{0.0, BandCritical},
		{0.1, BandAtRisk},
		{3.0, BandAtRisk},
		{3.1, BandSafe},
		{10.0, BandSafe},
	}
	for _, tc := range cases {
		if got := ClassifyMargin(tc.margin); got != tc.want {
			t.Errorf("ClassifyMargin(%v) = %s, want %s", tc.margin, got, tc.want)
		}
	}
}

func TestDewPointRisk(t *testing.T) {
	dp1, dp2 := 18.0, 10.0
	s := &series.Series{
		Records: []series.Record{
			{At: time.Date(2023, 6, 1, 8, 0, 0, 0, time.Local), Temperature: 17.5, DewPoint: &dp1},
			{At: time.Date(2023, 6, 1, 9, 0, 0, 0, time.Local), Temperature: 20.0, DewPoint: &dp2},
			{At: time.Date(2023, 6, 1, 10, 0, 0, 0, time.Local), Temperature: 20.0}, // no dew point: skipped
		},
	}

	out := DewPointRisk(s)
	if len(out) != 2 {
		t.Fatalf("points = %d, want 2", len(out))
	}
	if out[0].Band != BandCritical {
		t.Fatalf("band = %s, want critical (temperature below dew point)", out[0].Band)
	}
	if out[0].Margin != -0.5 {
		t.Fatalf("margin = %v, want -0.5", out[0].Margin)
	}
	if out[1].Band != BandSafe {
		t.Fatalf("band = %s, want safe", out[1].Band)
	}
}

func TestIsExterior(t *testing.T) {
	markers := DefaultExteriorMarkers
	cases := []struct {
		name string
		want bool
	}{
		{"Capteur extérieur nord", true},
		{"EXT-01", true},
		{"Cave voûtée", false},
		{"Chambre C3", false},
	}
	for _, tc := range cases {
		if got := IsExterior(tc.name, markers); got != tc.want {
			t.Errorf("IsExterior(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
