package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveParseCountsByFormatAndResult(t *testing.T) {
	Init()

	before := testutil.ToFloat64(parseTotal.WithLabelValues("hobo", ResultSuccess))
	ObserveParse("hobo", "", 5*time.Millisecond)
	if got := testutil.ToFloat64(parseTotal.WithLabelValues("hobo", ResultSuccess)); got != before+1 {
		t.Fatalf("parse counter = %v, want %v", got, before+1)
	}

	beforeErr := testutil.ToFloat64(parseTotal.WithLabelValues("csv", ResultError))
	ObserveParse("csv", ResultError, time.Millisecond)
	if got := testutil.ToFloat64(parseTotal.WithLabelValues("csv", ResultError)); got != beforeErr+1 {
		t.Fatalf("error counter = %v, want %v", got, beforeErr+1)
	}
}

func TestAddRowsDroppedIgnoresNonPositive(t *testing.T) {
	Init()

	before := testutil.ToFloat64(rowsDropped)
	AddRowsDropped(0)
	AddRowsDropped(-3)
	AddRowsDropped(2)
	if got := testutil.ToFloat64(rowsDropped); got != before+2 {
		t.Fatalf("rows dropped = %v, want %v", got, before+2)
	}
}
