// Package metrics registers Prometheus instruments for file ingestion,
// series normalization, chart generation and exports.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "climagraph_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	parseTotal   *prometheus.CounterVec
	parseLatency *prometheus.HistogramVec

	rowsDropped prometheus.Counter

	chartTotal   *prometheus.CounterVec
	chartLatency *prometheus.HistogramVec

	exportTotal *prometheus.CounterVec
)

// Init registers the instruments. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		parseTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "parse_total",
				Help: "Total file parses by format and result",
			},
			[]string{"format", "result"},
		)
		parseLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "parse_latency_seconds",
				Help:    "File parse latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		rowsDropped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_dropped_total",
				Help: "Total rows dropped during normalization",
			},
		)

		chartTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "chart_total",
				Help: "Total chart generations by type and result",
			},
			[]string{"type", "result"},
		)
		chartLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "chart_latency_seconds",
				Help:    "Chart generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			parseTotal,
			parseLatency,
			rowsDropped,
			chartTotal,
			chartLatency,
			exportTotal,
		)
	})
}

// ObserveParse records one file parse.
func ObserveParse(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if parseTotal != nil {
		parseTotal.WithLabelValues(format, result).Inc()
	}
	if parseLatency != nil {
		parseLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}

// AddRowsDropped counts rows discarded by normalization.
func AddRowsDropped(count int) {
	if count <= 0 {
		return
	}
	if rowsDropped != nil {
		rowsDropped.Add(float64(count))
	}
}

// ObserveChart records one chart generation.
func ObserveChart(chartType, result string, duration time.Duration) {
	if chartType == "" {
		chartType = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if chartTotal != nil {
		chartTotal.WithLabelValues(chartType, result).Inc()
	}
	if chartLatency != nil {
		chartLatency.WithLabelValues(chartType).Observe(duration.Seconds())
	}
}

// IncExport records one export attempt.
func IncExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
