// Package metrics provides Prometheus observability metrics for the
// session analyzer. It covers business-facing capacity metrics and
// operational parse/analysis health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// CRITICAL METRICS - Capacity Pressure Visibility
// =============================================================================

// CandidatesTotal tracks total candidate volume in the analyzed snapshot.
var CandidatesTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "analyzer",
	Name:      "candidates_total",
	Help:      "Total number of candidates across all sessions in the snapshot",
})

// SessionsTotal tracks total session count in the analyzed snapshot.
var SessionsTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "analyzer",
	Name:      "sessions_total",
	Help:      "Total number of exam sessions in the snapshot",
})

// OverlapDays tracks days with at least one session overlap.
// High values indicate scheduling quality issues.
var OverlapDays = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "analyzer",
	Name:      "overlap_days",
	Help:      "Number of days in the snapshot with overlapping session windows",
})

// ExcessCandidatesTotal tracks candidates beyond seat capacity summed
// across all overlap days.
var ExcessCandidatesTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "analyzer",
	Name:      "excess_candidates_total",
	Help:      "Candidates beyond concurrent seat capacity, summed over overlap days",
})

// CapacitySeats tracks the resolved seat capacity the snapshot was
// analyzed against.
var CapacitySeats = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "analyzer",
	Name:      "capacity_seats",
	Help:      "Concurrent seat capacity resolved for the analyzed branch",
})

// OverlapHoursByDate tracks overlap hours per affected date.
var OverlapHoursByDate = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "analyzer",
	Name:      "overlap_hours_by_date",
	Help:      "Summed pairwise overlap hours broken down by date",
}, []string{"date"})

// =============================================================================
// IMPORTANT METRICS - Operational Health
// =============================================================================

// ParserErrorsTotal tracks parse errors by error type.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total parse errors by error type",
}, []string{"error_type"})

// ParserRecordsTotal tracks total records successfully parsed.
var ParserRecordsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "records_total",
	Help:      "Total CSV session records successfully parsed",
})

// ParserDurationSeconds tracks time to parse input files.
var ParserDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "parser",
	Name:      "duration_seconds",
	Help:      "Time taken to parse CSV session input",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
})

// AnalyzerDurationSeconds tracks time to run one analysis pass.
var AnalyzerDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "analyzer",
	Name:      "duration_seconds",
	Help:      "Time taken to run overlap detection and client aggregation",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// AnalyzerClientsProcessed tracks canonical clients per analysis run.
var AnalyzerClientsProcessed = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "analyzer",
	Name:      "clients_processed",
	Help:      "Number of canonical clients per analysis run",
	Buckets:   []float64{1, 2, 5, 10, 25, 50},
})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetAnalyzerGauges resets all analyzer gauges before a new run.
// Call this at the start of an analysis pass.
func ResetAnalyzerGauges() {
	CandidatesTotal.Set(0)
	SessionsTotal.Set(0)
	OverlapDays.Set(0)
	ExcessCandidatesTotal.Set(0)
	CapacitySeats.Set(0)
	OverlapHoursByDate.Reset()
}
