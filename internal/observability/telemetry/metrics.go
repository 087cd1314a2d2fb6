package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Resolver metrics
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fuelwatch_resolutions_total",
		Help: "Dictionary resolutions by dictionary type and outcome",
	}, []string{"dictionary", "outcome"})

	DuplicateWarningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fuelwatch_duplicate_warnings_total",
		Help: "Warn-band fuzzy matches left for human review",
	}, []string{"dictionary"})

	FuzzyScanRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fuelwatch_fuzzy_scan_rows",
		Help:    "Reference rows scanned per fuzzy lookup",
		Buckets: prometheus.ExponentialBuckets(100, 5, 5),
	})

	// Analysis metrics
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fuelwatch_analyses_total",
		Help: "Transaction correlations by match status",
	}, []string{"status"})

	AnomaliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fuelwatch_anomalies_total",
		Help: "Detected anomalies by type",
	}, []string{"type"})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fuelwatch_analysis_duration_seconds",
		Help:    "Latency of a single transaction correlation",
		Buckets: prometheus.DefBuckets,
	})

	// Assignment metrics
	AssignmentConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fuelwatch_assignment_conflicts_total",
		Help: "Card assignments rejected due to overlapping periods",
	})
)
