package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendations counts finished pipeline runs by outcome: "ok", one of
	// the normalizer error kinds, "upload_failed" or "analyze_failed".
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomplants_recommendations_total",
			Help: "Total number of photo recommendation runs by outcome",
		},
		[]string{"outcome"},
	)

	UploadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomplants_upload_failures_total",
			Help: "Total number of failed image uploads by error kind",
		},
		[]string{"kind"},
	)

	AnalyzeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomplants_analyze_failures_total",
			Help: "Total number of failed recommendation API calls by error kind",
		},
		[]string{"kind"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roomplants_pipeline_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"stage"},
	)
)
