package analyzer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesAnalyzed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jwalk_files_analyzed_total",
		Help: "Files analyzed by result (ok, cached, error)",
	}, []string{"result"})

	analyzeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jwalk_analyze_duration_seconds",
		Help:    "Time to read and build one file",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	symbolsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jwalk_symbols_built_total",
		Help: "Symbol nodes produced by analyzed files",
	})

	commentsBound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jwalk_comments_bound_total",
		Help: "Comments associated by analyzed files",
	})
)
