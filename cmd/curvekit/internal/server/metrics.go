package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the HTTP API.
type Metrics struct {
	// Engine metrics
	BootstrapsTotal       *prometheus.CounterVec
	BootstrapDuration     *prometheus.HistogramVec
	AdjustedPoints        *prometheus.CounterVec
	NelsonSiegelFallbacks prometheus.Counter
	SkippedQuotes         prometheus.Counter

	// HTTP metrics
	RequestsTotal *prometheus.CounterVec
}

// NewMetrics registers every collector on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "curvekit"
	}
	f := promauto.With(reg)

	return &Metrics{
		BootstrapsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "bootstraps_total",
			Help:      "Total number of curve bootstraps by method and outcome",
		}, []string{"method", "outcome"}),
		BootstrapDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "bootstrap_duration_seconds",
			Help:      "Duration of a single-method bootstrap",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"method"}),
		AdjustedPoints: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "adjusted_points_total",
			Help:      "Total number of futures points re-rated to keep the curve monotone",
		}, []string{"method"}),
		NelsonSiegelFallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "nelson_siegel_fallbacks_total",
			Help:      "Total number of Nelson-Siegel fits that fell back to a flat curve",
		}),
		SkippedQuotes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quotes",
			Name:      "skipped_total",
			Help:      "Total number of raw quotes skipped as unparsable or filtered",
		}),
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
}
