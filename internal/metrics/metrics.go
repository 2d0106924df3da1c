// Package metrics provides Prometheus metrics collection for the mining site
// predictor. It defines the prediction, model and HTTP metrics exposed via
// the Prometheus metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the predictor service.
type Metrics struct {
	// Prediction metrics
	Predictions        prometheus.Counter     // Total number of predictions made
	PredictionsByLabel *prometheus.CounterVec // Predictions partitioned by verdict
	Failures           prometheus.Counter     // Total number of failed predictions
	FeatureMismatches  prometheus.Counter     // Predictions aborted by a schema mismatch
	Latency            prometheus.Histogram   // End-to-end prediction latency
	CacheHits          prometheus.Counter     // Predictions answered from the cache

	// Model metrics
	ModelLoaded prometheus.Gauge // 1 when an artifact is loaded
	ModelAge    prometheus.Gauge // Age of the artifact file in seconds

	// HTTP metrics
	Requests      *prometheus.CounterVec // Requests by route and status class
	WSSessions    prometheus.Gauge       // Open WebSocket sessions
	JournalErrors prometheus.Counter     // Failed prediction journal writes
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of predictions made",
		}),
		PredictionsByLabel: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "predictions_by_label_total",
			Help: "Total number of predictions by verdict label",
		}, []string{"label"}),
		Failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of failed predictions",
		}),
		FeatureMismatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "feature_mismatches_total",
			Help: "Total number of predictions aborted by a feature mismatch",
		}),
		Latency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "Prediction latency in seconds (end-to-end)",
			Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_cache_hits_total",
			Help: "Total number of predictions answered from the cache",
		}),
		ModelLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "Whether a model artifact is loaded (1) or not (0)",
		}),
		ModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_age_seconds",
			Help: "Age of the loaded model artifact in seconds",
		}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status class",
		}, []string{"route", "code"}),
		WSSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ws_sessions",
			Help: "Number of open WebSocket sessions",
		}),
		JournalErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "journal_errors_total",
			Help: "Total number of failed prediction journal writes",
		}),
	}
}
