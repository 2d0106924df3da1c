package metrics

import (
	"testing"

	"minesite/internal/ml"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var _ ml.MetricsInterface = (*MetricsWrapper)(nil)

func newTestWrapper() (*Metrics, *MetricsWrapper) {
	registry := prometheus.NewRegistry()
	metrics := NewWithRegistry(registry)
	return metrics, NewWrapper(metrics)
}

func TestNewWrapper(t *testing.T) {
	metrics, wrapper := newTestWrapper()

	if wrapper == nil {
		t.Fatal("NewWrapper returned nil")
	}
	if wrapper.m != metrics {
		t.Error("Wrapper does not contain correct metrics instance")
	}
}

func TestMetricsWrapper_Predictions(t *testing.T) {
	metrics, wrapper := newTestWrapper()

	wrapper.MLPredictionsInc(1)
	wrapper.MLPredictionsInc(1)
	wrapper.MLPredictionsInc(0)

	if v := testutil.ToFloat64(metrics.Predictions); v != 3 {
		t.Errorf("Expected 3 predictions, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.PredictionsByLabel.WithLabelValues("1")); v != 2 {
		t.Errorf("Expected 2 viable predictions, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.PredictionsByLabel.WithLabelValues("0")); v != 1 {
		t.Errorf("Expected 1 not viable prediction, got %f", v)
	}
}

func TestMetricsWrapper_Failures(t *testing.T) {
	metrics, wrapper := newTestWrapper()

	wrapper.MLFailuresInc()
	wrapper.MLFeatureMismatchInc()
	wrapper.MLCacheHitsInc()

	if v := testutil.ToFloat64(metrics.Failures); v != 1 {
		t.Errorf("Expected 1 failure, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.FeatureMismatches); v != 1 {
		t.Errorf("Expected 1 mismatch, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.CacheHits); v != 1 {
		t.Errorf("Expected 1 cache hit, got %f", v)
	}
}

func TestMetricsWrapper_ModelGauges(t *testing.T) {
	metrics, wrapper := newTestWrapper()

	wrapper.MLModelLoadedSet(true)
	if v := testutil.ToFloat64(metrics.ModelLoaded); v != 1 {
		t.Errorf("Expected model_loaded 1, got %f", v)
	}
	wrapper.MLModelLoadedSet(false)
	if v := testutil.ToFloat64(metrics.ModelLoaded); v != 0 {
		t.Errorf("Expected model_loaded 0, got %f", v)
	}

	wrapper.MLModelAgeSet(3600)
	if v := testutil.ToFloat64(metrics.ModelAge); v != 3600 {
		t.Errorf("Expected model age 3600, got %f", v)
	}
}

func TestMetricsWrapper_Latency(t *testing.T) {
	metrics, wrapper := newTestWrapper()

	testValues := []float64{0.0001, 0.001, 0.01}
	for _, value := range testValues {
		wrapper.MLLatencyObserve(value)
	}

	if count := testutil.CollectAndCount(metrics.Latency); count != 1 {
		t.Errorf("Expected 1 latency series, got %d", count)
	}
}

func TestMetricsWrapper_HTTP(t *testing.T) {
	metrics, wrapper := newTestWrapper()

	wrapper.RequestObserve("/predict", 200)
	wrapper.RequestObserve("/predict", 201)
	wrapper.RequestObserve("/api/predict", 422)

	if v := testutil.ToFloat64(metrics.Requests.WithLabelValues("/predict", "2xx")); v != 2 {
		t.Errorf("Expected 2 successful /predict requests, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.Requests.WithLabelValues("/api/predict", "4xx")); v != 1 {
		t.Errorf("Expected 1 client error, got %f", v)
	}

	sessions := wrapper.WSSessions()
	sessions.Add(1)
	sessions.Add(1)
	sessions.Add(-1)
	if v := testutil.ToFloat64(metrics.WSSessions); v != 1 {
		t.Errorf("Expected 1 open session, got %f", v)
	}

	wrapper.JournalErrors().Inc()
	if v := testutil.ToFloat64(metrics.JournalErrors); v != 1 {
		t.Errorf("Expected 1 journal error, got %f", v)
	}
}

func TestNewWithRegistry_IsolatedRegistries(t *testing.T) {
	// Two registries must not collide on metric names.
	NewWithRegistry(prometheus.NewRegistry())
	NewWithRegistry(prometheus.NewRegistry())
}
