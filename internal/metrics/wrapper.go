package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Interfaces for metrics to avoid circular imports
type MetricsCounter interface {
	Inc()
}

type MetricsGauge interface {
	Set(float64)
	Add(float64)
}

type MetricsHistogram interface {
	Observe(float64)
}

// MetricsWrapper adapts Metrics to the interfaces the predictor and the web
// server consume.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) MLPredictionsInc(label int) {
	w.m.Predictions.Inc()
	w.m.PredictionsByLabel.WithLabelValues(strconv.Itoa(label)).Inc()
}

func (w *MetricsWrapper) MLFailuresInc() {
	w.m.Failures.Inc()
}

func (w *MetricsWrapper) MLFeatureMismatchInc() {
	w.m.FeatureMismatches.Inc()
}

func (w *MetricsWrapper) MLLatencyObserve(v float64) {
	w.m.Latency.Observe(v)
}

func (w *MetricsWrapper) MLModelAgeSet(v float64) {
	w.m.ModelAge.Set(v)
}

func (w *MetricsWrapper) MLModelLoadedSet(loaded bool) {
	if loaded {
		w.m.ModelLoaded.Set(1)
		return
	}
	w.m.ModelLoaded.Set(0)
}

func (w *MetricsWrapper) MLCacheHitsInc() {
	w.m.CacheHits.Inc()
}

// RequestObserve counts one HTTP request by route and status class.
func (w *MetricsWrapper) RequestObserve(route string, status int) {
	w.m.Requests.WithLabelValues(route, strconv.Itoa(status/100)+"xx").Inc()
}

func (w *MetricsWrapper) WSSessions() MetricsGauge {
	return &GaugeWrapper{w.m.WSSessions}
}

func (w *MetricsWrapper) JournalErrors() MetricsCounter {
	return &CounterWrapper{w.m.JournalErrors}
}

type CounterWrapper struct {
	c prometheus.Counter
}

func (cw *CounterWrapper) Inc() {
	cw.c.Inc()
}

type GaugeWrapper struct {
	g prometheus.Gauge
}

func (gw *GaugeWrapper) Set(v float64) {
	gw.g.Set(v)
}

func (gw *GaugeWrapper) Add(v float64) {
	gw.g.Add(v)
}
