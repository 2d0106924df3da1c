package ml

import "sync"

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu          sync.Mutex
	predictions int
	byLabel     map[int]int
	failures    int
	mismatches  int
	cacheHits   int
	latencySum  float64
	modelAge    float64
	modelLoaded bool
}

func (m *MockMetrics) MLPredictionsInc(label int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
	if m.byLabel == nil {
		m.byLabel = make(map[int]int)
	}
	m.byLabel[label]++
}

func (m *MockMetrics) MLFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *MockMetrics) MLFeatureMismatchInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mismatches++
}

func (m *MockMetrics) MLLatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySum += v
}

func (m *MockMetrics) MLModelAgeSet(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelAge = v
}

func (m *MockMetrics) MLModelLoadedSet(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelLoaded = v
}

func (m *MockMetrics) MLCacheHitsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}
