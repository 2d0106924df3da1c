package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"minesite/internal/ml"
	"minesite/internal/storage"
	"minesite/internal/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const logisticArtifact = `
model_type: logistic_regression
feature_names_in: ["Iron (%)"]
coef: [1.0]
intercept: -40
`

func newBackend(t *testing.T, journal web.Journal) *httptest.Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(logisticArtifact), 0o644))

	predictor, err := ml.New(path)
	require.NoError(t, err)

	srv := httptest.NewServer(web.New(web.Config{Predictor: predictor, ModelPath: path, Journal: journal}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Predict(t *testing.T) {
	srv := newBackend(t, nil)
	c := New(srv.URL+"/", time.Second)

	result, err := c.Predict(context.Background(), map[string]float64{"iron": 90})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Label)
	assert.Equal(t, "This is a Potential Mining Site!", result.Outcome)

	result, err = c.Predict(context.Background(), map[string]float64{"Iron (%)": 10})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Label)
}

func TestClient_ModelInfo(t *testing.T) {
	srv := newBackend(t, nil)
	c := New(srv.URL, time.Second)

	info, err := c.ModelInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ml.ModelLogisticRegression, info.ModelType)
	assert.Equal(t, []string{"Iron (%)"}, info.ExpectedOrder)
	assert.True(t, info.Patched, "artifact without a preprocessor is patched on load")
}

func TestClient_History(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	srv := newBackend(t, store)
	c := New(srv.URL, time.Second)

	for _, iron := range []float64{10, 90} {
		_, err := c.Predict(context.Background(), map[string]float64{"iron": iron})
		require.NoError(t, err)
	}

	records, err := c.History(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Label, "newest first")
	assert.Equal(t, web.SourceAPI, records[0].Source)
}

func TestClient_HistoryDisabled(t *testing.T) {
	srv := newBackend(t, nil)
	c := New(srv.URL, time.Second)

	_, err := c.History(context.Background(), 5)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "journal is disabled")
}

func TestClient_FeatureMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(web.ErrorResponse{
			Error:    "Feature mismatch! Model expects: [Cobalt (%)]",
			Missing:  []string{"Cobalt (%)"},
			Expected: []string{"Cobalt (%)"},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Predict(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ml.ErrFeatureMismatch))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{"Cobalt (%)"}, apiErr.Missing)
}

func TestClient_ServerUnavailable(t *testing.T) {
	srv := httptest.NewServer(web.New(web.Config{
		LoadError: ml.ErrArtifactNotFound,
		ModelPath: "missing.json",
	}).Handler())
	defer srv.Close()

	_, err := New(srv.URL, time.Second).ModelInfo(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "missing.json")
	assert.False(t, errors.Is(err, ml.ErrFeatureMismatch))
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Predict(context.Background(), nil)
	assert.Error(t, err)
}

func TestSession_Predict(t *testing.T) {
	srv := newBackend(t, nil)

	session, err := DialSession(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	defer session.Close()

	for _, tc := range []struct {
		iron  float64
		label int
	}{{90, 1}, {10, 0}, {41, 1}} {
		result, err := session.Predict(map[string]float64{"iron": tc.iron})
		require.NoError(t, err)
		assert.Equal(t, tc.label, result.Label, "iron=%v", tc.iron)
	}
}

func TestSession_ModelMissing(t *testing.T) {
	srv := httptest.NewServer(web.New(web.Config{
		LoadError: ml.ErrArtifactNotFound,
		ModelPath: "missing.json",
	}).Handler())
	defer srv.Close()

	session, err := DialSession(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	defer session.Close()

	_, err = session.Predict(nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "missing.json")
	assert.False(t, errors.Is(err, ml.ErrFeatureMismatch))
}

func TestDialSession_Refused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := DialSession(context.Background(), url, time.Second)
	assert.Error(t, err)
}
