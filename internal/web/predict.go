package web

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"minesite/internal/common"
	"minesite/internal/features"
	"minesite/internal/ml"
	"minesite/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Prediction sources recorded in the journal.
const (
	SourceForm = "form"
	SourceAPI  = "api"
	SourceWS   = "ws"
)

// FeatureValue is one row of the input table.
type FeatureValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Result is the outcome of one predict cycle.
type Result struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	Label         int             `json:"label"`
	Viable        bool            `json:"viable"`
	Outcome       string          `json:"outcome"`
	Note          string          `json:"note"`
	Inputs        []FeatureValue  `json:"inputs"`
	ExpectedOrder []string        `json:"expected_order"`
	SchemaSource  ml.SchemaSource `json:"schema_source"`
}

// PredictRequest is the JSON body of /api/predict and of each /ws message.
// Keys are canonical feature names or form keys; absent fields take their
// defaults.
type PredictRequest struct {
	Features map[string]float64 `json:"features"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Missing  []string `json:"missing,omitempty"`
	Expected []string `json:"expected,omitempty"`
}

// predict runs one cycle: reconcile, decide, journal.
func (s *Server) predict(rec features.Record, source string) (*Result, error) {
	if s.predictor == nil {
		return nil, s.loadErr
	}

	label, err := s.predictor.Predict(rec)
	if err != nil {
		return nil, err
	}

	info := s.predictor.Info()
	result := &Result{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Label:         int(label),
		Viable:        label.Viable(),
		Outcome:       label.Outcome(),
		Note:          common.PredictionNote,
		Inputs:        inputRows(rec),
		ExpectedOrder: info.ExpectedOrder,
		SchemaSource:  info.SchemaSource,
	}

	s.record(result, rec, source, info.ModelPath)
	return result, nil
}

// record appends the result to the journal. A failed write is logged and
// counted but never fails the prediction.
func (s *Server) record(result *Result, rec features.Record, source, modelPath string) {
	if s.journal == nil {
		return
	}
	_, err := s.journal.StorePrediction(storage.PredictionRecord{
		ID:           result.ID,
		Timestamp:    result.Timestamp,
		Source:       source,
		Features:     rec.Map(),
		Label:        result.Label,
		Outcome:      result.Outcome,
		SchemaSource: string(result.SchemaSource),
		ModelPath:    modelPath,
	})
	if err != nil {
		log.Error().Err(err).Str("prediction_id", result.ID).Msg("Failed to journal prediction")
		if s.metrics != nil {
			s.metrics.JournalErrors().Inc()
		}
	}
}

func inputRows(rec features.Record) []FeatureValue {
	names := rec.Names()
	rows := make([]FeatureValue, 0, len(names))
	for _, name := range names {
		v, _ := rec.Get(name)
		rows = append(rows, FeatureValue{Name: name, Value: v})
	}
	return rows
}

// errorResponse maps a predict error to a status code and body.
func (s *Server) errorResponse(err error) (int, ErrorResponse) {
	var mismatch *ml.FeatureMismatchError
	switch {
	case errors.As(err, &mismatch):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error:    fmt.Sprintf("Feature mismatch! Model expects: %v", mismatch.Expected),
			Missing:  mismatch.Missing,
			Expected: mismatch.Expected,
		}
	case s.predictor == nil:
		return http.StatusServiceUnavailable, ErrorResponse{Error: s.loadErrorMessage()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: err.Error()}
	}
}

// loadErrorMessage is the user facing text for a failed artifact load.
func (s *Server) loadErrorMessage() string {
	switch {
	case s.loadErr == nil:
		return ""
	case errors.Is(s.loadErr, ml.ErrArtifactNotFound):
		return fmt.Sprintf("Model file not found. Please ensure '%s' is in this folder.", s.modelPath)
	case errors.Is(s.loadErr, ml.ErrSchemaUndetermined):
		return "Cannot determine which features the model expects."
	default:
		return fmt.Sprintf("Model '%s' could not be loaded: %v", s.modelPath, s.loadErr)
	}
}

// statusRecorder captures the response status. It forwards Hijack so the
// WebSocket upgrade still works behind the instrumentation middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
