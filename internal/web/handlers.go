package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"minesite/internal/common"
	"minesite/internal/features"
	"minesite/internal/ml"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	maxRequestBytes = 64 << 10
	maxHistoryLimit = 1000
)

// WSReply is sent for every message received on /ws.
type WSReply struct {
	Result *Result        `json:"result,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

type sliderView struct {
	features.Field
	Value float64
}

type pageData struct {
	Title         string
	Sliders       []sliderView
	LoadError     string
	Inputs        []FeatureValue
	Result        *Result
	Error         string
	SchemaSource  ml.SchemaSource
	ExpectedOrder []string
	Note          string
}

func (s *Server) newPageData(rec features.Record) pageData {
	data := pageData{
		Title:     "Mining Site Prediction",
		LoadError: s.loadErrorMessage(),
		Note:      common.PredictionNote,
	}
	for _, f := range s.collector.Fields() {
		v, _ := rec.Get(f.Name)
		data.Sliders = append(data.Sliders, sliderView{Field: f, Value: v})
	}
	if s.predictor != nil {
		info := s.predictor.Info()
		data.SchemaSource = info.SchemaSource
		data.ExpectedOrder = info.ExpectedOrder
	}
	return data
}

// handleIndex serves the slider page. Query values preset the sliders.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := s.newPageData(s.collector.Collect(r.URL.Query()))
	s.renderPage(w, http.StatusOK, "index", data)
}

// handlePredictForm runs one predict cycle from the slider form.
func (s *Server) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	rec := s.collector.Collect(r.PostForm)
	data := s.newPageData(rec)

	if s.predictor == nil {
		s.renderPage(w, http.StatusServiceUnavailable, "index", data)
		return
	}

	data.Inputs = inputRows(rec)
	result, err := s.predict(rec, SourceForm)
	if err != nil {
		status, body := s.errorResponse(err)
		data.Error = body.Error
		s.renderPage(w, status, "index", data)
		return
	}

	data.Result = result
	s.renderPage(w, http.StatusOK, "index", data)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, "about", pageData{Title: "About AstroMineX"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.predictor == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":       "unavailable",
			"model_loaded": false,
			"error":        s.loadErrorMessage(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"model_loaded": true,
	})
}

func (s *Server) handlePredictAPI(w http.ResponseWriter, r *http.Request) {
	if s.predictor == nil {
		status, body := s.errorResponse(s.loadErr)
		writeJSON(w, status, body)
		return
	}

	var req PredictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := s.predict(s.collector.FromMap(req.Features), SourceAPI)
	if err != nil {
		status, body := s.errorResponse(err)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleModelAPI(w http.ResponseWriter, r *http.Request) {
	if s.predictor == nil {
		status, body := s.errorResponse(s.loadErr)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, s.predictor.Info())
}

func (s *Server) handleHistoryAPI(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "prediction journal is disabled"})
		return
	}

	limit := common.DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := s.journal.Recent(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read prediction journal")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleWebSocket treats each inbound JSON message as one predict request
// and answers it with exactly one reply.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxRequestBytes)

	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()
	if s.metrics != nil {
		s.metrics.WSSessions().Add(1)
	}

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		if s.metrics != nil {
			s.metrics.WSSessions().Add(-1)
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("WebSocket session ended unexpectedly")
			}
			return
		}

		reply := s.wsPredict(msg)
		if err := conn.WriteJSON(reply); err != nil {
			log.Error().Err(err).Msg("Failed to send message to WebSocket client")
			return
		}
	}
}

func (s *Server) wsPredict(msg []byte) WSReply {
	var req PredictRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		return WSReply{Error: &ErrorResponse{Error: "invalid request: " + err.Error()}}
	}

	result, err := s.predict(s.collector.FromMap(req.Features), SourceWS)
	if err != nil {
		_, body := s.errorResponse(err)
		return WSReply{Error: &body}
	}
	return WSReply{Result: result}
}

func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("page", name).Msg("Failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
