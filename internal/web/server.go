// Package web serves the interactive mining-site predictor: the slider page,
// the about page, and JSON and WebSocket variants of the same single
// predict cycle.
//
// The server is built around one read-only predictor constructed before the
// listener starts. When the artifact failed to load the server still runs
// and every surface reports the load error instead of predicting.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"minesite/internal/features"
	"minesite/internal/metrics"
	"minesite/internal/ml"
	"minesite/internal/storage"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Observer receives request level metrics.
type Observer interface {
	RequestObserve(route string, status int)
	WSSessions() metrics.MetricsGauge
	JournalErrors() metrics.MetricsCounter
}

// Journal records predictions. Implemented by *storage.Store.
type Journal interface {
	StorePrediction(record storage.PredictionRecord) (storage.PredictionRecord, error)
	Recent(n int) ([]storage.PredictionRecord, error)
}

// Config wires the server's collaborators.
type Config struct {
	Predictor      ml.PredictorInterface // nil when the artifact failed to load
	LoadError      error                 // why Predictor is nil
	ModelPath      string
	Collector      *features.Collector   // defaults to the canonical fields
	Metrics        Observer              // optional
	Journal        Journal               // optional
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	// AllowedOrigins may open /ws from another origin, e.g.
	// "https://ops.example.com". Same-origin pages are always allowed.
	AllowedOrigins []string
}

// Server is the HTTP front end of the predictor.
type Server struct {
	predictor ml.PredictorInterface
	loadErr   error
	modelPath string
	collector *features.Collector
	metrics   Observer
	journal   Journal
	origins   map[string]bool

	router    *mux.Router
	server    *http.Server
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	errCh     chan error
	isRunning bool
	mu        sync.Mutex
}

// New builds the router and the underlying http.Server.
func New(config Config) *Server {
	collector := config.Collector
	if collector == nil {
		collector = features.NewCollector()
	}

	loadErr := config.LoadError
	if config.Predictor == nil && loadErr == nil {
		loadErr = ml.ErrNotLoaded
	}

	s := &Server{
		predictor: config.Predictor,
		loadErr:   loadErr,
		modelPath: config.ModelPath,
		collector: collector,
		metrics:   config.Metrics,
		journal:   config.Journal,
		origins:   make(map[string]bool, len(config.AllowedOrigins)),
		clients:   make(map[*websocket.Conn]bool),
		errCh:     make(chan error, 1),
	}
	for _, origin := range config.AllowedOrigins {
		s.origins[strings.ToLower(strings.TrimRight(origin, "/"))] = true
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}

	r := mux.NewRouter()
	r.Use(s.instrument)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/predict", s.handlePredictForm).Methods(http.MethodPost)
	r.HandleFunc("/about", s.handleAbout).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/predict", s.handlePredictAPI).Methods(http.MethodPost)
	api.HandleFunc("/model", s.handleModelAPI).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistoryAPI).Methods(http.MethodGet)
	s.router = r

	readTimeout := config.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := config.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      r,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Loaded reports whether a predictor is available.
func (s *Server) Loaded() bool {
	return s.predictor != nil
}

// Start serves in the background. Listener failures are delivered on Err.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("web server is already running")
	}

	go func() {
		log.Info().
			Str("address", s.server.Addr).
			Bool("model_loaded", s.Loaded()).
			Msg("Starting web server")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Web server failed")
			s.errCh <- err
		}
	}()

	s.isRunning = true
	return nil
}

// Err delivers a listener failure after Start.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Stop closes live WebSocket sessions and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	// Close all WebSocket connections
	s.clientsMu.Lock()
	for client := range s.clients {
		client.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.clientsMu.Unlock()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown web server")
		return err
	}

	s.isRunning = false
	log.Info().Msg("Web server stopped")
	return nil
}

// checkOrigin only lets browsers in from the server's own origin or a
// configured one. Requests without an Origin header are not from browsers.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	if s.origins[strings.ToLower(u.Scheme+"://"+u.Host)] {
		return true
	}
	log.Warn().Str("origin", origin).Str("host", r.Host).Msg("Rejected cross-origin WebSocket request")
	return false
}

// instrument counts every routed request by path template and status.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		if s.metrics != nil {
			s.metrics.RequestObserve(route, rec.status)
		}

		log.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
