package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minesite/internal/cfg"
	"minesite/internal/metrics"
	"minesite/internal/ml"
	"minesite/internal/storage"
	"minesite/internal/web"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	setupLogging(c)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize components
	m := metrics.New()
	mw := metrics.NewWrapper(m)
	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	// The predictor is built before the listener starts and never reloaded.
	predictor, loadErr := initializePredictor(c, mw)

	startMetricsServer(ctx, c)

	webConfig := web.Config{
		Predictor:      predictor,
		LoadError:      loadErr,
		ModelPath:      c.ModelPath,
		Metrics:        mw,
		Port:           c.ListenPort,
		ReadTimeout:    c.ReadTimeout,
		WriteTimeout:   c.WriteTimeout,
		AllowedOrigins: c.AllowedOrigins,
	}
	if store != nil {
		webConfig.Journal = store
	}
	server := web.New(webConfig)
	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("web server start failed")
	}

	// Wait for shutdown signal
	waitForShutdown(ctx, cancel, server)
}

func setupLogging(c cfg.Settings) {
	zerolog.SetGlobalLevel(c.Level())
	if c.PrettyLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// initializePredictor loads the artifact. A failure is not fatal: the web
// server keeps running and shows the load error on every surface.
func initializePredictor(c cfg.Settings, mw *metrics.MetricsWrapper) (ml.PredictorInterface, error) {
	p, err := ml.NewWithMetrics(ml.PredictorConfig{
		ModelPath:    c.ModelPath,
		StrictSchema: c.StrictSchema,
		CacheSize:    c.CacheSize,
	}, mw)
	if err != nil {
		log.Error().Err(err).Str("model_path", c.ModelPath).Msg("model load failed, predictions are disabled")
		return nil, err
	}
	return p, nil
}

// initializeStorage opens the prediction journal if DATA_PATH is configured
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath != "" {
		store, err := storage.New(c.DataPath)
		if err != nil {
			log.Warn().Err(err).Msg("storage initialization failed, continuing without prediction journal")
			return nil
		}
		log.Info().Str("data_path", c.DataPath).Msg("prediction journal enabled")
		return store
	}
	return nil
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(ctx context.Context, c cfg.Settings) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", c.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			if err := server.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to shutdown metrics server")
			}
		}()

		log.Info().Str("address", server.Addr).Msg("Starting metrics server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

// waitForShutdown blocks until a signal arrives or the web listener fails.
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, server *web.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case err := <-server.Err():
		log.Error().Err(err).Msg("web server stopped unexpectedly")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
	cancel() // stops the metrics server

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown timeout, forcing exit")
	}
}
