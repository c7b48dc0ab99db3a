package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ascii-theater/internal/handlers"
	"ascii-theater/internal/history"
	"ascii-theater/internal/logging"
	"ascii-theater/internal/metrics"
	"ascii-theater/internal/middleware"
	"ascii-theater/internal/player"
	"ascii-theater/internal/startup"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize history store
	store, err := history.New(context.Background(), config.HistoryPath)
	if err != nil {
		startup.LogFatal("Failed to initialize history store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn("Failed to close history store: %v", err)
		}
	}()

	// Initialize the playback session owning the terminal
	playerConfig := player.DefaultConfig()
	playerConfig.MaxFrameSkip = config.MaxFrameSkip
	playerConfig.ClearEachFrame = config.ClearEachFrame
	p := player.New(os.Stdout, playerConfig)

	// Initialize handlers
	h := handlers.New(p, store, config, os.Stdout)

	// Setup router
	router := setupRouter(h, config)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggedHandler := middleware.Logger(loggingConfig)(router)

	// Apply metrics middleware
	handler := http.Handler(loggedHandler)
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}

	// Apply compression middleware
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, p)

	// Start server
	startup.LogServerStarted(config.Port, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	if config.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/upload/image", h.UploadImage).Methods("POST")
	api.HandleFunc("/upload/video", h.UploadVideo).Methods("POST")
	api.HandleFunc("/control/stop", h.StopPlayback).Methods("POST")
	api.HandleFunc("/playback", h.PlaybackStatus).Methods("GET")
	api.HandleFunc("/history", h.GetHistory).Methods("GET")

	// Static files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir("./static")))

	return r
}

func handleShutdown(srv *http.Server, p *player.Player) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping playback")
	p.Stop()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	}

	startup.LogShutdownComplete()
}
