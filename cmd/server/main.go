package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skypro1111/mic-chunk-service/internal/capture"
	"github.com/skypro1111/mic-chunk-service/internal/config"
	"github.com/skypro1111/mic-chunk-service/internal/encoder"
	"github.com/skypro1111/mic-chunk-service/internal/events"
	"github.com/skypro1111/mic-chunk-service/internal/metrics"
	"github.com/skypro1111/mic-chunk-service/internal/server"
	"github.com/skypro1111/mic-chunk-service/internal/session"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "mic-chunk-service"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	// Log service startup
	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	// Log configuration summary
	logger.Info("Configuration loaded",
		slog.Int("http_port", cfg.HTTP.Port),
		slog.String("http_address", cfg.HTTP.Address),
		slog.Int("sample_rate", cfg.Audio.SampleRate),
		slog.Int("channels", cfg.Audio.Channels),
		slog.Int("default_chunk_duration_ms", cfg.Audio.DefaultChunkDurationMs),
		slog.String("capture_backend", cfg.Capture.Backend),
		slog.String("encoder_format", cfg.Encoder.Format),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Prometheus metrics
	appMetrics := metrics.New(prometheus.DefaultRegisterer)
	logger.Info("Prometheus metrics initialized")

	// Initialize capture engine
	engine, err := capture.NewEngine(cfg.Capture.Backend, logger)
	if err != nil {
		logger.Error("Failed to create capture engine", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Capture engine initialized",
		slog.String("backend", string(engine.Backend())),
	)

	// Initialize chunk encoder
	enc, err := encoder.New(cfg.Encoder.Format, encoder.Format{
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
	}, cfg.Encoder.FFmpegPath)
	if err != nil {
		logger.Error("Failed to create encoder", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Chunk encoder initialized",
		slog.String("format", enc.ContainerFormat()),
	)

	// Initialize event delivery: WebSocket hub behind the ordering gate
	hub := events.NewHub(appMetrics, logger)
	gate := events.NewGate(hub, appMetrics, logger)
	logger.Info("Event hub initialized")

	// Initialize the recording engine
	recorder := session.NewRecorder(session.Config{
		SampleRate:        cfg.Audio.SampleRate,
		Channels:          cfg.Audio.Channels,
		FramesPerBuffer:   cfg.Capture.FramesPerBuffer,
		QueueSize:         cfg.Capture.QueueSize,
		MaxEncodeFailures: cfg.Encoder.MaxEncodeFailures,
	}, engine, capture.StaticPermission{Granted: true}, enc, gate, appMetrics, logger)
	logger.Info("Recording engine initialized",
		slog.Duration("default_chunk_duration", cfg.Audio.GetDefaultChunkDuration()),
	)

	// Initialize HTTP API server
	httpServer := server.NewHTTPServer(cfg.HTTP, logger, cfg, recorder, hub, gate, appMetrics)
	logger.Info("HTTP API server initialized",
		slog.String("address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
	)

	if err := httpServer.Start(); err != nil {
		logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...",
		slog.String("http_address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
	)

	// Wait for shutdown signal
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down")
	}

	logger.Info("Starting graceful shutdown...")

	// Stop any live recording so the final chunk is flushed and emitted
	if err := recorder.Stop(); err != nil && !errors.Is(err, session.ErrNotRecording) {
		logger.Error("Error stopping recorder", slog.String("error", err.Error()))
	}

	// Stop HTTP server (stop accepting new requests)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	// Disconnect event subscribers
	hub.Close()

	// Final statistics
	gateStats := gate.GetStats()
	logger.Info("Final service statistics",
		slog.Int("last_chunk", gateStats.LastChunk),
		slog.Uint64("suppressed_events", gateStats.Suppressed),
	)

	logger.Info("Service stopped")
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo // default fallback
	}

	// Configure handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug, // Add source info for debug level
	}

	// Determine output destination
	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	// Create handler based on format
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		// Default to text format
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
