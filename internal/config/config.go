package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Audio   AudioConfig   `yaml:"audio"`
	Capture CaptureConfig `yaml:"capture"`
	Encoder EncoderConfig `yaml:"encoder"`
	Logging LoggingConfig `yaml:"logging"`
}

// HTTPConfig contains HTTP API server configuration
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
}

// AudioConfig contains the canonical recording format and chunking defaults
type AudioConfig struct {
	SampleRate             int `yaml:"sample_rate"`
	Channels               int `yaml:"channels"`
	BitDepth               int `yaml:"bit_depth"`
	DefaultChunkDurationMs int `yaml:"default_chunk_duration_ms"`
}

// CaptureConfig contains microphone capture configuration
type CaptureConfig struct {
	Backend         string `yaml:"backend"`
	FramesPerBuffer int    `yaml:"frames_per_buffer"`
	QueueSize       int    `yaml:"queue_size"`
}

// EncoderConfig contains chunk encoder configuration
type EncoderConfig struct {
	Format            string `yaml:"format"`
	FFmpegPath        string `yaml:"ffmpeg_path"`
	MaxEncodeFailures int    `yaml:"max_encode_failures"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// applyDefaults fills in optional fields left empty in the file.
func (c *Config) applyDefaults() {
	if c.Capture.Backend == "" {
		c.Capture.Backend = "auto"
	}
	if c.Capture.FramesPerBuffer == 0 {
		c.Capture.FramesPerBuffer = 1024
	}
	if c.Capture.QueueSize == 0 {
		c.Capture.QueueSize = 64
	}
	if c.Encoder.Format == "" {
		c.Encoder.Format = "wav"
	}
	if c.Encoder.FFmpegPath == "" {
		c.Encoder.FFmpegPath = "ffmpeg"
	}
	if c.Encoder.MaxEncodeFailures == 0 {
		c.Encoder.MaxEncodeFailures = 3
	}
	if c.Audio.DefaultChunkDurationMs == 0 {
		c.Audio.DefaultChunkDurationMs = 30000
	}
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture config: %w", err)
	}

	if err := c.Encoder.Validate(); err != nil {
		return fmt.Errorf("encoder config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
	}

	if h.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	if a.SampleRate != 44100 {
		return fmt.Errorf("sample_rate must be 44100 Hz, got %d", a.SampleRate)
	}

	if a.Channels != 1 {
		return fmt.Errorf("channels must be 1 (mono), got %d", a.Channels)
	}

	if a.BitDepth != 16 {
		return fmt.Errorf("bit_depth must be 16, got %d", a.BitDepth)
	}

	if a.DefaultChunkDurationMs < 1 {
		return fmt.Errorf("default_chunk_duration_ms must be positive, got %d", a.DefaultChunkDurationMs)
	}

	return nil
}

// Validate validates capture configuration
func (c *CaptureConfig) Validate() error {
	validBackends := map[string]bool{"auto": true, "portaudio": true, "synthetic": true}
	if !validBackends[c.Backend] {
		return fmt.Errorf("backend must be one of [auto, portaudio, synthetic], got '%s'", c.Backend)
	}

	if c.FramesPerBuffer < 64 || c.FramesPerBuffer > 16384 {
		return fmt.Errorf("frames_per_buffer must be between 64 and 16384, got %d", c.FramesPerBuffer)
	}

	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1, got %d", c.QueueSize)
	}

	return nil
}

// Validate validates encoder configuration
func (e *EncoderConfig) Validate() error {
	validFormats := map[string]bool{"wav": true, "m4a": true}
	if !validFormats[e.Format] {
		return fmt.Errorf("format must be 'wav' or 'm4a', got '%s'", e.Format)
	}

	if e.Format == "m4a" && e.FFmpegPath == "" {
		return fmt.Errorf("ffmpeg_path cannot be empty for the m4a format")
	}

	if e.MaxEncodeFailures < 1 {
		return fmt.Errorf("max_encode_failures must be at least 1, got %d", e.MaxEncodeFailures)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetDefaultChunkDuration returns the default chunk duration as a time.Duration
func (a *AudioConfig) GetDefaultChunkDuration() time.Duration {
	return time.Duration(a.DefaultChunkDurationMs) * time.Millisecond
}
