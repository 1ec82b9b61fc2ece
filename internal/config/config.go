// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrDatabaseDSNRequired is returned when DATABASE_DSN is not set.
	ErrDatabaseDSNRequired = errors.New("config: DATABASE_DSN is required")
	// ErrRedisURLRequired is returned when REDIS_URL is empty.
	ErrRedisURLRequired = errors.New("config: REDIS_URL is required")
)

// Config holds all configuration for the worker.
type Config struct {
	// Ops server settings
	Port int `env:"PORT, default=8090" json:"port"`

	// Queue settings
	RedisURL    string `env:"REDIS_URL, default=redis://localhost:6379" json:"redis_url"`
	QueueName   string `env:"QUEUE_NAME, default=video-processing" json:"queue_name"`
	MaxAttempts int    `env:"MAX_ATTEMPTS, default=3" json:"max_attempts"`

	// Job store settings
	DatabaseDSN string `env:"DATABASE_DSN, required" json:"-"` // Masked in JSON

	// Media toolkit settings
	FFmpegPath  string `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path"`
	FFprobePath string `env:"FFPROBE_PATH, default=ffprobe" json:"ffprobe_path"`

	// Output settings. Processed files land in OutputDir and are served by
	// the web app under PublicPathPrefix.
	OutputDir        string `env:"OUTPUT_DIR, default=./uploads/processed" json:"output_dir"`
	PublicPathPrefix string `env:"PUBLIC_PATH_PREFIX, default=/api/uploads/processed" json:"public_path_prefix"`

	// Webhook notification settings
	WebhookURL    string `env:"WEBHOOK_URL, default=http://localhost:3000/api/events/emit" json:"webhook_url"`
	WebhookSecret string `env:"WORKER_WEBHOOK_SECRET, default=dev-secret" json:"-"` // Masked in JSON

	// Optional S3 settings for publishing processed files
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error if required variables are not set.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		// Map envconfig errors to our domain errors for required fields
		if strings.Contains(err.Error(), "DATABASE_DSN") {
			return nil, ErrDatabaseDSNRequired
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return ErrDatabaseDSNRequired
	}
	if c.RedisURL == "" {
		return ErrRedisURLRequired
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, RedisURL: %s, QueueName: %s, MaxAttempts: %d, FFmpegPath: %s, FFprobePath: %s, OutputDir: %s, WebhookURL: %s, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.RedisURL,
		c.QueueName,
		c.MaxAttempts,
		c.FFmpegPath,
		c.FFprobePath,
		c.OutputDir,
		c.WebhookURL,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
