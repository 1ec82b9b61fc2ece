// Package bootstrap provides dependency initialization for the worker.
package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"silencecut/internal/config"
	"silencecut/internal/credits"
	"silencecut/internal/job"
	"silencecut/internal/media"
	"silencecut/internal/notify"
	"silencecut/internal/queue"
	"silencecut/internal/render"
	"silencecut/internal/server"
	"silencecut/internal/silence"
	"silencecut/internal/storage"
)

// Dependencies holds all initialized dependencies for the worker.
type Dependencies struct {
	// Consumer pulls jobs off the queue and runs them.
	Consumer *queue.RedisConsumer
	// Router serves the read-only ops endpoints.
	Router http.Handler

	db    *gorm.DB
	redis *redis.Client
}

// NewDependencies creates and initializes all dependencies for the worker.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// The renderer writes into the output directory regardless of the
	// publishing backend.
	if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)

	toolkit := media.NewFFmpegToolkit(cfg.FFmpegPath, cfg.FFprobePath)
	detector := silence.NewDetector(toolkit, logger)
	renderer := render.NewRenderer(toolkit, logger)

	store := job.NewGormStore(db)
	ledger := credits.NewGormLedger(db)

	publisher, err := initPublisher(cfg, logger)
	if err != nil {
		return nil, err
	}

	notifier, err := initNotifier(cfg, redisClient, logger)
	if err != nil {
		return nil, err
	}

	executor := job.NewExecutor(
		store,
		toolkit,
		detector,
		renderer,
		publisher,
		notifier,
		ledger,
		cfg.OutputDir,
		logger,
	)

	consumer := queue.NewRedisConsumer(
		redisClient,
		cfg.QueueName,
		cfg.MaxAttempts,
		executor.Execute,
		logger,
	)

	handlers := server.NewHandlers(store, logger)
	router := server.NewRouter(handlers, logger)

	return &Dependencies{
		Consumer: consumer,
		Router:   router,
		db:       db,
		redis:    redisClient,
	}, nil
}

// Close releases the database and Redis connections.
func (d *Dependencies) Close() error {
	var firstErr error

	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			firstErr = fmt.Errorf("close Redis client: %w", err)
		}
	}

	if d.db != nil {
		if sqlDB, err := d.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close database: %w", err)
			}
		}
	}

	return firstErr
}

// initPublisher selects the publishing backend based on configuration.
func initPublisher(cfg *config.Config, logger *slog.Logger) (storage.Publisher, error) {
	if cfg.S3Enabled() {
		s3Pub, err := storage.NewS3Publisher(storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create S3 publisher: %w", err)
		}
		logger.Info("S3 publishing configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Pub, nil
	}

	localPub, err := storage.NewLocalPublisher(cfg.OutputDir, cfg.PublicPathPrefix)
	if err != nil {
		return nil, fmt.Errorf("create local publisher: %w", err)
	}
	logger.Info("local publishing configured",
		slog.String("output_dir", cfg.OutputDir),
	)
	return localPub, nil
}

// initNotifier builds the fanout of status event sinks.
func initNotifier(cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) (notify.Notifier, error) {
	var sinks notify.Fanout

	if cfg.WebhookURL != "" {
		webhook, err := notify.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookSecret)
		if err != nil {
			return nil, fmt.Errorf("create webhook notifier: %w", err)
		}
		sinks = append(sinks, webhook)
	}

	sinks = append(sinks, notify.NewRedisNotifier(redisClient, "jobs"))

	logger.Info("notification sinks configured",
		slog.Int("sinks", len(sinks)),
		slog.Bool("webhook", cfg.WebhookURL != ""),
	)
	return sinks, nil
}
