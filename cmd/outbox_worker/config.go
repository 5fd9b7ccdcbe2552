package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/IgorGrieder/shortlink/internal/config"
)

type workerConfig struct {
	appEnv       string
	appName      string
	appVersion   string
	logLevel     string
	otelEnabled  bool
	otelEndpoint string
	sampleRatio  float64
	postgresDSN  string
	maxConns     int

	kafkaBrokers []string
	kafkaTopic   string
	workerID     string

	pollInterval time.Duration
	batchSize    int
	writeTimeout time.Duration
	retryBase    time.Duration
	retryMax     time.Duration
	idleWait     time.Duration
	claimLease   time.Duration
}

func loadConfig() (cfg workerConfig, _ error) {
	cfg = workerConfig{
		appEnv:       config.GetEnv("APP_ENV", "production"),
		appName:      config.GetEnv("APP_NAME", "shortlink"),
		appVersion:   config.GetEnv("APP_VERSION", "0.1.0"),
		logLevel:     config.GetEnv("LOG_LEVEL", "info"),
		otelEnabled:  config.GetEnvBool("OTEL_ENABLED", false),
		otelEndpoint: config.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://jaeger:4318"),
		sampleRatio:  config.GetEnvFloat("OTEL_SAMPLE_RATIO", 1.0),
		postgresDSN:  config.GetEnv("DB_DSN", config.DefaultPostgresDSN()),
		maxConns:     config.GetEnvInt("DB_MAX_CONNS", 4),
		kafkaBrokers: config.SplitCSV(config.GetEnv("KAFKA_BROKERS", "kafka:9092")),
		kafkaTopic:   config.GetEnv("KAFKA_CLICK_TOPIC", "clicks.recorded"),
		workerID:     config.GetEnv("OUTBOX_WORKER_ID", config.DefaultWorkerID("outbox-worker")),
		pollInterval: config.GetEnvDuration("OUTBOX_POLL_INTERVAL", 250*time.Millisecond),
		batchSize:    config.GetEnvInt("OUTBOX_BATCH_SIZE", 200),
		writeTimeout: config.GetEnvDuration("OUTBOX_WRITE_TIMEOUT", 5*time.Second),
		retryBase:    config.GetEnvDuration("OUTBOX_RETRY_BASE_DELAY", 1*time.Second),
		retryMax:     config.GetEnvDuration("OUTBOX_RETRY_MAX_DELAY", 30*time.Second),
		idleWait:     config.GetEnvDuration("OUTBOX_IDLE_WAIT", 50*time.Millisecond),
		claimLease:   config.GetEnvDuration("OUTBOX_CLAIM_LEASE", 30*time.Second),
	}

	if strings.TrimSpace(cfg.postgresDSN) == "" {
		return workerConfig{}, fmt.Errorf("DB_DSN must not be empty")
	}
	if len(cfg.kafkaBrokers) == 0 {
		return workerConfig{}, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if cfg.batchSize <= 0 {
		return workerConfig{}, fmt.Errorf("OUTBOX_BATCH_SIZE must be > 0")
	}
	if cfg.pollInterval <= 0 {
		return workerConfig{}, fmt.Errorf("OUTBOX_POLL_INTERVAL must be > 0")
	}
	if cfg.writeTimeout <= 0 {
		return workerConfig{}, fmt.Errorf("OUTBOX_WRITE_TIMEOUT must be > 0")
	}
	if cfg.retryBase <= 0 {
		return workerConfig{}, fmt.Errorf("OUTBOX_RETRY_BASE_DELAY must be > 0")
	}
	if cfg.retryMax < cfg.retryBase {
		return workerConfig{}, fmt.Errorf("OUTBOX_RETRY_MAX_DELAY must be >= OUTBOX_RETRY_BASE_DELAY")
	}
	if strings.TrimSpace(cfg.workerID) == "" {
		return workerConfig{}, fmt.Errorf("OUTBOX_WORKER_ID must not be empty")
	}
	if cfg.maxConns <= 0 {
		return workerConfig{}, fmt.Errorf("DB_MAX_CONNS must be > 0")
	}
	if cfg.claimLease <= 0 {
		return workerConfig{}, fmt.Errorf("OUTBOX_CLAIM_LEASE must be > 0")
	}

	return cfg, nil
}
