package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/telemetry"
	postgresStorage "github.com/IgorGrieder/shortlink/internal/storage/postgres"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	serviceName := cfg.appName + "-outbox-worker"

	if err := logger.Init(logger.Options{
		Env:     cfg.appEnv,
		Level:   cfg.logLevel,
		Service: serviceName,
		Version: cfg.appVersion,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.otelEnabled {
		shutdownTracer, err := telemetry.InitTracer(telemetry.Options{
			Endpoint:       cfg.otelEndpoint,
			ServiceName:    serviceName,
			ServiceVersion: cfg.appVersion,
			Environment:    cfg.appEnv,
			SampleRatio:    cfg.sampleRatio,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			logger.Info("OpenTelemetry tracer initialized", zap.String("endpoint", cfg.otelEndpoint))
			defer func() {
				if err := shutdownTracer(context.Background()); err != nil {
					logger.Warn("failed to shutdown tracer", zap.Error(err))
				}
			}()
		}
	}

	pgConn, err := db.ConnectPostgres(context.Background(), db.PostgresOptions{
		DSN:      cfg.postgresDSN,
		MaxConns: int32(cfg.maxConns),
	})
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgConn.Close()

	outboxRepo, err := postgresStorage.NewClickOutboxRepository(pgConn)
	if err != nil {
		logger.Fatal("failed to initialize outbox repository", zap.Error(err))
	}

	writer := kafka.Writer{
		Addr:                   kafka.TCP(cfg.kafkaBrokers...),
		Topic:                  cfg.kafkaTopic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Warn("failed to close kafka writer", zap.Error(err))
		}
	}()

	pub := newPublisher(outboxRepo, &writer, publisherOptions{
		topic:        cfg.kafkaTopic,
		workerID:     cfg.workerID,
		batchSize:    cfg.batchSize,
		writeTimeout: cfg.writeTimeout,
		retryBase:    cfg.retryBase,
		retryMax:     cfg.retryMax,
		claimLease:   cfg.claimLease,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("outbox worker started",
		zap.Strings("kafka_brokers", cfg.kafkaBrokers),
		zap.String("kafka_topic", cfg.kafkaTopic),
		zap.String("worker_id", cfg.workerID),
		zap.Int("batch_size", cfg.batchSize),
		zap.Duration("poll_interval", cfg.pollInterval),
		zap.Duration("claim_lease", cfg.claimLease),
	)

	pub.run(ctx, cfg.pollInterval, cfg.idleWait)
	logger.Info("outbox worker stopping")
}
