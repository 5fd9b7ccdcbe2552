package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IgorGrieder/shortlink/internal/config"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/telemetry"
	"github.com/IgorGrieder/shortlink/internal/processing/clicks"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	httpTransport "github.com/IgorGrieder/shortlink/internal/transport/http"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Options{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
	)

	var shutdownTracer func(context.Context) error
	if cfg.OTel.Enabled {
		var err error
		shutdownTracer, err = telemetry.InitTracer(telemetry.Options{
			Endpoint:       cfg.OTel.Endpoint,
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Env,
			SampleRatio:    cfg.OTel.SampleRatio,
		})
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			logger.Info("OpenTelemetry tracer initialized", zap.String("endpoint", cfg.OTel.Endpoint))
		}
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := initStorage(initCtx, cfg)
	cancelInit()
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.close()

	cache, closeCache := initCache(cfg)
	defer closeCache()

	tracker := clicks.NewTracker(store.links, store.clicks, clicks.Options{
		Workers:   cfg.Tracking.Workers,
		QueueSize: cfg.Tracking.QueueSize,
		Timeout:   cfg.Tracking.Timeout,
		IPSalt:    cfg.Tracking.IPSalt,
	})

	resolver := links.NewResolver(store.links, cache, tracker, links.ResolverOptions{
		CacheTimeout: cfg.Cache.Timeout,
		CacheTTL:     cfg.Cache.TTL,
	})
	linkSvc := links.NewService(store.links, links.NewCryptoSlugger(), links.ServiceOptions{
		BaseURL:     cfg.Shortener.BaseURL,
		SlugLength:  cfg.Shortener.SlugLength,
		MaxRetries:  cfg.Shortener.MaxRetries,
		GrowthEvery: cfg.Shortener.GrowthEvery,
	})

	router := httpTransport.NewRouter(cfg, linkSvc, resolver)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}

		// in-flight clicks are recorded before the store closes.
		if err := tracker.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Click tracker did not drain in time", zap.Error(err))
		}
		if dropped := tracker.Dropped(); dropped > 0 {
			logger.Warn("Clicks dropped under load", zap.Int64("dropped", dropped))
		}

		if shutdownTracer != nil {
			_ = shutdownTracer(shutdownCtx)
		}
	}()

	logger.Info("Server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.App.Env),
		zap.String("address", fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)),
		zap.String("base_url", cfg.Shortener.BaseURL),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("Server error", zap.Error(err))
	}

	<-shutdownDone
	logger.Info("Server stopped gracefully")
}
