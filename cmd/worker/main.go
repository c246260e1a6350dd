package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/socialchef/cocktail-studio/internal/config"
	"github.com/socialchef/cocktail-studio/internal/logger"
	"github.com/socialchef/cocktail-studio/internal/metrics"
	"github.com/socialchef/cocktail-studio/internal/sentry"
	"github.com/socialchef/cocktail-studio/internal/store"
	"github.com/socialchef/cocktail-studio/internal/telemetry"
	"github.com/socialchef/cocktail-studio/internal/worker"
)

func main() {
	defer sentry.Recover()

	ctx := context.Background()

	cfg := config.MustLoad()
	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is required for the worker")
	}

	serviceName := cfg.ServiceName + "-worker"

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, serviceName, cfg.ServiceVersion, cfg.Env,
			cfg.OtelExporterOTLPEndpoint, telemetry.ParseHeaders(cfg.OtelExporterOTLPHeaders))
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, serviceName, cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	} else if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init business metrics", "error", err)
	}

	slog.SetDefault(logger.New(cfg.Env))

	redisClient, err := store.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	if err := metrics.InitWorker(); err != nil {
		slog.Warn("Failed to init worker metrics", "error", err)
	}

	processor := worker.NewDeliveryProcessor(store.NewRedisStore(redisClient, ""))

	srv, err := worker.NewServer(cfg.RedisURL, 0)
	if err != nil {
		log.Fatalf("Failed to create worker: %v", err)
	}

	slog.Info("Starting worker", "queue", worker.QueueDeliveries)

	// Run blocks until SIGINT or SIGTERM and shuts the server down.
	if err := srv.Run(worker.NewServeMux(processor)); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
