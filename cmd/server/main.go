package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/socialchef/cocktail-studio/internal/api"
	"github.com/socialchef/cocktail-studio/internal/config"
	"github.com/socialchef/cocktail-studio/internal/flow"
	"github.com/socialchef/cocktail-studio/internal/logger"
	"github.com/socialchef/cocktail-studio/internal/metrics"
	"github.com/socialchef/cocktail-studio/internal/sentry"
	"github.com/socialchef/cocktail-studio/internal/store"
	"github.com/socialchef/cocktail-studio/internal/studio"
	"github.com/socialchef/cocktail-studio/internal/telemetry"
	"github.com/socialchef/cocktail-studio/internal/worker"
	"golang.org/x/sync/errgroup"
)

func main() {
	defer sentry.Recover()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env,
			cfg.OtelExporterOTLPEndpoint, telemetry.ParseHeaders(cfg.OtelExporterOTLPHeaders))
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	} else if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init business metrics", "error", err)
	}

	slog.SetDefault(logger.New(cfg.Env))

	var (
		flowStore  flow.Store
		dispatcher flow.Dispatcher
		timers     *flow.TimerDispatcher
	)

	switch cfg.Dispatcher {
	case config.DispatcherAsynq:
		redisClient, err := store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		asynqClient, err := worker.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to create queue client: %v", err)
		}
		defer asynqClient.Close()

		flowStore = store.NewRedisStore(redisClient, "")
		dispatcher = worker.NewDispatcher(asynqClient)
	default:
		memStore := store.NewMemoryStore()
		timers = flow.NewTimerDispatcher(memStore)
		flowStore = memStore
		dispatcher = timers
	}

	st := studio.New(studio.Options{
		Store:      flowStore,
		Dispatcher: dispatcher,
		Windows:    cfg.Windows(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewServer(cfg, st).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting server", "port", cfg.Port, "dispatcher", cfg.Dispatcher)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		// In-flight deliveries land before the store goes away.
		if timers != nil {
			timers.Wait()
		}
		return err
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
