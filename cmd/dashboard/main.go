package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/eurolife-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/eurolife-dashboard/internal/adapter/kafka"
	redisadapter "github.com/couchcryptid/eurolife-dashboard/internal/adapter/redis"
	"github.com/couchcryptid/eurolife-dashboard/internal/adapter/source"
	"github.com/couchcryptid/eurolife-dashboard/internal/config"
	"github.com/couchcryptid/eurolife-dashboard/internal/dashboard"
	"github.com/couchcryptid/eurolife-dashboard/internal/explorer"
	"github.com/couchcryptid/eurolife-dashboard/internal/observability"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := source.NewFetcher(cfg.FetchTimeout, logger, metrics)
	loader := source.NewLoader(fetcher, source.Sources{
		Satisfaction: cfg.SatisfactionSource,
		Income:       cfg.IncomeSource,
		Geo:          cfg.GeoSource,
		Aliases:      cfg.AliasTablePath,
	}, logger)

	// Session store (Redis when REDIS_URL is set, otherwise in memory).
	checks := httpadapter.Checks{}
	var sessions dashboard.SessionStore
	if cfg.RedisURL != "" {
		client, err := redisadapter.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		store := redisadapter.NewSessionStore(client, cfg.SessionTTL)
		sessions = store
		checks = append(checks, store)
		logger.Info("redis session store enabled", "ttl", cfg.SessionTTL)
	} else {
		sessions = dashboard.NewMemoryStore(cfg.SessionTTL)
		logger.Info("in-memory session store", "ttl", cfg.SessionTTL)
	}

	// Dataset export (feature-flagged via KAFKA_ENABLED).
	opts := dashboard.Options{
		Build: dashboard.BuildOptions{
			StandardizeCodes: cfg.StandardizeCodes,
			TargetYears:      cfg.TargetYears,
			DefaultYear:      cfg.DefaultYear,
		},
		SelectionCap: cfg.SelectionCap,
	}
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		opts.Publisher = publisher
		logger.Info("kafka export enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	ctrl := dashboard.NewController(loader, sessions, opts, logger, metrics)
	checks = append(checks, ctrl)
	tables := explorer.NewStore(cfg.ExplorerMaxTables, metrics)

	api := httpadapter.NewHandler(ctrl, tables, checks, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, api.Routes(), logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Initial load. On failure the service stays up but not ready until a
	// reload through the API succeeds.
	if _, err := ctrl.Reload(ctx); err != nil {
		logger.Error("initial dataset load failed", "error", err)
	}

	if cfg.RefreshInterval > 0 {
		go func() {
			if err := dashboard.NewRefresher(ctrl, cfg.RefreshInterval, nil, logger).Run(ctx); err != nil {
				logger.Error("dataset refresh error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
