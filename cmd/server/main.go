// Package main is the entry point for the REST API server.
//
// The server exposes leaderboard reads, account linking and preference
// updates, plus an authenticated admin surface for forcing a
// refresh-and-close cycle outside the scheduled cadence.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/config"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/application/command"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/application/query"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/scoring"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/infrastructure/external/leetcode"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/infrastructure/messaging"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/infrastructure/persistence/postgres"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/infrastructure/persistence/redis"
	httpapi "github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/interface/http"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration & logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	opts.Format = logger.ParseFormat(cfg.Observability.LogFormat)
	opts.AddSource = cfg.Observability.AddSource
	log := logger.New(opts)
	slog.SetDefault(log)

	log.Info("starting leaderboard API server",
		slog.String("env", string(cfg.App.Environment)),
		slog.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if cfg.Database.MigrateOnStart {
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Redis
	// ─────────────────────────────────────────────────────────────────────────
	redisCfg := redis.DefaultConfig()
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.MinIdleConns = cfg.Redis.MinIdleConns

	redisCache, err := redis.NewCache(redisCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisCache.Close()
	leaderboardCache := redis.NewLeaderboardCache(redisCache)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Repositories, clients, event bus
	// ─────────────────────────────────────────────────────────────────────────
	userRepo := postgres.NewUserRepository(dbConn)
	profileRepo := postgres.NewProfileRepository(dbConn)
	serverRepo := postgres.NewServerRepository(dbConn)
	snapshotRepo := postgres.NewSnapshotRepository(dbConn)

	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busCfg)
	defer func() { _ = eventBus.Close() }()

	judgeCfg := leetcode.DefaultClientConfig(cfg.LeetCode.BaseURL)
	judgeCfg.Timeout = cfg.LeetCode.RequestTimeout
	judgeCfg.Logger = log
	judgeClient := leetcode.NewClient(judgeCfg)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Application layer
	// ─────────────────────────────────────────────────────────────────────────
	resolver := scoring.NewResolver(snapshotRepo, profileRepo, log)

	leaderboardHandler := query.NewGetLeaderboardHandler(
		userRepo, profileRepo, serverRepo, resolver, leaderboardCache, log)

	linkHandler := command.NewLinkAccountHandler(
		userRepo, profileRepo, serverRepo, snapshotRepo, judgeClient, eventBus, log)
	unlinkHandler := command.NewUnlinkAccountHandler(
		userRepo, snapshotRepo, eventBus, log)
	prefsHandler := command.NewUpdatePreferencesHandler(profileRepo, log)

	// The admin close endpoint shares the same orchestrator the worker
	// runs on schedule; re-running it is safe.
	closeHandler := command.NewClosePeriodsHandler(
		userRepo, profileRepo, serverRepo, snapshotRepo,
		judgeClient, resolver, leaderboardCache, eventBus, log,
		command.ClosePeriodsConfig{
			Concurrency:    cfg.Scheduler.RefreshConcurrency,
			RefreshTimeout: cfg.Scheduler.RefreshTimeout,
		},
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := httpapi.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	httpCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	httpCfg.EnableCORS = cfg.HTTP.EnableCORS
	httpCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpCfg.AdminTokenHash = cfg.HTTP.AdminTokenHash

	srv := httpapi.NewServer(httpCfg, httpapi.Dependencies{
		GetLeaderboard:    leaderboardHandler,
		LinkAccount:       linkHandler,
		UnlinkAccount:     unlinkHandler,
		UpdatePreferences: prefsHandler,
		ClosePeriods:      closeHandler,
		HealthCheck: func(ctx context.Context) error {
			if err := dbConn.Ping(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			if err := redisCache.Ping(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		},
		Logger: log,
	})

	errCh := srv.StartAsync()
	log.Info("API server is running", slog.String("address", srv.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 7. Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("shutdown completed")
	return nil
}
