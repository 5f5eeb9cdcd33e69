// Package main is the entry point for the background worker.
//
// The worker owns the refresh-and-close cycle: it periodically pulls
// fresh solve counters from LeetCode for every linked user and, when a
// day, week or month boundary is crossed at midnight UTC, freezes
// snapshots, credits per-community winners and invalidates cached
// leaderboards.
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
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/scoring"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/infrastructure/external/leetcode"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/infrastructure/messaging"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/infrastructure/persistence/postgres"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/infrastructure/persistence/redis"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/infrastructure/scheduler"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/infrastructure/scheduler/jobs"
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
	// 1. Configuration
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Logging
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting leaderboard worker",
		slog.String("env", string(cfg.App.Environment)),
		slog.String("version", cfg.App.Version),
		slog.String("refresh_cron", cfg.Scheduler.RefreshCron),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	log.Info("connecting to database")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	if cfg.Database.MigrateOnStart {
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Redis
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis")
	redisCfg := redis.DefaultConfig()
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
	redisCfg.DialTimeout = cfg.Redis.DialTimeout
	redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
	redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

	redisCache, err := redis.NewCache(redisCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisCache.Close()
	leaderboardCache := redis.NewLeaderboardCache(redisCache)
	log.Info("Redis connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Repositories
	// ─────────────────────────────────────────────────────────────────────────
	userRepo := postgres.NewUserRepository(dbConn)
	profileRepo := postgres.NewProfileRepository(dbConn)
	serverRepo := postgres.NewServerRepository(dbConn)
	snapshotRepo := postgres.NewSnapshotRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. Event bus
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busCfg)
	defer func() { _ = eventBus.Close() }()

	subscribeEventLogging(eventBus, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. LeetCode client
	// ─────────────────────────────────────────────────────────────────────────
	judgeCfg := leetcode.DefaultClientConfig(cfg.LeetCode.BaseURL)
	judgeCfg.Timeout = cfg.LeetCode.RequestTimeout
	judgeCfg.Logger = log
	judgeCfg.Debug = cfg.App.Debug
	judgeCfg.RateLimiterConfig.RequestsPerSecond = cfg.LeetCode.RequestsPerSecond
	judgeCfg.RateLimiterConfig.BurstSize = cfg.LeetCode.Burst
	judgeCfg.RetryConfig.MaxRetries = cfg.LeetCode.MaxRetries
	judgeCfg.RetryConfig.InitialBackoff = cfg.LeetCode.RetryBaseDelay
	judgeCfg.RetryConfig.MaxBackoff = cfg.LeetCode.RetryMaxDelay
	judgeCfg.CircuitBreakerConfig.FailureThreshold = cfg.LeetCode.CircuitBreakerThreshold
	judgeCfg.CircuitBreakerConfig.Timeout = cfg.LeetCode.CircuitBreakerTimeout
	judgeClient := leetcode.NewClient(judgeCfg)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. Application layer
	// ─────────────────────────────────────────────────────────────────────────
	resolver := scoring.NewResolver(snapshotRepo, profileRepo, log)

	closeHandler := command.NewClosePeriodsHandler(
		userRepo,
		profileRepo,
		serverRepo,
		snapshotRepo,
		judgeClient,
		resolver,
		leaderboardCache,
		eventBus,
		log,
		command.ClosePeriodsConfig{
			Concurrency:    cfg.Scheduler.RefreshConcurrency,
			RefreshTimeout: cfg.Scheduler.RefreshTimeout,
		},
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. Scheduler
	// ─────────────────────────────────────────────────────────────────────────
	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler is disabled, worker will idle")
	}

	sched := scheduler.NewScheduler(log)

	if cfg.Scheduler.Enabled {
		closeJob := jobs.NewClosePeriodsJob(closeHandler, log)
		schedule, err := scheduler.ParseSchedule(cfg.Scheduler.RefreshCron)
		if err != nil {
			return fmt.Errorf("invalid SCHEDULER_REFRESH_CRON: %w", err)
		}

		if err := sched.Register(closeJob, schedule); err != nil {
			return fmt.Errorf("failed to register job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() { _ = sched.Stop() }()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("leaderboard worker is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("shutdown completed")
	return nil
}

// subscribeEventLogging attaches observers for the domain events the
// refresh cycle emits. Winner announcements are logged here; a chat
// integration would subscribe the same way.
func subscribeEventLogging(bus *messaging.InMemoryEventBus, log *slog.Logger) {
	_ = bus.Subscribe(shared.EventWinnersDeclared, shared.EventHandlerFunc(func(event shared.Event) error {
		e, ok := event.(shared.WinnersDeclaredEvent)
		if !ok {
			return nil
		}
		log.Info("winners declared",
			logger.ServerID(e.ServerID),
			logger.Period(e.PeriodKind),
			logger.Boundary(e.Boundary),
			slog.Any("winner_ids", e.WinnerIDs),
			slog.Int("top_score", e.TopScore),
		)
		return nil
	}))

	_ = bus.Subscribe(shared.EventPeriodClosed, shared.EventHandlerFunc(func(event shared.Event) error {
		e, ok := event.(shared.PeriodClosedEvent)
		if !ok {
			return nil
		}
		log.Info("period closed",
			logger.Period(e.PeriodKind),
			logger.Boundary(e.Boundary),
			slog.Int("snapshots", e.Snapshots),
		)
		return nil
	}))
}

func setupLogger(cfg *config.Config) *slog.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	opts.Format = logger.ParseFormat(cfg.Observability.LogFormat)
	opts.AddSource = cfg.Observability.AddSource

	log := logger.New(opts)
	slog.SetDefault(log)
	return log
}
