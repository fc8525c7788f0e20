package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-stats-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/config"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/workers"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/logger"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/metrics"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}

	os.Exit(exitCode(log, run(cfg, log)))
}

// exitCode flushes log before the process exits, so the error line reaches
// buffered sinks such as the rotating log file.
func exitCode(log *zap.Logger, err error) int {
	code := 0
	if err != nil {
		log.Error("server stopped with error", zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	return code
}

func run(cfg *config.Config, log *zap.Logger) error {
	startTime := time.Now()
	gin.SetMode(cfg.Server.Mode)
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("connecting to database", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.Name))

	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if cfg.Database.AutoMigrate {
		if err := repository.EnsureSchema(ctx, db); err != nil {
			return err
		}
		log.Info("schema ensured")
	}

	var habitRepo domain.HabitRepository = repository.NewPostgresHabitRepository(db)
	entryRepo := repository.NewPostgresEntryRepository(db)

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, running without cache and rate limiting", zap.Error(err))
		} else {
			defer rdb.Close()
			habitRepo = repository.NewCachedHabitRepository(habitRepo, rdb, repository.DefaultHabitCacheTTL, log)
		}
	}

	pool := workers.NewPool(cfg.Stats.WorkerConcurrency, log)
	statsService := services.NewStatsService(habitRepo, entryRepo, pool, log)
	statsHandler := adapterHTTP.NewStatsHandler(statsService, log, cfg.Stats.DefaultWindowDays, cfg.Stats.MaxWindowDays)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		StatsHandler:   statsHandler,
		DB:             db,
		Redis:          rdb,
		Logger:         log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      cfg.RateLimit.MaxRequests,
		RateWindow:     time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		StartTime:      startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("kanso stats engine listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("stop signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
