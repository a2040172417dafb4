package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kentonium3/bake-tracker-sub002/internal/config"
	"github.com/kentonium3/bake-tracker-sub002/internal/infra"
	"github.com/kentonium3/bake-tracker-sub002/internal/router"
	"github.com/kentonium3/bake-tracker-sub002/internal/service"
	"github.com/kentonium3/bake-tracker-sub002/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TracingEnabled {
		shutdown, err := infra.InitTracing(ctx, "bake-tracker", cfg.Env, os.Stdout)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init tracing")
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to open database")
	}

	// Redis is optional: without it the cache is in-process and alerts are skipped.
	var (
		rdb   *redis.Client
		cache service.Cache
		pool  *worker.Pool
	)
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		cache = infra.NewRedisCache(rdb, ttl)

		mailer := infra.NewMailer(cfg)
		pool = worker.NewPool(rdb, map[string]worker.Handler{
			worker.JobStockAlert: worker.NewAlertWorker(mailer),
		})
		pool.Start(ctx, cfg.WorkerPoolSize)
	} else {
		cache = infra.NewMemoryCache(cfg.CacheSize, ttl)
		log.Warn().Msg("REDIS_URL not set: using in-memory cache, stock alerts disabled")
	}

	r := router.New(cfg, db, rdb, cache)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("bake tracker listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if pool != nil {
		pool.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}

// setupLogger: dev gets pretty console output, production JSON.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
