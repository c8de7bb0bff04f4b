package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/enersim/energy-simulator/internal/api"
	"github.com/enersim/energy-simulator/internal/auth"
	"github.com/enersim/energy-simulator/internal/core/ports"
	"github.com/enersim/energy-simulator/internal/infrastructure/config"
	mongodb "github.com/enersim/energy-simulator/internal/infrastructure/db/mongo"
	redisdb "github.com/enersim/energy-simulator/internal/infrastructure/db/redis"
	"github.com/enersim/energy-simulator/internal/infrastructure/queue"
	"github.com/enersim/energy-simulator/internal/ratelimit"
	"github.com/enersim/energy-simulator/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	codec, err := auth.NewCodec(cfg.JWT)
	if err != nil {
		log.Fatal().Err(err).Msg("token codec construction failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// --- Redis (optional: only the distributed login limiter needs it) ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, falling back to in-process rate limiting")
		rdb = nil
	} else {
		defer rdb.Close()
	}

	var limiter ports.LoginRateLimiter
	if cfg.RateLimit.UseRedis && rdb != nil {
		limiter = redisdb.NewFixedWindowLimiter(rdb, cfg.RateLimit.MaxAttempts, cfg.RateLimit.WindowSeconds)
	} else {
		limiter = ratelimit.NewFixedWindow(cfg.RateLimit.MaxAttempts, cfg.RateLimit.WindowSeconds)
	}

	// --- Audit trail ---
	dispatcher := queue.NewAuditDispatcher(0, mongodb.NewAuditRepository(db), log)
	dispatcher.Start(ctx)

	e := api.NewRouter(api.Dependencies{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		Codec:   codec,
		Limiter: limiter,
		Audit:   dispatcher,
		Log:     log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
