package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/backoffice/users-api/internal/api"
	"github.com/backoffice/users-api/internal/core/service"
	"github.com/backoffice/users-api/internal/infrastructure/config"
	"github.com/backoffice/users-api/internal/infrastructure/db/postgres"
	"github.com/backoffice/users-api/internal/infrastructure/db/redis"
	"github.com/backoffice/users-api/internal/infrastructure/queue"
	"github.com/backoffice/users-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Development(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Postgres ---
	pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}
	log.Info().Msg("migrations applied")

	// --- Redis (optional: login throttling only) ---
	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
	} else {
		log.Warn().Msg("redis not configured, login throttling disabled")
	}

	// --- Repositories ---
	userRepo := postgres.NewUserRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)

	// --- Audit trail workers ---
	dispatcher := queue.NewAuditDispatcher(0, auditRepo, log)
	dispatcher.Start(ctx)

	// --- Services ---
	opts := service.Options{
		BcryptCost: cfg.BcryptCost,
		JWTSecret:  cfg.JWTSecret,
		Audit:      dispatcher,
	}
	if rdb != nil {
		opts.Limiter = redis.NewLoginLimiter(rdb, 0, 0)
	}
	userService := service.NewUserService(userRepo, log, opts)
	roleService := service.NewRoleService(roleRepo)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Users:       userService,
		Roles:       roleService,
		Audit:       auditRepo,
		Pool:        pool,
		Redis:       rdb,
		JWTSecret:   cfg.JWTSecret,
		Development: cfg.Development(),
		Log:         log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting http server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
