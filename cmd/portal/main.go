// Command portal serves the NutriData web portal: login, session handling
// and role dashboards in front of the practice API.
//
//	@title        NutriData Portal
//	@version      1.0
//	@description  Session, login and role routing front door of the NutriData practice platform.
//	@BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/nutridata/portal/internal/api"
	"github.com/nutridata/portal/internal/api/handler"
	"github.com/nutridata/portal/internal/core/service"
	"github.com/nutridata/portal/internal/infrastructure/config"
	mongodb "github.com/nutridata/portal/internal/infrastructure/db/mongo"
	redisdb "github.com/nutridata/portal/internal/infrastructure/db/redis"
	"github.com/nutridata/portal/internal/infrastructure/gateway/practiceapi"
	"github.com/nutridata/portal/internal/infrastructure/queue"
	"github.com/nutridata/portal/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.OptionsFor("", "info"))
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.Init(logger.OptionsFor(cfg.Env, cfg.LogLevel))

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "nutridata-portal",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	auditRepo := mongodb.NewAuditRepository(db, cfg.Audit.Retention)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure audit indexes")
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditRepo, log)
	dispatcher.Start(workerCtx)

	authService := service.NewAuthService(
		practiceapi.New(practiceapi.Config{BaseURL: cfg.Upstream.BaseURL, Timeout: cfg.Upstream.Timeout}),
		redisdb.NewSessionStore(rdb, cfg.Session.TTL),
		service.AuthOptions{
			SessionTTL: cfg.Session.TTL,
			Tokens:     service.NewTokenInspector(cfg.Upstream.JWTSecret),
			Audit:      dispatcher,
			Throttle:   redisdb.NewResetThrottle(rdb, cfg.Session.ResetWindow),
			Logger:     log,
		},
	)

	e, err := api.NewRouter(api.Options{
		Config:      cfg,
		Logger:      log,
		AuthService: authService,
		Checks: map[string]handler.Check{
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			"mongodb": func(ctx context.Context) error {
				return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
			},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	// Flush queued audit events once no request can enqueue more.
	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("portal stopped")
}
