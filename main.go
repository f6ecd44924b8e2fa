package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"astromatch/internal/app"
	"astromatch/internal/config"
	"astromatch/internal/database"
	"astromatch/internal/repositories"
	"astromatch/internal/services"
	"astromatch/internal/session"
	"astromatch/pkg/logger"
	"astromatch/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func main() {
	// --- Configuration ---
	cfg := config.New()
	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDev()})

	srv, err := setup(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer srv.close()

	// --- Event consumer ---
	if srv.mq != nil {
		if err := srv.mq.ConsumeEvents(rabbitmq.LogEvent); err != nil {
			log.Error().Err(err).Msg("failed to start event consumer")
		}
	}

	// --- Start HTTP Server ---
	log.Info().Str("port", cfg.Port).Str("db", cfg.DBDriver).Msg("starting server")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.app.Listen(cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")
	if err := srv.app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}

// server is the assembled process: the HTTP app plus the clients it owns.
type server struct {
	app     *fiber.App
	mq      *rabbitmq.Client
	closers []func() error
}

func (s *server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Warn().Err(err).Msg("error while closing")
		}
	}
}

// setup constructs every client once and hands them to the app. Redis and
// RabbitMQ are optional and only dialled when configured.
func setup(ctx context.Context, cfg config.Config) (_ *server, err error) {
	srv := &server{}
	defer func() {
		if err != nil {
			srv.close()
		}
	}()

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, database.Options{})
	if err != nil {
		return nil, err
	}
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		srv.closers = append(srv.closers, sqlDB.Close)
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	store := repositories.NewGORMStore(db)
	health := map[string]app.Pinger{"database": store}

	// --- Sessions ---
	var sessions session.Store = session.NewMemoryStore()
	if cfg.RedisAddr != "" {
		client, err := session.Connect(ctx, session.RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err != nil {
			return nil, err
		}
		srv.closers = append(srv.closers, client.Close)
		sessions = session.NewRedisStore(client)
		health["redis"] = app.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
		log.Info().Str("addr", cfg.RedisAddr).Msg("sessions stored in redis")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, sessions are kept in memory")
	}

	// --- Events ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return nil, err
		}
		srv.mq = mq
		srv.closers = append(srv.closers, mq.Close)
		events = mq
		health["rabbitmq"] = app.PingFunc(func(context.Context) error { return mq.Ping() })
	}

	if cfg.AdminKey == "" {
		log.Warn().Msg("ADMIN_KEY not set, admin routes are open")
	}
	if !cfg.IsDev() && cfg.JWTSecret == "dev-secret-change-me" {
		return nil, errors.New("JWT_SECRET must be set outside development")
	}

	a, err := app.New(app.Dependencies{
		Store:      store,
		Sessions:   sessions,
		Events:     events,
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		AdminKey:   cfg.AdminKey,
		RequestLog: true,
		Health:     health,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build app: %w", err)
	}
	srv.app = a
	return srv, nil
}
