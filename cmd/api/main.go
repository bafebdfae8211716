// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the yamdb HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire the token service and the mail backend.
//  7. Wire domain services and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/yamdb/internal/api"
	"github.com/taibuivan/yamdb/internal/core/reference"
	"github.com/taibuivan/yamdb/internal/core/review"
	"github.com/taibuivan/yamdb/internal/core/title"
	"github.com/taibuivan/yamdb/internal/platform/config"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/mailer"
	"github.com/taibuivan/yamdb/internal/platform/migration"
	pgstore "github.com/taibuivan/yamdb/internal/platform/postgres"
	redisstore "github.com/taibuivan/yamdb/internal/platform/redis"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/account"
	"github.com/taibuivan/yamdb/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("[yamdb] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("mailer", cfg.MailerBackend),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Tokens & Mail ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	mail, closeMail, err := newMailer(cfg, log)
	must(log, err, "initialize mailer")
	defer closeMail()

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	authService := auth.NewService(
		userRepository,
		auth.NewConfirmationRepository(pool),
		auth.NewAttemptLimiter(rdb),
		jwtSvc,
		mail,
		auth.Options{
			CodeSecret:    cfg.CodeSecret,
			MailFrom:      cfg.MailerFrom,
			TokenTTL:      cfg.AccessTokenTTL,
			MaxAttempts:   cfg.ExchangeMaxAttempts,
			AttemptWindow: cfg.ExchangeAttemptWindow,
		},
		log,
	)

	if cfg.BootstrapAdminUsername != "" {
		_, err := authService.EnsureSuperuser(startupCtx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminEmail)
		must(log, err, "bootstrap superuser")
	}

	accountService := account.NewService(userRepository, log)

	categoryService := reference.NewService(reference.NewPostgresRepository(pool, reference.KindCategory), reference.KindCategory, log)
	genreService := reference.NewService(reference.NewPostgresRepository(pool, reference.KindGenre), reference.KindGenre, log)

	titleService := title.NewService(title.NewPostgresRepository(pool), categoryService, genreService, log)
	reviewService := review.NewService(review.NewReviewRepository(pool), review.NewCommentRepository(pool), log)

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(log,
		api.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		api.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Auth:       auth.NewHandler(authService),
		Account:    account.NewHandler(accountService),
		Categories: reference.NewHandler(categoryService),
		Genres:     reference.NewHandler(genreService),
		Titles:     title.NewHandler(titleService),
		Reviews:    review.NewHandler(reviewService),
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	server := api.NewServer(rootCtx, api.Options{
		Port:     cfg.ServerPort,
		CORS:     cfg,
		Verifier: jwtSvc,
		Loader:   authService,
	}, log, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// newLogger returns the JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String(constants.FieldApp, constants.AppName))
}

// newMailer selects the confirmation mail backend. The returned func releases it.
func newMailer(cfg *config.Config, log *slog.Logger) (mailer.Mailer, func(), error) {
	if cfg.MailerBackend != config.MailerAMQP {
		return mailer.NewLogMailer(log), func() {}, nil
	}

	amqpMailer, err := mailer.NewAMQPMailer(cfg.AMQPURL, cfg.AMQPMailQueue, log)
	if err != nil {
		return nil, nil, err
	}

	return amqpMailer, func() {
		if cerr := amqpMailer.Close(); cerr != nil {
			log.Error("amqp close error", slog.Any("error", cerr))
		}
	}, nil
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
