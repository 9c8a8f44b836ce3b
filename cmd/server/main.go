package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/screenpulse/screenpulse/internal/audit"
	"github.com/screenpulse/screenpulse/internal/config"
	"github.com/screenpulse/screenpulse/internal/infrastructure/objectstore"
	"github.com/screenpulse/screenpulse/internal/infrastructure/postgres"
	"github.com/screenpulse/screenpulse/internal/infrastructure/redis"
	"github.com/screenpulse/screenpulse/internal/logger"
	"github.com/screenpulse/screenpulse/internal/retention"
	"github.com/screenpulse/screenpulse/internal/security"
	"github.com/screenpulse/screenpulse/internal/service"
	"github.com/screenpulse/screenpulse/internal/transport/rest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	if cfg.LogLevel != "" {
		_ = os.Setenv("LOG_LEVEL", cfg.LogLevel)
	}

	logger.Init()
	log := logger.Logger.With().
		Str("service", "screenpulse").
		Str("env", cfg.AppEnv).
		Logger()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Postgres ----
	dbPool, err := pgxpool.New(rootCtx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres pool create failed")
	}
	defer dbPool.Close()

	{
		pingCtx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		defer cancel()
		if err := dbPool.Ping(pingCtx); err != nil {
			log.Fatal().Err(err).Msg("postgres ping failed")
		}
		log.Info().Msg("postgres connected")
	}

	repo := postgres.New(dbPool)

	// ---- Redis ----
	cache := redis.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	{
		pingCtx, cancel := context.WithTimeout(rootCtx, 2*time.Second)
		defer cancel()
		// Rate limiting fails open, so a dead redis degrades instead of killing startup.
		if err := cache.Client.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed (continuing)")
		} else {
			log.Info().Msg("redis connected")
		}
	}

	// ---- Object storage ----
	blobs, err := objectstore.New(rootCtx, objectstore.Options{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    cfg.S3UsePathStyle,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("object store init failed")
	}
	if cfg.AppEnv == "dev" {
		if err := blobs.EnsureBucket(rootCtx); err != nil {
			log.Warn().Err(err).Msg("bucket ensure failed (continuing)")
		}
	}

	// ---- Application services ----
	aud := audit.New(log)
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens := security.NewHS256(cfg.JWTSecret, cfg.JWTIssuer)

	policy := retention.New(postgres.NewScreenshotRetentionStore(repo), blobs, cfg.ScreenshotCap, log)

	authSvc := service.NewAuthService(repo, hasher, tokens, cfg.AccessTTL, aud)
	deviceSvc := service.NewDeviceService(repo, aud)
	syncSvc := service.NewSyncService(repo, aud)
	analyticsSvc := service.NewAnalyticsService(repo, cache)
	screenshotSvc := service.NewScreenshotService(repo, repo, blobs, policy, aud, log)

	h := rest.NewHandler(authSvc, deviceSvc, syncSvc, analyticsSvc, screenshotSvc)

	deps := rest.RouterDeps{
		Handler:   h,
		Verifier:  tokens,
		JWTIssuer: cfg.JWTIssuer,
	}
	if cfg.RLEnabled {
		deps.Limiter = cache
		deps.RLLimit = cfg.RLLimit
		deps.RLWindow = cfg.RLWindow
	}
	httpHandler := rest.NewRouter(deps)

	// ---- Outbox worker (sync.completed events) ----
	if cfg.OutboxEnabled {
		repo.StartOutboxWorker(rootCtx, cfg.RabbitURL, cfg.RabbitExchange)
		log.Info().Msg("outbox worker started")
	}

	// ---- HTTP server ----
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server crashed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("shutdown complete")
}
