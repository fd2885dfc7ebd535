package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blockedby/dosimetria-portal/internal/access"
	"github.com/blockedby/dosimetria-portal/internal/config"
	"github.com/blockedby/dosimetria-portal/internal/database"
	"github.com/blockedby/dosimetria-portal/internal/dispatcher"
	"github.com/blockedby/dosimetria-portal/internal/logger"
	"github.com/blockedby/dosimetria-portal/internal/migrator"
	"github.com/blockedby/dosimetria-portal/internal/models"
	"github.com/blockedby/dosimetria-portal/internal/nats"
	"github.com/blockedby/dosimetria-portal/internal/publisher"
	"github.com/blockedby/dosimetria-portal/internal/repository"
	"github.com/blockedby/dosimetria-portal/internal/web"
	"github.com/blockedby/dosimetria-portal/internal/web/handlers"
	"github.com/blockedby/dosimetria-portal/internal/web/middleware"
	"github.com/blockedby/dosimetria-portal/migrations"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Msg("starting dosimetry portal")

	// 3. Setup context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Migrations run as the service role
	if cfg.MigrateOnStart {
		if cfg.DatabaseServiceURL == "" {
			log.Fatal().Msg("MIGRATE_ON_START requires DATABASE_SERVICE_URL")
		}
		m, err := migrator.NewWithFS(migrations.FS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create migrator")
		}
		if err := m.Up(ctx, cfg.DatabaseServiceURL); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// 5. Connect both store handles
	handles, err := database.Open(ctx, cfg.DatabaseURL, cfg.DatabaseServiceURL, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer handles.Close()

	// 6. Connect to NATS
	var pub dispatcher.EventPublisher
	nc, err := nats.New(ctx, cfg.NatsURL)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to nats, publishing disabled")
	} else {
		defer nc.Close()
		if err := nc.EnsureStream(ctx, nats.StreamDispatches, []string{models.SubjectDispatchCreated}); err != nil {
			log.Warn().Err(err).Msg("failed to ensure dispatch stream")
		}
		pub = publisher.NewNATSPublisher(nc)
	}

	// 7. Intake rate limiter: shared through Redis when available
	var limiter middleware.Limiter = middleware.NewMemoryLimiter(cfg.IntakeRatePerMinute)
	if cfg.RedisURL != "" {
		if rc, err := newRedis(ctx, cfg.RedisURL); err != nil {
			log.Warn().Err(err).Msg("failed to connect to redis, using in-memory rate limit")
		} else {
			defer rc.Close()
			limiter = middleware.NewRedisLimiter(rc, cfg.IntakeRatePerMinute)
		}
	}

	// 8. Repositories
	dispatchesRepo := repository.NewDispatchesRepository(handles, log.Component("dispatches"))
	profilesRepo := repository.NewProfilesRepository(handles.Elevated("role checks read every profile").GORM)

	// 9. Intake service
	if !cfg.Mail.Complete() {
		log.Warn().Msg("mail settings incomplete, dispatch notifications will be skipped")
	}
	composer, err := dispatcher.NewComposer("")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load notification templates")
	}
	notifier := dispatcher.NewEmailNotifier(cfg.Mail, nil, composer, log.Component("mailer"))
	intake := dispatcher.NewService(dispatchesRepo, notifier, pub, log.Component("intake"))

	// 10. Templates
	tmpl := web.NewTemplateEngine(cfg.TemplatesDir, false, web.PageGlobals{
		StoreURL: cfg.StorePublicURL,
		StoreKey: cfg.StorePublicKey,
	})
	if err := tmpl.Load(); err != nil {
		log.Fatal().Err(err).Msg("failed to load templates")
	}

	// 11. Server
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, staff endpoints will reject every request")
	}
	server := web.NewServer(&web.Config{
		Port:        cfg.HTTPPort,
		StaticDir:   cfg.StaticDir,
		CORSOrigins: cfg.CORSOrigins,
		JWTSecret:   []byte(cfg.JWTSecret),
		Profiles:    profilesRepo,
		Limiter:     limiter,
		TrustProxy:  cfg.TrustProxy,
		Health:      handles.Normal().Ping,
	})

	// 12. Register all handlers
	server.RegisterPagesHandler(handlers.NewPagesHandler(tmpl), handlers.PlaceholderSections)
	server.RegisterDispatchHandler(handlers.NewDispatchHandler(intake, dispatchesRepo))
	server.RegisterSessionHandler(handlers.NewSessionHandler(access.Default()))

	// 13. Start Server
	log.Info().Int("port", cfg.HTTPPort).Msg("starting web server")
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	// 14. Wait for shutdown
	<-ctx.Done()
	log.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("shutdown complete")
}

func newRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
