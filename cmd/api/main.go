package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/config"
	"github.com/noah-isme/algotutor-api/internal/database"
	"github.com/noah-isme/algotutor-api/internal/handler"
	"github.com/noah-isme/algotutor-api/internal/i18n"
	"github.com/noah-isme/algotutor-api/internal/middleware"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/repository"
	"github.com/noah-isme/algotutor-api/internal/router"
	"github.com/noah-isme/algotutor-api/internal/service"
	"github.com/noah-isme/algotutor-api/internal/store"
	cloud "github.com/noah-isme/algotutor-api/pkg/cloudinary"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "algotutor-api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "development" {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.AutoMigrate(&models.ActivityLog{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	kv := repository.NewMemoryStore()
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		kv = repository.NewRedisStore(redisClient)
	} else {
		logger.Warn().Msg("redis not configured, sessions and preferences are kept in memory")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Close()
	}

	var storage service.FileStorage = unconfiguredStorage{}
	if cfg.CloudinaryConfigured() {
		storage, err = cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
			Timeout:   cfg.UploadTimeout,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
	} else {
		logger.Warn().Msg("cloudinary not configured, uploads will be rejected")
	}

	catalog, err := i18n.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load translations")
	}
	defaultLocale, ok := i18n.ParseLocale(cfg.DefaultLocale)
	if !ok {
		defaultLocale = i18n.DefaultLocale
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	state := store.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events := service.NewEventService(redisClient, cfg.EventsChannel, natsConn, logger)
	events.Start(ctx)

	activityService := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	sessionService := service.NewSessionService(repository.NewSessionRepository(kv, cfg.SessionTTL), logger)
	preferenceService := service.NewPreferenceService(repository.NewPreferenceRepository(kv), defaultLocale, logger)
	translationService := service.NewTranslationService(catalog)
	uploadService := service.NewUploadService(state, storage, validate, events, activityService, logger, service.UploadConfig{MaxSizeMB: cfg.UploadMaxSizeMB})
	directoryService := service.NewDirectoryService(state, sessionService, uploadService, catalog, validate, events, activityService, logger, service.DirectoryConfig{})
	authService := service.NewAuthService(directoryService, sessionService, validate, service.AuthConfig{Secret: cfg.JWTSecret, TTL: cfg.SessionTTL}, logger)
	lessonService := service.NewLessonService(state, catalog, validate, events, activityService, logger)
	newsService := service.NewNewsService(state, catalog, validate, events, activityService, logger)
	questionService := service.NewQuestionService(state, validate, events, activityService, logger)
	seedService := service.NewSeedService(directoryService, lessonService, newsService, service.SeedConfig{
		Enabled:       cfg.SeedEnabled,
		Token:         cfg.SeedToken,
		AdminName:     cfg.AdminName,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}, logger)

	if result, err := seedService.Bootstrap(ctx); err != nil {
		logger.Error().Err(err).Msg("bootstrap seeding failed")
	} else {
		logger.Info().Bool("admin_created", result.AdminCreated).Int("lessons", result.Lessons).Int("news", result.News).Msg("bootstrap complete")
	}

	locales := handler.NewLocaleResolver(preferenceService, catalog)

	probes := map[string]handler.Probe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	if natsConn != nil {
		probes["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return errors.New("nats disconnected")
			}
			return nil
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv == "development"})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authService, directoryService, locales, logger),
		DirectoryHandler: handler.NewDirectoryHandler(directoryService, locales, logger),
		LessonHandler:    handler.NewLessonHandler(lessonService, locales, logger),
		NewsHandler:      handler.NewNewsHandler(newsService, locales, logger),
		UploadHandler:    handler.NewUploadHandler(uploadService, locales, logger),
		QuestionHandler:  handler.NewQuestionHandler(questionService, locales, logger),
		I18nHandler:      handler.NewI18nHandler(translationService, preferenceService, locales, logger),
		EventHandler:     handler.NewEventHandler(events, logger),
		ActivityHandler:  handler.NewActivityHandler(activityService, logger),
		SeedHandler:      handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:    middleware.JWTProtected(authService),
		HealthProbes:     probes,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(ctx, app, logger)
}

// unconfiguredStorage rejects every upload when no blob store is set up.
type unconfiguredStorage struct{}

func (unconfiguredStorage) Upload(context.Context, string, io.Reader, int64, func(int)) (string, error) {
	return "", errors.New("blob storage is not configured")
}

func waitForShutdown(ctx context.Context, app *fiber.App, logger zerolog.Logger) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
