package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/sync/errgroup"

	"github.com/shenikar/railguard/internal/config"
	"github.com/shenikar/railguard/internal/events"
	v1 "github.com/shenikar/railguard/internal/handler/http/v1"
	"github.com/shenikar/railguard/internal/notification"
	"github.com/shenikar/railguard/internal/repository"
	"github.com/shenikar/railguard/internal/repository/mongostore"
	"github.com/shenikar/railguard/internal/scheduler"
	"github.com/shenikar/railguard/internal/service"
	"github.com/shenikar/railguard/internal/storage"
	"github.com/shenikar/railguard/pkg/logger"
	mongoclient "github.com/shenikar/railguard/pkg/mongo"
	"github.com/shenikar/railguard/pkg/postgres"
	redisclient "github.com/shenikar/railguard/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/railguard/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Railguard Incident API
// @version 1.0
// @description SOS reporting and incident dispatch for railway protection control rooms.
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.WithFields(logrus.Fields{"source_error": srcErr, "database_error": dbErr}).Warn("Failed to close migrate instance")
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("could not read schema version: %w", err)
	}
	log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Хранилище инцидентов
	var incidentRepo service.IncidentRepository
	switch cfg.IncidentStore {
	case config.StoreMongo:
		mongo, err := mongoclient.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongo.Disconnect(disconnectCtx); err != nil {
				log.WithError(err).Warn("Failed to disconnect from MongoDB")
			}
		}()
		incidentRepo = mongostore.NewIncidentRepository(mongo.Database(cfg.MongoDatabase), log)
		log.WithField("database", cfg.MongoDatabase).Info("Incidents are stored in MongoDB")
	default:
		incidentRepo = repository.NewIncidentRepository(dbpool)
	}
	incidentCache := repository.NewIncidentCache(redisClient, cfg.IncidentCacheTTL)
	deviceRepo := repository.NewDeviceRepository(dbpool)
	officerRepo := repository.NewOfficerRepository(dbpool)

	// Канал обновлений и очередь уведомлений
	broadcaster := events.NewRedisBroadcaster(redisClient, log)
	notifier := notification.NewRedisPublisher(redisClient)

	var audioStore storage.AudioStore
	if cfg.StorageEnabled() {
		s3Store, err := storage.NewS3Store(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to init audio storage: %v", err)
		}
		audioStore = s3Store
	} else {
		log.Warn("Audio storage is not configured, recordings will be dropped")
	}

	var whatsapp notification.WhatsAppSender
	if cfg.TwilioEnabled() {
		whatsapp = notification.NewTwilioSender(cfg)
	} else {
		log.Warn("Twilio is not configured, WhatsApp alerts are disabled")
	}

	var push notification.PushSender
	if cfg.FirebaseEnabled() {
		fcm, err := notification.NewFCMSender(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to init Firebase messaging: %v", err)
		}
		push = fcm
	} else {
		log.Warn("Firebase is not configured, push alerts are disabled")
	}

	// Инициализация сервисов
	incidentService := service.NewIncidentService(incidentRepo, incidentCache, broadcaster, notifier, audioStore, log)
	deviceService := service.NewDeviceService(deviceRepo, log)
	officerService := service.NewOfficerService(officerRepo, log)

	// Фоновые задачи
	worker := notification.NewWorker(redisClient, log, cfg, deviceService, whatsapp, push)
	watcher, err := scheduler.NewSLAWatcher(cfg.SLACheckSchedule, cfg.SLAThreshold, incidentService, log)
	if err != nil {
		log.Fatalf("Failed to init SLA watcher: %v", err)
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(incidentService, deviceService, officerService, broadcaster, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: router,
	}
	srv.RegisterOnShutdown(handler.CloseStreams)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("HTTP server started on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		return watcher.Run(gctx)
	})
	g.Go(func() error {
		// Graceful shutdown
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Server stopped with error")
		return
	}
	log.Info("Server gracefully stopped")
}
