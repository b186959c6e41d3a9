package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"encomendas_backend/database"
	"encomendas_backend/internal/algorithms"
	"encomendas_backend/internal/auth"
	"encomendas_backend/internal/cache"
	"encomendas_backend/internal/config"
	"encomendas_backend/internal/handlers"
	"encomendas_backend/internal/imageprocessor"
	"encomendas_backend/internal/labelreader"
	"encomendas_backend/internal/logger"
	"encomendas_backend/internal/messaging"
	"encomendas_backend/internal/metrics"
	"encomendas_backend/internal/middleware"
	"encomendas_backend/internal/repositories"
	"encomendas_backend/internal/routes"
	"encomendas_backend/internal/services"
	"encomendas_backend/internal/storage"
	"encomendas_backend/internal/validator"
	"encomendas_backend/internal/workers"
	"encomendas_backend/pkg/apperrors"
	"encomendas_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Run поднимает HTTP сервер, websocket хаб и воркер подтверждений и ждет SIGINT/SIGTERM
func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	isProduction := cfg.Server.Env == "production"
	apperrors.SetDebug(!isProduction)
	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Connecting to database...")
	gormDB, err := database.Connect(cfg.Database.DSN, !isProduction)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Serve(ctx, cfg, gormDB); err != nil {
		logger.Fatal("Server error", "error", err)
	}
	logger.Info("Server stopped")
}

// Serve собирает зависимости и работает до отмены ctx
func Serve(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) error {
	if cfg.Auth.JWTSecret == "" {
		return auth.ErrEmptySecret
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	storageInstance, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		UseSSL:     cfg.Storage.UseSSL,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	hub := ws.NewHub()

	// 1. Инициализируем сервисы
	serviceContainer := initializeServices(ctx, cfg, storageInstance, hub, appMetrics)

	// 2. Инициализируем хэндлеры
	appHandlers := initializeHandlers(cfg, serviceContainer, storageInstance)
	wsHandler := ws.NewWebSocketHandler(hub, cfg.Server.AllowedOrigins)

	// 3. Инициализируем Gin и маршруты
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	ginRouter := initializeGinRouter(cfg, gormDB, appMetrics)
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, tokens, registry)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: ginRouter,
	}

	confirmationWorker := workers.NewConfirmationWorker(
		gormDB,
		serviceContainer.PackageService,
		cfg.Workers.ConfirmationInterval,
		cfg.Workers.ConfirmationBatch,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return confirmationWorker.Run(gctx) })
	g.Go(func() error {
		logger.Info(fmt.Sprintf("🚀 Server starting on %s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("Shutting down server...")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func initializeServices(
	ctx context.Context,
	cfg *config.Config,
	storageInstance storage.Storage,
	publisher services.EventPublisher,
	appMetrics *metrics.Metrics,
) *services.ServiceContainer {
	// --- Инициализация репозиториев ---
	condominiumRepo := repositories.NewCondominiumRepository()
	residentRepo := repositories.NewResidentRepository()
	packageRepo := repositories.NewPackageRepository()

	residentCache := initializeResidentCache(ctx, cfg)
	processor := imageprocessor.NewProcessor(cfg.Upload.ImageQuality)
	matcher := algorithms.NewResidentMatcher(cfg.Matcher.Apply(algorithms.DefaultPolicy()))

	reader, err := labelreader.New(ctx, labelreader.Config{
		Provider:   cfg.AI.Provider,
		GatewayURL: cfg.AI.GatewayURL,
		APIKey:     cfg.AI.APIKey,
		Model:      cfg.AI.Model,
		Timeout:    cfg.AI.Timeout,
	})
	if err != nil {
		logger.Warn("Label reader disabled", "provider", cfg.AI.Provider, "error", err)
		reader = nil
	}

	var messenger messaging.Provider
	twilio, err := messaging.NewTwilioProvider(messaging.TwilioConfig{
		AccountSID:       cfg.Twilio.AccountSID,
		AuthToken:        cfg.Twilio.AuthToken,
		WhatsAppFrom:     cfg.Twilio.WhatsAppFrom,
		PickupContentSID: cfg.Twilio.PickupContentSID,
		BaseURL:          cfg.Twilio.BaseURL,
	}, messaging.NewTemplateManager())
	if err != nil {
		logger.Warn("--- Twilio не настроен. WhatsApp сообщения только пишутся в лог. ---")
		messenger = LogMessenger{}
	} else {
		messenger = twilio
	}

	// --- Инициализация сервисов ---
	residentService := services.NewResidentService(residentRepo, residentCache)
	labelService := services.NewLabelService(reader, residentService, matcher, processor, appMetrics)
	packageService := services.NewPackageService(services.PackageServiceConfig{
		PackageRepo:     packageRepo,
		ResidentRepo:    residentRepo,
		CondominiumRepo: condominiumRepo,
		Storage:         storageInstance,
		Bucket:          cfg.Storage.Bucket,
		SignedURLTTL:    cfg.Storage.SignedURLTTL,
		Processor:       processor,
		Messenger:       messenger,
		Publisher:       publisher,
		Metrics:         appMetrics,
	})
	condominiumService := services.NewCondominiumService(condominiumRepo)

	return &services.ServiceContainer{
		ResidentService:    residentService,
		LabelService:       labelService,
		PackageService:     packageService,
		CondominiumService: condominiumService,
	}
}

// initializeResidentCache - без REDIS_URL или при недоступном redis работаем без кэша
func initializeResidentCache(ctx context.Context, cfg *config.Config) cache.ResidentCache {
	if cfg.Redis.URL == "" {
		logger.Info("Redis not configured, resident cache disabled")
		return cache.NoopResidentCache{}
	}

	client, err := cache.NewRedisClient(cfg.Redis.URL)
	if err != nil {
		logger.Warn("Resident cache disabled", "error", err)
		return cache.NoopResidentCache{}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, resident cache disabled", "error", err)
		_ = client.Close()
		return cache.NoopResidentCache{}
	}

	logger.Info("Resident cache initialized", "ttl", cfg.Redis.ResidentTTL)
	return cache.NewRedisResidentCache(client, cfg.Redis.ResidentTTL)
}

func initializeHandlers(cfg *config.Config, services *services.ServiceContainer, storageInstance storage.Storage) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator, handlers.UploadLimits{
		MaxSize:      cfg.Upload.MaxSize,
		AllowedTypes: cfg.Upload.AllowedTypes,
	})

	return &handlers.AppHandlers{
		ResidentHandler:    handlers.NewResidentHandler(baseHandler, services.ResidentService),
		LabelHandler:       handlers.NewLabelHandler(baseHandler, services.LabelService),
		PackageHandler:     handlers.NewPackageHandler(baseHandler, services.PackageService),
		CondominiumHandler: handlers.NewCondominiumHandler(baseHandler, services.CondominiumService),
		FileHandler:        handlers.NewFileHandler(baseHandler, storageInstance, cfg.Storage.Bucket),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB, appMetrics *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(appMetrics))
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins...))
	router.Use(middleware.DBMiddleware(db))
	router.MaxMultipartMemory = cfg.Upload.MaxSize + (1 << 20)
	return router
}
