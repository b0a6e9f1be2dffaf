package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kylewspence/FinSight/internal/cache"
	"github.com/kylewspence/FinSight/internal/config"
	"github.com/kylewspence/FinSight/internal/external"
	"github.com/kylewspence/FinSight/internal/external/gemini"
	"github.com/kylewspence/FinSight/internal/external/rentcast"
	"github.com/kylewspence/FinSight/internal/handler"
	"github.com/kylewspence/FinSight/internal/middleware"
	"github.com/kylewspence/FinSight/internal/models"
	"github.com/kylewspence/FinSight/internal/repository"
	"github.com/kylewspence/FinSight/internal/service"
	"github.com/kylewspence/FinSight/internal/worker"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)

	logCloser, err := middleware.InitLogger(cfg.Log.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logCloser.Close()

	middleware.LogInfo("FinSight %s (commit %s, built %s)", Version, Commit, BuildTime)

	// Initialize database
	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()

	// Redis is optional and only backs the property details cache
	rdb, detailsCache := initRedis(ctx, cfg)

	// External providers; a nil interface disables the feature
	var propertyData external.PropertyDataProvider
	if cfg.RentCast.APIKey != "" {
		propertyData = rentcast.NewClient(cfg.RentCast.APIKey, cfg.RentCast.BaseURL, cfg.RentCast.Timeout)
	} else {
		middleware.LogInfo("Warning: RENTCAST_API_KEY not set, property lookups are disabled")
	}

	var completer external.Completer
	if cfg.LLM.APIKey != "" {
		geminiClient, err := gemini.NewClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			middleware.LogError("Failed to create Gemini client, insights will be degraded: %v", err)
		} else {
			completer = geminiClient
		}
	} else {
		middleware.LogInfo("Warning: GEMINI_API_KEY not set, insights will be degraded")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	insightRepo := repository.NewInsightRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT)
	valuationService := service.NewValuationService(propertyData, detailsCache, cfg.Redis.CacheTTL)
	propertyService := service.NewPropertyService(propertyRepo, valuationService, cfg.Maps.APIKey)
	transactionService := service.NewTransactionService(transactionRepo)
	insightService := service.NewInsightService(insightRepo, propertyRepo, completer)
	uploadService := service.NewUploadService(holdingRepo, cfg.Uploads.Dir)

	limiter := middleware.NewUserRateLimiter(cfg.RateLimit.InsightsPerMinute, cfg.RateLimit.InsightsBurst)

	router := handler.NewRouter(handler.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Property:    handler.NewPropertyHandler(propertyService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Insight:     handler.NewInsightHandler(insightService),
		Upload:      handler.NewUploadHandler(uploadService, cfg.Uploads.MaxBytes),
		RentCast:    handler.NewRentCastHandler(valuationService),
	}, middleware.AuthMiddleware(authService), handler.RouterConfig{
		Version:        Version,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		GenerateLimit:  limiter.Middleware(),
	})

	janitor := worker.NewUploadJanitor(cfg.Uploads.Dir, cfg.Uploads.Retention, time.Hour)
	go janitor.Start()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		middleware.LogInfo("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	middleware.LogInfo("Shutting down server...")
	janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		middleware.LogError("Server forced to shutdown: %v", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			middleware.LogError("Error closing Redis connection: %v", err)
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	middleware.LogInfo("Server exited properly")
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.Server.Mode == gin.ReleaseMode {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// initRedis returns a nil cache when Redis is disabled or unreachable
func initRedis(ctx context.Context, cfg *config.Config) (*redis.Client, service.DetailsCache) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisCache := cache.NewRedisCache(rdb)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		middleware.LogError("Redis unreachable at %s, caching disabled: %v", cfg.Redis.Addr(), err)
		_ = rdb.Close()
		return nil, nil
	}

	middleware.LogInfo("Redis cache enabled at %s", cfg.Redis.Addr())
	return rdb, redisCache
}
