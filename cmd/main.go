package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tesseract-Nexus/go-shared/secrets"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"sku-reconciliation-service/internal/config"
	"sku-reconciliation-service/internal/database"
	"sku-reconciliation-service/internal/handlers"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/middleware"
	"sku-reconciliation-service/internal/repository"
	"sku-reconciliation-service/internal/retry"
	"sku-reconciliation-service/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	if cfg.IsProduction() {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	profile, err := config.LoadMatchingProfile(cfg.MatchingProfilePath)
	if err != nil {
		log.Fatalf("Failed to load matching profile: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Printf("Warning: Auto-migration failed: %v", err)
	} else {
		log.Println("Database models migrated")
	}

	redisClient := connectRedis(cfg.RedisURL)

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(db)
	runRepo := repository.NewRunRepository(db, redisClient, cfg.RunCacheTTL)
	historyRepo := repository.NewHistoryRepository(db)

	// Initialize services
	workers := cfg.MatchWorkers
	if profile.Workers > 0 {
		workers = profile.Workers
	}
	engine := matching.NewEngine(logger, matching.WithWorkers(workers))
	sem := services.NewTenantSemaphore(&services.RunConcurrencyConfig{
		MaxConcurrentRuns: cfg.MaxConcurrentRuns,
		RunTimeout:        cfg.RunTimeout,
		QueueTimeout:      time.Minute,
	})

	auditService := services.NewAuditService(db)
	importService := services.NewImportService(catalogRepo, auditService, profile.Columns, logger)
	matchService := services.NewMatchService(catalogRepo, runRepo, auditService, engine, sem, retry.NewRetrier(nil), logger)
	pricingService := services.NewPricingService(logger)
	exportService := services.NewExportService(auditService, logger)
	listingService := services.NewListingService()
	historyService := services.NewHistoryService(matchService, historyRepo, auditService, logger)
	qualityService := services.NewQualityService(matchService, runRepo, auditService, logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(readinessChecks(db, redisClient), matchService.Stats)
	catalogHandler := handlers.NewCatalogHandler(importService, matchService, listingService, cfg.UploadMaxBytes)
	runHandler := handlers.NewRunHandler(matchService, pricingService, exportService, listingService)
	historyHandler := handlers.NewHistoryHandler(historyService, qualityService)
	auditHandler := handlers.NewAuditHandler(auditService)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg, limiter, healthHandler, catalogHandler, runHandler, historyHandler, auditHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("SKU reconciliation service starting on port %s (env: %s, workers: %d)", cfg.Port, cfg.Environment, engine.Workers())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down sku-reconciliation-service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}
	log.Println("SKU reconciliation service stopped")
}

// connectRedis returns nil when Redis is unreachable; run caching is then disabled
func connectRedis(redisURL string) *redis.Client {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (using localhost)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisOpts.Password = secrets.GetRedisPassword()
	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (run caching disabled)", err)
		client.Close()
		return nil
	}
	log.Println("Redis connected successfully")
	return client
}

func readinessChecks(db *gorm.DB, redisClient *redis.Client) map[string]handlers.ReadinessCheck {
	checks := map[string]handlers.ReadinessCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}

// setupRouter configures the HTTP router
func setupRouter(
	cfg *config.Config,
	limiter *middleware.RateLimiter,
	healthHandler *handlers.HealthHandler,
	catalogHandler *handlers.CatalogHandler,
	runHandler *handlers.RunHandler,
	historyHandler *handlers.HistoryHandler,
	auditHandler *handlers.AuditHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers middleware
	router.Use(middleware.SecurityHeaders())

	// CORS middleware
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Tenant context middleware
	router.Use(middleware.TenantMiddleware())

	// Health check
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API routes - require tenant ID
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireTenantID())
	v1.Use(middleware.RateLimit(limiter))
	{
		// Catalogs
		catalogs := v1.Group("/catalogs")
		{
			catalogs.POST("/manufacturer", catalogHandler.ImportManufacturer)
			catalogs.GET("/manufacturer", catalogHandler.ListManufacturer)
			catalogs.POST("/platforms", catalogHandler.ImportPlatformWorkbook)
			catalogs.POST("/platforms/:platform", catalogHandler.ImportPlatform)
			catalogs.GET("/platforms/:platform", catalogHandler.ListPlatform)
			catalogs.GET("/discontinued", catalogHandler.Discontinued)
		}

		// Match runs
		runs := v1.Group("/runs")
		{
			runs.POST("", runHandler.StartRun)
			runs.GET("", runHandler.ListRuns)
			runs.GET("/:id", runHandler.GetRun)
			runs.GET("/:id/records", runHandler.ListRecords)
			runs.GET("/:id/analysis", runHandler.Analysis)
			runs.GET("/:id/exports", runHandler.Exports)
			runs.GET("/:id/listing-gaps", runHandler.ListingGaps)
			runs.POST("/:id/history", historyHandler.SaveHistory)
			runs.POST("/:id/quality-check", historyHandler.QualityCheck)
		}

		v1.GET("/history", historyHandler.ListHistory)
		v1.GET("/audit-logs", auditHandler.GetAuditLogs)
	}

	return router
}
