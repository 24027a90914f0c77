package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-publisher/pkg/config"
	"social-publisher/pkg/jwt"
	"social-publisher/pkg/logger"
	"social-publisher/pkg/metrics"
	"social-publisher/pkg/middleware"
	"social-publisher/pkg/queue"
	"social-publisher/pkg/s3"
	publisherHTTP "social-publisher/services/publisher/internal/controller/http"
	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/platform"
	"social-publisher/services/publisher/internal/repo/kv"
	"social-publisher/services/publisher/internal/repo/persistent"
	"social-publisher/services/publisher/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const serviceName = "social-publisher"

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client, queueClient *queue.Client, s3Client *s3.Client) {
	collector := metrics.NewCollector(serviceName, cfg.Version)
	r := NewRouter(cfg, log, db, redisClient, queueClient, s3Client, collector)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info("Publisher service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down publisher service...")

	// Publishes in flight get the lock TTL to finish before the server is forced down.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.LockTTL)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis: %v", err)
	}

	if queueClient != nil {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	log.Info("Publisher service exited")
}

// NewRouter wires repositories, the guard pipeline and the HTTP routes.
func NewRouter(
	cfg *config.Config,
	log *logger.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	queueClient *queue.Client,
	s3Client *s3.Client,
	collector *metrics.Collector,
) *gin.Engine {
	jwtService := jwt.NewService(cfg.AdminSecret)

	var alerts usecase.AlertPublisher
	if queueClient != nil {
		alerts = queueClient
	}
	var archiver usecase.Archiver
	if s3Client != nil {
		archiver = s3Client
	}

	// Repositories
	postRepo := persistent.NewPostRepository(db)
	attemptRepo := persistent.NewAttemptRepository(db)
	auditRepo := persistent.NewAuditRepository(db)

	// Guard pipeline
	platforms := make([]entity.Platform, 0, len(config.Platforms))
	policies := make(map[entity.Platform]usecase.RateCapPolicy, len(config.Platforms))
	for _, name := range config.Platforms {
		p := entity.Platform(name)
		platforms = append(platforms, p)
		rc := cfg.RateCaps[name]
		policies[p] = usecase.RateCapPolicy{Cooldown: rc.Cooldown, HourlyCap: rc.HourlyCap, DailyCap: rc.DailyCap}
	}

	pauses := usecase.NewPauseRegistry(kv.NewPauseStore(redisClient), platforms, log)
	rates := usecase.NewRateCapTracker(kv.NewRateStore(redisClient), policies, pauses, alerts, collector, log)
	dedup := usecase.NewDedupGuard(postRepo, attemptRepo, kv.NewLockStore(redisClient), cfg.LockTTL, log)
	monitor := usecase.NewErrorMonitor(kv.NewFailureStore(redisClient), pauses, alerts, cfg.AuthFailureThreshold, cfg.AuthFailureWindow, collector, log)
	audit := usecase.NewAuditLog(auditRepo, archiver, log)

	publishUseCase := usecase.NewPublishUseCase(pauses, usecase.NewStatusGate(), rates, dedup, monitor, audit, newPlatformRegistry(cfg, log), postRepo, cfg.PublishTimeout, collector, log)
	dueJob := usecase.NewDuePostJob(postRepo, publishUseCase, cfg.DueBatchSize, cfg.PublishConcurrency, log)

	// HTTP handlers
	adminHandler := publisherHTTP.NewAdminHandler(pauses, rates, monitor, audit, log)
	publishHandler := publisherHTTP.NewPublishHandler(publishUseCase, dueJob, log)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Admin-Secret"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))
	r.Use(collector.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", collector.Handler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")

	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware(cfg.AdminSecret, cfg.AdminSecretHash, jwtService))
	admin.Use(middleware.RateLimitMiddleware(redisClient, 100, time.Minute))
	{
		admin.GET("/pause", adminHandler.GetPause)
		admin.POST("/pause", adminHandler.SetPause)
		admin.GET("/pause/:platform", adminHandler.GetPlatformPause)
		admin.POST("/pause/:platform", adminHandler.SetPlatformPause)
		admin.GET("/status", adminHandler.GetStatus)
		admin.GET("/audit", adminHandler.ListAudit)
	}

	jobs := api.Group("")
	jobs.Use(middleware.JobAuthMiddleware(cfg.CronSecret))
	{
		jobs.POST("/publish", publishHandler.Publish)
		jobs.POST("/jobs/publish-due", publishHandler.RunDue)
	}

	return r
}

func newPlatformRegistry(cfg *config.Config, log *logger.Logger) *platform.Registry {
	graph := platform.NewGraphClient(cfg.GraphAPIBaseURL, cfg.GraphAPIRPS, &http.Client{Timeout: cfg.GraphHTTPTimeout})
	registry := platform.NewRegistry()

	if cfg.InstagramUserID == "" || cfg.InstagramAccessToken == "" {
		log.Warn("Instagram credentials are not set; publishes to instagram will fail")
	}
	poller := platform.NewContainerPoller(graph, cfg.InstagramAccessToken, cfg.PollMaxAttempts, cfg.PollInterval)
	registry.Register(entity.PlatformInstagram, platform.NewInstagramPublisher(graph, poller, cfg.InstagramUserID, cfg.InstagramAccessToken))

	if cfg.FacebookPageID == "" || cfg.FacebookAccessToken == "" {
		log.Warn("Facebook credentials are not set; publishes to facebook will fail")
	}
	registry.Register(entity.PlatformFacebook, platform.NewFacebookPublisher(graph, cfg.FacebookPageID, cfg.FacebookAccessToken))

	return registry
}
