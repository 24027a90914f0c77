package main

import (
	"social-publisher/pkg/cache"
	"social-publisher/pkg/config"
	"social-publisher/pkg/database"
	"social-publisher/pkg/errtrack"
	"social-publisher/pkg/logger"
	"social-publisher/pkg/queue"
	"social-publisher/pkg/s3"
	publisherApp "social-publisher/services/publisher/internal/app"

	"github.com/gin-gonic/gin"

	_ "social-publisher/services/publisher/docs" // Swagger docs
)

// @title           Publisher Service API
// @version         1.0
// @description     Guarded publishing of approved posts to Instagram and Facebook.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey AdminSecret
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the admin secret or an admin token.

// @securityDefinitions.apikey JobSecret
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the cron secret.

func init() {
	gin.SetMode(gin.ReleaseMode)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewWithLevel(cfg.LogLevel)

	if err := errtrack.Init(cfg.SentryDSN, cfg.AppEnv, cfg.Version); err != nil {
		log.Error("Failed to init error tracking: %v", err)
	}
	defer errtrack.Flush()

	if cfg.CronSecret == "" {
		log.Warn("CRON_SECRET is not set; publish and job endpoints will reject every request")
	}
	if cfg.AdminSecret == "" && cfg.AdminSecretHash == "" {
		log.Warn("ADMIN_SECRET is not set; admin endpoints are open")
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}

	var queueClient *queue.Client
	if cfg.RabbitMQHost != "" {
		queueClient, err = queue.NewRabbitMQClient(cfg, log)
		if err != nil {
			log.Error("Failed to connect to RabbitMQ: %v", err)
			panic(err)
		}
	} else {
		log.Info("RABBITMQ_HOST is not set; auto-pause alerts are disabled")
	}

	var s3Client *s3.Client
	if cfg.S3AuditBucket != "" {
		s3Client, err = s3.NewClient(cfg)
		if err != nil {
			log.Error("Failed to create S3 client: %v", err)
			panic(err)
		}
	} else {
		log.Info("S3_AUDIT_BUCKET is not set; audit responses are kept in the database only")
	}

	publisherApp.Run(cfg, log, db, redisClient, queueClient, s3Client)
}
