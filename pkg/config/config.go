package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort string
	AppEnv     string
	LogLevel   string
	Version    string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ (optional, auto-pause alerts)
	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string

	// AWS S3 (optional, audit archive)
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string
	S3UseSSL           bool
	S3AuditBucket      string

	// Secrets
	AdminSecret     string
	AdminSecretHash string
	CronSecret      string
	SentryDSN       string

	// Guard pipeline
	LockTTL              time.Duration
	PublishTimeout       time.Duration
	AuthFailureThreshold int
	AuthFailureWindow    time.Duration
	RateCaps             map[string]RateCap

	// Platform publishing
	GraphAPIBaseURL      string
	GraphAPIRPS          int
	GraphHTTPTimeout     time.Duration
	InstagramUserID      string
	InstagramAccessToken string
	FacebookPageID       string
	FacebookAccessToken  string
	PollMaxAttempts      int
	PollInterval         time.Duration

	// Due-post job
	DueBatchSize       int
	PublishConcurrency int
}

// RateCap is the per-platform publishing budget. Zero values disable a rule.
type RateCap struct {
	Cooldown  time.Duration
	HourlyCap int
	DailyCap  int
}

// Platforms lists the platforms the publisher knows about.
var Platforms = []string{"instagram", "facebook"}

var defaultRateCaps = map[string]RateCap{
	"instagram": {Cooldown: 15 * time.Minute, HourlyCap: 3, DailyCap: 25},
	"facebook":  {Cooldown: 10 * time.Minute, HourlyCap: 5, DailyCap: 50},
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	config := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Version:    getEnv("VERSION", "dev"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "social_publisher"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RabbitMQHost:     getEnv("RABBITMQ_HOST", ""),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:        getEnv("AWS_ENDPOINT", ""),
		S3UseSSL:           getEnvBool("S3_USE_SSL", true),
		S3AuditBucket:      getEnv("S3_AUDIT_BUCKET", ""),

		AdminSecret:     getEnv("ADMIN_SECRET", ""),
		AdminSecretHash: getEnv("ADMIN_SECRET_HASH", ""),
		CronSecret:      getEnv("CRON_SECRET", ""),
		SentryDSN:       getEnv("SENTRY_DSN", ""),

		LockTTL:              getEnvDuration("LOCK_TTL", 5*time.Minute),
		AuthFailureThreshold: getEnvInt("AUTH_FAILURE_THRESHOLD", 3),
		AuthFailureWindow:    getEnvDuration("AUTH_FAILURE_WINDOW", time.Hour),
		RateCaps:             make(map[string]RateCap, len(Platforms)),

		GraphAPIBaseURL:      getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v19.0"),
		GraphAPIRPS:          getEnvInt("GRAPH_API_RPS", 5),
		GraphHTTPTimeout:     getEnvDuration("GRAPH_HTTP_TIMEOUT", 30*time.Second),
		InstagramUserID:      getEnv("INSTAGRAM_USER_ID", ""),
		InstagramAccessToken: getEnv("INSTAGRAM_ACCESS_TOKEN", ""),
		FacebookPageID:       getEnv("FACEBOOK_PAGE_ID", ""),
		FacebookAccessToken:  getEnv("FACEBOOK_ACCESS_TOKEN", ""),
		PollMaxAttempts:      getEnvInt("POLL_MAX_ATTEMPTS", 30),
		PollInterval:         getEnvDuration("POLL_INTERVAL", 5*time.Second),

		DueBatchSize:       getEnvInt("DUE_BATCH_SIZE", 20),
		PublishConcurrency: getEnvInt("PUBLISH_CONCURRENCY", 4),
	}

	for _, platform := range Platforms {
		def := defaultRateCaps[platform]
		prefix := "RATE_" + strings.ToUpper(platform) + "_"
		config.RateCaps[platform] = RateCap{
			Cooldown:  getEnvDuration(prefix+"COOLDOWN", def.Cooldown),
			HourlyCap: getEnvInt(prefix+"HOURLY", def.HourlyCap),
			DailyCap:  getEnvInt(prefix+"DAILY", def.DailyCap),
		}
	}
	config.PublishTimeout = getEnvDuration("PUBLISH_TIMEOUT", config.LockTTL*4/5)

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// validate keeps the platform call inside the publish lock: the call is cut off at PublishTimeout,
// which must end before LOCK_TTL, and a full media poll plus the create and publish requests must fit in it.
func (c *Config) validate() error {
	if c.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be positive, got %s", c.LockTTL)
	}
	if c.PublishTimeout <= 0 || c.PublishTimeout >= c.LockTTL {
		return fmt.Errorf("PUBLISH_TIMEOUT (%s) must be positive and shorter than LOCK_TTL (%s)", c.PublishTimeout, c.LockTTL)
	}
	pollBudget := time.Duration(c.PollMaxAttempts)*c.PollInterval + 2*c.GraphHTTPTimeout
	if pollBudget >= c.PublishTimeout {
		return fmt.Errorf("POLL_MAX_ATTEMPTS x POLL_INTERVAL plus two GRAPH_HTTP_TIMEOUT (%s) must be shorter than PUBLISH_TIMEOUT (%s)", pollBudget, c.PublishTimeout)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("90s", "15m") or plain seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
