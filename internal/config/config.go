package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	Env            string
	MongoURI       string
	JWTSecret      string
	JWTExpiry      time.Duration
	PageSize       int64
	AllowedOrigins []string
	Redis          RedisConfig
	SMTP           SMTPConfig
	AppURL         string
	// CleanupInterval controls how often expired password reset tokens are purged.
	CleanupInterval time.Duration
}

type RedisConfig struct {
	URL          string
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	RetryDelay   time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
}

type SMTPConfig struct {
	Host      string
	Port      string
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// IsProduction reports whether the app runs with production error shaping
// and secure cookies.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func Load() *Config {
	// .env is optional outside local development
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI environment variable is not set")
	}

	return &Config{
		Port:            envOr("PORT", "8080"),
		Env:             envOr("APP_ENV", "development"),
		MongoURI:        mongoURI,
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTExpiry:       envDuration("JWT_EXPIRY", 24*time.Hour),
		PageSize:        envInt64("PAGE_SIZE", 15),
		AllowedOrigins:  splitAndTrim(envOr("ALLOWED_ORIGINS", "*")),
		AppURL:          envOr("APP_URL", "http://localhost:8080"),
		CleanupInterval: envDuration("RESET_TOKEN_CLEANUP_INTERVAL", time.Hour),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			Host:         envOr("REDIS_HOST", "localhost"),
			Port:         envOr("REDIS_PORT", "6379"),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           int(envInt64("REDIS_DB", 0)),
			PoolSize:     int(envInt64("REDIS_POOL_SIZE", 10)),
			MinIdleConns: int(envInt64("REDIS_MIN_IDLE_CONNS", 2)),
			MaxRetries:   int(envInt64("REDIS_MAX_RETRIES", 3)),
			RetryDelay:   envDuration("REDIS_RETRY_DELAY", 500*time.Millisecond),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  envDuration("REDIS_POOL_TIMEOUT", 4*time.Second),
		},
		SMTP: SMTPConfig{
			Host:      os.Getenv("SMTP_HOST"),
			Port:      envOr("SMTP_PORT", "587"),
			Username:  os.Getenv("SMTP_USERNAME"),
			Password:  os.Getenv("SMTP_PASSWORD"),
			FromEmail: envOr("SMTP_FROM_EMAIL", "noreply@tours.local"),
			FromName:  envOr("SMTP_FROM_NAME", "Tours Backend"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %d", key, raw, fallback)
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %v", key, raw, fallback)
		return fallback
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
