package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration loaded from the environment.
type Config struct {
	Port        string
	Environment string

	LogLevel string
	LogFile  string

	JWTSecret []byte

	RedisHost     string
	RedisPort     string
	RedisPassword string

	// CORS
	AllowedOrigins []string

	// Feed tuning
	FeedPageSize      int
	FeedCacheTTLSecs  int
	ModerationPerPage int
}

// Load reads .env (if present) and builds the Config. JWT_SECRET is the
// only hard requirement outside development.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set env vars directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", "server.log"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		FeedPageSize:      getEnvInt("FEED_PAGE_SIZE", 50),
		FeedCacheTTLSecs:  getEnvInt("FEED_CACHE_TTL_SECONDS", 30),
		ModerationPerPage: getEnvInt("MODERATION_POSTS_PER_PAGE", 10),
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if cfg.Environment != "development" {
			return nil, fmt.Errorf("JWT_SECRET environment variable not set")
		}
		secret = "dev-secret-do-not-use-in-production"
	}
	cfg.JWTSecret = []byte(secret)

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitAndTrim(origins)
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
