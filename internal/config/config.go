package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	LogLevel          string
	DBDSN             string
	MigrateOnStart    bool
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	// Redis is optional. An empty address disables caching and rate limiting
	// and keeps tokens in process memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RateLimitCapacity     int
	RateLimitRefillPerSec float64

	// AMQPURL is optional. Without it notifications are only logged.
	AMQPURL     string
	NotifyQueue string

	ConfirmTokenTTL  time.Duration
	ApprovalTokenTTL time.Duration
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.Any("error", err))
	}

	var err error
	cfg := &Config{}

	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")
	cfg.IsProduction = getEnv("APP_ENV", "dev") == PROD_STRING
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	if cfg.MigrateOnStart, err = getEnvAsBool("MIGRATE_ON_START", true); err != nil {
		return nil, err
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}

	// Bcrypt cost for password hashing (default: 12)
	if cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12); err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitCapacity, err = getEnvAsInt("RATE_LIMIT_CAPACITY", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimitRefillPerSec, err = getEnvAsFloat("RATE_LIMIT_REFILL_PER_SEC", 0.5); err != nil {
		return nil, err
	}

	cfg.AMQPURL = getEnv("AMQP_URL", "")
	cfg.NotifyQueue = getEnv("NOTIFY_QUEUE", "notifications")

	if cfg.ConfirmTokenTTL, err = getEnvAsDuration("CONFIRM_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ApprovalTokenTTL, err = getEnvAsDuration("APPROVAL_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid number: %w", key, valStr, err)
	}
	return val, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid bool: %w", key, valStr, err)
	}
	return val, nil
}

// getEnvAsDuration parses values such as "15m" or "24h".
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return val, nil
}
