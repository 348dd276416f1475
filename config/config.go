package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
	LogLevel        slog.Level

	// Database configuration. DataDir holds pocketbase's data.db and
	// auxiliary.db; the pool sizes apply to data.db readers, writes always go
	// through a single connection.
	DataDir        string
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Redis configuration
	RedisURL string

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	PubNubUserID       string

	// Session configuration
	SessionTTL  time.Duration
	RememberTTL time.Duration
	BcryptCost  int

	// Uploads
	UploadDir     string
	MaxUploadSize int64

	// Rate limiting
	RateLimitPerMinute      int
	LoginRateLimitPerMinute int

	// Monitoring
	EnableMetrics   bool
	MetricsPort     string
	MetricsInterval time.Duration
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		// Server
		Port:            getEnv("PORT", "8090"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", "10s"),
		LogLevel:        getEnvAsLogLevel("LOG_LEVEL", slog.LevelInfo),

		// Database
		DataDir:        getEnv("DATA_DIR", "event_data"),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 120),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 15),

		// Redis
		RedisURL: getEnv("REDIS_URL", "localhost:6379"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubUserID:       getEnv("PUBNUB_USER_ID", "event-ticketing-server"),

		// Sessions
		SessionTTL:  getEnvAsDuration("SESSION_TTL", "12h"),
		RememberTTL: getEnvAsDuration("REMEMBER_TTL", "720h"),
		BcryptCost:  getEnvAsInt("BCRYPT_COST", 10),

		// Uploads
		UploadDir:     getEnv("UPLOAD_DIR", "event_data/uploads"),
		MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_SIZE", 5<<20)),

		// Rate limiting
		RateLimitPerMinute:      getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		LoginRateLimitPerMinute: getEnvAsInt("LOGIN_RATE_LIMIT_PER_MINUTE", 10),

		// Monitoring
		EnableMetrics:   getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		MetricsInterval: getEnvAsDuration("METRICS_INTERVAL", "30s"),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR must not be empty"))
	}
	if c.DBMaxOpenConns < 1 {
		errs = append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1, got %d", c.DBMaxOpenConns))
	}
	if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
		errs = append(errs, fmt.Errorf("DB_MAX_IDLE_CONNS must be within [0, DB_MAX_OPEN_CONNS], got %d", c.DBMaxIdleConns))
	}
	if c.SessionTTL <= 0 || c.RememberTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL and REMEMBER_TTL must be positive"))
	}
	if c.RememberTTL < c.SessionTTL {
		errs = append(errs, errors.New("REMEMBER_TTL must not be shorter than SESSION_TTL"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [4, 31], got %d", c.BcryptCost))
	}
	if c.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsLogLevel(key string, defaultValue slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(getEnv(key, "")))); err != nil {
		return defaultValue
	}
	return level
}
