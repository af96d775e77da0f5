package config

import (
	"fmt"
	"time"

	"github.com/Duy-Thong/CopyCheck/internal/configs/env"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisDB                 int
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentCompute int

	// Comparison
	ComputationTimeout     time.Duration
	CompareThreshold       float64
	IndexedCompareMinDocs  int
	ParallelCompareMinDocs int

	// Tokenizer
	TokenizerFoldCase bool
	TokenizerUnicode  bool

	// Uploads and OCR fallback
	MaxUploadBytes int64
	OCRBaseURL     string
	OCRAPIKey      string
	OCRTimeout     time.Duration

	// Logging
	LogLevel string

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "copycheck")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = env.GetEnvInt("REDIS_DB", 0)
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "copycheck:submissions")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "copycheck:intake")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "copycheck:dlq")
	cfg.StreamRetentionDuration = env.GetEnvDuration("STREAM_RETENTION_DURATION", 24, time.Hour)

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "copycheck")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentCompute = env.GetEnvInt("MAX_CONCURRENT_COMPUTE", 5)

	// Comparison
	cfg.ComputationTimeout = env.GetEnvDuration("COMPUTATION_TIMEOUT_MINUTES", 30, time.Minute)
	cfg.CompareThreshold = env.GetEnvFloat("COMPARE_THRESHOLD", 0.7)
	cfg.IndexedCompareMinDocs = env.GetEnvInt("INDEXED_COMPARE_MIN_DOCS", 50)
	cfg.ParallelCompareMinDocs = env.GetEnvInt("PARALLEL_COMPARE_MIN_DOCS", 200)

	// Tokenizer
	cfg.TokenizerFoldCase = env.GetEnvBool("TOKENIZER_FOLD_CASE", false)
	cfg.TokenizerUnicode = env.GetEnvBool("TOKENIZER_UNICODE", false)

	// Uploads and OCR fallback
	cfg.MaxUploadBytes = int64(env.GetEnvInt("MAX_UPLOAD_MB", 20)) << 20
	cfg.OCRBaseURL = env.GetEnv("OCR_BASE_URL", "")
	cfg.OCRAPIKey = env.GetEnv("OCR_API_KEY", "")
	cfg.OCRTimeout = env.GetEnvDuration("OCR_TIMEOUT_SECONDS", 60, time.Second)

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MaxConcurrentCompute <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_COMPUTE must be greater than 0")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_DURATION must be greater than 0")
	}
	if c.CompareThreshold < 0 || c.CompareThreshold > 1 {
		return fmt.Errorf("COMPARE_THRESHOLD must be between 0 and 1")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be greater than 0")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be greater than 0")
	}
	return nil
}
