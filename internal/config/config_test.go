package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "copycheck", cfg.MongoDBName)
	assert.Equal(t, "copycheck:submissions", cfg.RedisStreamKey)
	assert.Equal(t, "copycheck:intake", cfg.RedisConsumerGroup)
	assert.Equal(t, "copycheck:dlq", cfg.RedisDeadLetterKey)
	assert.Equal(t, 24*time.Hour, cfg.StreamRetentionDuration)
	assert.Equal(t, 0.7, cfg.CompareThreshold)
	assert.Equal(t, 30*time.Minute, cfg.ComputationTimeout)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes)
	assert.False(t, cfg.TokenizerFoldCase)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "2112", cfg.MetricsPort)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("COMPARE_THRESHOLD", "0.5")
	t.Setenv("TOKENIZER_FOLD_CASE", "true")
	t.Setenv("MAX_UPLOAD_MB", "2")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.CompareThreshold)
	assert.True(t, cfg.TokenizerFoldCase)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing mongo uri", func(c *Config) { c.MongoURI = "" }, "MONGO_URI"},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"no compute slots", func(c *Config) { c.MaxConcurrentCompute = 0 }, "MAX_CONCURRENT_COMPUTE"},
		{"threshold above one", func(c *Config) { c.CompareThreshold = 1.2 }, "COMPARE_THRESHOLD"},
		{"negative threshold", func(c *Config) { c.CompareThreshold = -0.1 }, "COMPARE_THRESHOLD"},
		{"zero rps", func(c *Config) { c.RateLimitRPS = 0 }, "RATE_LIMIT_RPS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}
