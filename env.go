package authsession

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by [LoadConfig].
const (
	EnvStorageBackend = "TAPPIN_STORAGE_BACKEND"
	EnvOrigin         = "TAPPIN_ORIGIN"
	EnvRedisAddr      = "TAPPIN_REDIS_ADDR"
	EnvRedisPassword  = "TAPPIN_REDIS_PASSWORD"
	EnvRedisDB        = "TAPPIN_REDIS_DB"
	EnvRedisPrefix    = "TAPPIN_REDIS_PREFIX"
	EnvAPIBaseURL     = "TAPPIN_API_BASE_URL"
	EnvAPITimeout     = "TAPPIN_API_TIMEOUT"
	EnvTokenMethod    = "TAPPIN_TOKEN_SIGNING_METHOD"
	// EnvTokenKey holds the signing key, base64 encoded when prefixed with "base64:".
	EnvTokenKey       = "TAPPIN_TOKEN_KEY"
	EnvTokenTTL       = "TAPPIN_TOKEN_TTL"
	EnvTokenIssuer    = "TAPPIN_TOKEN_ISSUER"
	EnvMetricsEnabled = "TAPPIN_METRICS_ENABLED"
	EnvLogLevel       = "TAPPIN_LOG_LEVEL"
	EnvLogFormat      = "TAPPIN_LOG_FORMAT"
)

// LoadConfig reads the configuration from the environment on top of
// [DefaultConfig]. The given dotenv files, or ".env" when none are given, are
// loaded first if they exist; variables already set win.
func LoadConfig(envFiles ...string) (Config, error) {
	_ = godotenv.Load(envFiles...)

	def := DefaultConfig()
	cfg := Config{
		Storage: StorageConfig{
			Backend:       strings.ToLower(getEnv(EnvStorageBackend, def.Storage.Backend)),
			Origin:        getEnv(EnvOrigin, def.Storage.Origin),
			RedisAddr:     getEnv(EnvRedisAddr, def.Storage.RedisAddr),
			RedisPassword: getEnv(EnvRedisPassword, def.Storage.RedisPassword),
			RedisDB:       getEnvAsInt(EnvRedisDB, def.Storage.RedisDB),
			RedisPrefix:   getEnv(EnvRedisPrefix, def.Storage.RedisPrefix),
		},
		API: APIConfig{
			BaseURL: getEnv(EnvAPIBaseURL, def.API.BaseURL),
			Timeout: getEnvAsDuration(EnvAPITimeout, def.API.Timeout),
		},
		Token: TokenConfig{
			SigningMethod: strings.ToLower(getEnv(EnvTokenMethod, def.Token.SigningMethod)),
			TTL:           getEnvAsDuration(EnvTokenTTL, def.Token.TTL),
			Issuer:        getEnv(EnvTokenIssuer, def.Token.Issuer),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool(EnvMetricsEnabled, def.Metrics.Enabled),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv(EnvLogLevel, def.Log.Level)),
			Format: strings.ToLower(getEnv(EnvLogFormat, def.Log.Format)),
		},
	}

	key, err := decodeKey(getEnv(EnvTokenKey, ""))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvTokenKey, err)
	}
	cfg.Token.PrivateKey = key

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func decodeKey(v string) ([]byte, error) {
	if v == "" {
		return nil, nil
	}
	if rest, ok := strings.CutPrefix(v, "base64:"); ok {
		return base64.StdEncoding.DecodeString(rest)
	}
	return []byte(v), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
