package authsession

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{"redis backend valid", func(c *Config) { c.Storage.Backend = BackendRedis }, true},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "sqlite" }, false},
		{"redis prefix empty", func(c *Config) {
			c.Storage.Backend = BackendRedis
			c.Storage.RedisPrefix = " "
		}, false},
		{"redis prefix with separator", func(c *Config) {
			c.Storage.Backend = BackendRedis
			c.Storage.RedisPrefix = "a:b"
		}, false},
		{"origin with separator", func(c *Config) { c.Storage.Origin = "https://x" }, false},
		{"relative api url", func(c *Config) { c.API.BaseURL = "/api" }, false},
		{"api timeout zero", func(c *Config) { c.API.Timeout = 0 }, false},
		{"token ttl negative", func(c *Config) { c.Token.TTL = -time.Second }, false},
		{"token ed25519", func(c *Config) { c.Token.SigningMethod = "ed25519" }, true},
		{"token rs256", func(c *Config) { c.Token.SigningMethod = "rs256" }, false},
		{"log level trace", func(c *Config) { c.Log.Level = "trace" }, false},
		{"log console", func(c *Config) { c.Log.Format = "console" }, true},
		{"log text", func(c *Config) { c.Log.Format = "text" }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv(EnvStorageBackend, "REDIS")
	t.Setenv(EnvRedisAddr, "localhost:6379")
	t.Setenv(EnvRedisDB, "2")
	t.Setenv(EnvOrigin, "escuela.example")
	t.Setenv(EnvAPITimeout, "5s")
	t.Setenv(EnvTokenKey, "base64:c2VjcmV0")
	t.Setenv(EnvMetricsEnabled, "false")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, 2, cfg.Storage.RedisDB)
	assert.Equal(t, "escuela.example", cfg.Storage.Origin)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, []byte("secret"), cfg.Token.PrivateKey)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "tps", cfg.Storage.RedisPrefix)
}

func TestLoadConfigReadsDotenvWithoutOverriding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	body := "TAPPIN_API_BASE_URL=https://api.example\nTAPPIN_TOKEN_ISSUER=from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv(EnvTokenIssuer, "from-env")
	// Registers a restore so the value loaded from the file does not leak.
	t.Setenv(EnvAPIBaseURL, "")
	require.NoError(t, os.Unsetenv(EnvAPIBaseURL))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Token.Issuer)
	assert.Equal(t, "https://api.example", cfg.API.BaseURL)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv(EnvLogFormat, "xml")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvTokenKey, "base64:***")
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
