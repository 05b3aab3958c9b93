package authsession

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tappin/authsession/token"
)

// Config is the complete client configuration.
type Config struct {
	Storage StorageConfig
	API     APIConfig
	Token   TokenConfig
	Metrics MetricsConfig
	Log     LogConfig
}

/*
====================================
STORAGE CONFIG
====================================
*/

// Storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// StorageConfig selects where the session mirror lives.
type StorageConfig struct {
	Backend string // "memory" (default) or "redis"
	// Origin scopes keys so two clients can share one Redis.
	Origin        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the REST API used by registration.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig drives local token minting for development. Decoding never uses it.
type TokenConfig struct {
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	TTL           time.Duration
	Issuer        string
}

// MetricsConfig toggles counters.
type MetricsConfig struct {
	Enabled bool
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a configuration that runs without external services.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend:     BackendMemory,
			Origin:      "default",
			RedisAddr:   "",
			RedisPrefix: "tps",
		},
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 30 * time.Second,
		},
		Token: TokenConfig{
			SigningMethod: string(token.MethodHS256),
			TTL:           time.Hour,
			Issuer:        "tappin",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting. Every error wraps [ErrInvalidConfig].
func (c *Config) Validate() error {
	// Storage
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.Storage.RedisPrefix) == "" {
			return invalid("Storage RedisPrefix must be set for redis backend")
		}
		if strings.Contains(c.Storage.RedisPrefix, ":") {
			return invalid("Storage RedisPrefix must not contain ':'")
		}
		if c.Storage.RedisDB < 0 {
			return invalid("Storage RedisDB must be >= 0")
		}
	default:
		return invalid("unsupported storage backend %q", c.Storage.Backend)
	}
	if strings.Contains(c.Storage.Origin, ":") {
		return invalid("Storage Origin must not contain ':'")
	}

	// API
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("API BaseURL must be an absolute http(s) URL")
	}
	if c.API.Timeout <= 0 {
		return invalid("API Timeout must be > 0")
	}

	// Token
	if c.Token.TTL <= 0 {
		return invalid("Token TTL must be > 0")
	}
	if c.Token.SigningMethod != string(token.MethodHS256) && c.Token.SigningMethod != string(token.MethodEd25519) {
		return invalid("unsupported token signing method")
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("unsupported log level %q", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return invalid("Log Format must be json or console")
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
