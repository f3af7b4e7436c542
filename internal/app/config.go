package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr string `default:"0.0.0.0:8080" usage:"API server listen address"`

	// CartStorage selects the cart backend: memory, redis, or postgres.
	CartStorage string `default:"memory" usage:"Cart storage backend (memory, redis, postgres)" flag:"cart-storage"`
	RedisURL    string `usage:"Redis connection URL (STOREFRONT_REDIS_URL or REDIS_URL)" flag:"redis-url"`
	DatabaseURL string `usage:"PostgreSQL connection URL (STOREFRONT_DATABASE_URL or DATABASE_URL)" flag:"database-url"`

	// CartTTL is how long an idle cart survives in Redis. Zero means no
	// expiry. Ignored by the other backends.
	CartTTL time.Duration `default:"720h" usage:"Idle cart expiry for the redis backend" flag:"cart-ttl"`

	// BackendBaseURL roots the external order/payment API. Empty disables
	// the payment status relay.
	BackendBaseURL string `usage:"Base URL of the external order/payment API" flag:"backend-base-url"`

	Session   SessionConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// SessionConfig controls the anonymous session cookie.
type SessionConfig struct {
	CookieName string        `default:"storefront_session" usage:"Session cookie name" flag:"session-cookie"`
	TTL        time.Duration `default:"720h" usage:"Session cookie lifetime" flag:"session-ttl"`
	Secure     bool          `default:"false" usage:"Set the Secure flag on session cookies" flag:"session-secure"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	switch cfg.CartStorage {
	case "memory":
	case "redis":
		if cfg.RedisURL == "" {
			return nil, errors.New("redis backend requires STOREFRONT_REDIS_URL or REDIS_URL")
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("postgres backend requires STOREFRONT_DATABASE_URL or DATABASE_URL")
		}
	default:
		return nil, errors.Errorf("unknown cart storage backend %q", cfg.CartStorage)
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and PORT
// to the application's STOREFRONT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.RedisURL == "" {
		if v := os.Getenv("REDIS_URL"); v != "" {
			c.RedisURL = v
		}
	}
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
