package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session  SessionConfig
	Upstream UpstreamConfig
	Audit    AuditConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type SessionConfig struct {
	// Secret signs the browser cookie that carries the session id.
	Secret        string        `env:"SESSION_SECRET"`
	CookieName    string        `env:"SESSION_COOKIE,        default=nutridata_session"`
	TTL           time.Duration `env:"SESSION_TTL,           default=720h"`
	LoadTimeout   time.Duration `env:"SESSION_LOAD_TIMEOUT,  default=2s"`
	SecureCookies bool          `env:"SESSION_SECURE_COOKIE, default=false"`
	ResetWindow   time.Duration `env:"RESET_THROTTLE_WINDOW, default=1m"`
}

type UpstreamConfig struct {
	BaseURL   string        `env:"API_BASE_URL,   default=http://localhost:8000/api"`
	Timeout   time.Duration `env:"API_TIMEOUT,    default=10s"`
	JWTSecret string        `env:"API_JWT_SECRET"`
}

type AuditConfig struct {
	Workers   int           `env:"AUDIT_WORKERS,   default=4"`
	Retention time.Duration `env:"AUDIT_RETENTION, default=2160h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=nutridata_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through lookuper; tests pass a MapLookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the portal runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if len(c.Session.Secret) < 32 {
		if c.IsProduction() {
			return errors.New("SESSION_SECRET must be at least 32 bytes in production")
		}
		if c.Session.Secret == "" {
			c.Session.Secret = "development-only-session-secret-change-me"
		}
	}
	if c.Upstream.BaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	return nil
}
