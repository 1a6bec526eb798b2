package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"20s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	DecalAPIURL     string        `envconfig:"DECAL_API_URL" required:"true"`
	DecalAPIToken   string        `envconfig:"DECAL_API_TOKEN"`
	DecalAPITimeout time.Duration `envconfig:"DECAL_API_TIMEOUT" default:"15s"`

	RedisAddr         string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	AnalyticsCacheTTL time.Duration `envconfig:"ANALYTICS_CACHE_TTL" default:"0s"`

	WarmupCron        string `envconfig:"WARMUP_CRON" default:"*/15 * * * *"`
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
}

// LoadConfig reads configuration from environment variables. A .env file in
// the working directory is applied first when present; real environment
// variables win over it.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("app: load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(strings.TrimSpace(c.DecalAPIURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("app: DECAL_API_URL must be an absolute http(s) URL, got %q", c.DecalAPIURL)
	}
	if c.AnalyticsCacheTTL < 0 {
		return errors.New("app: ANALYTICS_CACHE_TTL must not be negative")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// CacheEnabled reports whether analytics results should be cached in Redis.
func (c *Config) CacheEnabled() bool {
	return c != nil && c.AnalyticsCacheTTL > 0 && strings.TrimSpace(c.RedisAddr) != ""
}
