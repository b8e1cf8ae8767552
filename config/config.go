package config

import (
	"errors"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: session cookie, login modes and throttling
//   - database.go: PostgreSQL, Redis and settings cache
//   - http.go: HTTP server configuration
//   - log.go: log level and format
//   - observability.go: StatsD metrics
type AppConfig struct {
	// IsDev reads templates from disk and switches logs to text.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	Session SessionConfig `envPrefix:"SESSION_"`
	Auth    AuthConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Cache    CacheConfig

	HTTP    HTTPConfig
	Log     LogConfig     `envPrefix:"LOG_"`
	Metrics MetricsConfig `envPrefix:"METRICS_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.Session.Sanitize()
	c.Auth.Sanitize()
	c.Postgres.Sanitize()
	c.Redis.Sanitize()
	c.Cache.Sanitize()
	c.HTTP.Sanitize()
	c.Log.Sanitize(c.IsDev)
	c.Metrics.Sanitize()
}

// Validate reports every section error at once. Run it after Sanitize.
func (c *AppConfig) Validate() error {
	return errors.Join(
		c.Session.Validate(),
		c.Auth.Validate(),
		c.Postgres.Validate(),
		c.Redis.Validate(),
		c.HTTP.Validate(),
		c.Log.Validate(),
	)
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
