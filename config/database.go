package config

import (
	"errors"
	"strings"
	"time"
)

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"saludcpv"`
	Password string `env:"PASSWORD"                envDefault:"saludcpv"`
	Name     string `env:"NAME"                    envDefault:"saludcpv"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
	MaxOpenConns         int  `env:"MAX_OPEN_CONNS"          envDefault:"25"`
}

// Sanitize trims values and clamps the pool.
func (d *DBConfig) Sanitize() {
	d.Host = strings.TrimSpace(d.Host)
	d.SSLMode = strings.ToLower(strings.TrimSpace(d.SSLMode))
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.MaxOpenConns < 1 {
		d.MaxOpenConns = 25
	}
}

// Validate checks the connection target.
func (d *DBConfig) Validate() error {
	var errs []error
	if d.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, errors.New("DB_PORT must be between 1 and 65535"))
	}
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	switch d.SSLMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		errs = append(errs, errors.New("DB_SSL_MODE is not a libpq sslmode"))
	}
	return errors.Join(errs...)
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	// Enabled turns on the Redis login throttle and settings cache.
	// When false logins are not throttled and settings are read from Postgres on every request.
	Enabled            bool     `env:"ENABLED"              envDefault:"true"`
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:""`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
	// KeyPrefix namespaces every key written by this application.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"saludcpv:"`
}

// Sanitize trims values.
func (r *RedisConfig) Sanitize() {
	r.URI = strings.TrimSpace(r.URI)
	r.KeyPrefix = strings.TrimSpace(r.KeyPrefix)
}

// Validate checks that the selected topology has addresses.
func (r *RedisConfig) Validate() error {
	if !r.Enabled {
		return nil
	}
	switch {
	case r.UseCluster && r.UseSentinel:
		return errors.New("REDIS_USE_CLUSTER and REDIS_USE_SENTINEL are mutually exclusive")
	case r.UseSentinel && len(r.SentinelNodes) == 0:
		return errors.New("REDIS_SENTINEL_NODES is required when REDIS_USE_SENTINEL=true")
	case r.UseCluster && len(r.ClusterNodes) == 0 && r.URI == "":
		return errors.New("REDIS_CLUSTER_NODES or REDIS_URI is required when REDIS_USE_CLUSTER=true")
	case !r.UseCluster && !r.UseSentinel && r.URI == "":
		return errors.New("REDIS_URI is required when REDIS_ENABLED=true")
	}
	return nil
}

// CacheConfig contains cache configuration (Redis-based).
type CacheConfig struct {
	// AppearanceTTL is how long rendered appearance settings stay cached.
	AppearanceTTL time.Duration `env:"CACHE_APPEARANCE_TTL" envDefault:"10m"`
}

// Sanitize restores the default TTL.
func (c *CacheConfig) Sanitize() {
	if c.AppearanceTTL <= 0 {
		c.AppearanceTTL = 10 * time.Minute
	}
}
