package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/noe-create/medidhub-cpv-sub001/config"
	"github.com/noe-create/medidhub-cpv-sub001/internal/adapters/cookiesession"
	"github.com/noe-create/medidhub-cpv-sub001/internal/adapters/passwords"
	"github.com/noe-create/medidhub-cpv-sub001/internal/core"
	"github.com/noe-create/medidhub-cpv-sub001/internal/data"
	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	httpx "github.com/noe-create/medidhub-cpv-sub001/internal/http"
	"github.com/noe-create/medidhub-cpv-sub001/internal/observability/statsd"
	"github.com/noe-create/medidhub-cpv-sub001/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth         *service.AuthService
	Settings     *service.SettingsService
	DatabaseInfo *service.DatabaseInfoService
	Sessions     *cookiesession.Store
	Gate         domainauth.Gate
	// Metrics discards everything when METRICS_ENABLED is false. Close it on shutdown.
	Metrics *statsd.Client
	// Checks are the dependencies probed by /healthz.
	Checks map[string]httpx.HealthChecker
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient // optional
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Users    *data.UserRepo
	Settings *data.SettingsRepo
	DBInfo   *data.DatabaseInfoRepo
	Cache    *data.RedisCacheRepo // nil without Redis
}

func buildRepositories(deps *ServiceDeps) serviceRepositories {
	repos := serviceRepositories{
		Users:    data.NewUserRepo(deps.DB),
		Settings: data.NewSettingsRepo(deps.DB),
		DBInfo:   data.NewDatabaseInfoRepo(deps.DB),
	}
	if deps.RedisClient != nil {
		repos.Cache = data.NewRedisCacheRepo(deps.RedisClient, deps.Config.Redis.KeyPrefix)
	}
	return repos
}

// NewServices wires repositories, adapters and services.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service deps: Config is required")
	}
	if deps.DB == nil {
		return nil, data.ErrNilDB
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	authCfg := AuthConfig{App: cfg, RedisClient: deps.RedisClient, Logger: logger}

	sessions, err := BuildSessionStore(authCfg)
	if err != nil {
		return nil, err
	}
	provider, err := BuildAuthProvider(authCfg)
	if err != nil {
		return nil, err
	}

	repos := buildRepositories(deps)
	gate := domainauth.NewGate(cfg.Auth.SuperuserRole)
	metricsSink := buildMetrics(cfg.Metrics, logger)

	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Users: repos.Users,
		Security: service.AuthSecurity{
			Hasher:    passwords.Bcrypt{},
			DummyHash: passwords.DummyHash,
			Limiter:   BuildLoginLimiter(authCfg),
			Gate:      gate,
		},
		Runtime: service.AuthRuntime{
			Provider: provider,
			Metrics:  metricsSink,
			Logger:   logger,
		},
	})

	var appearanceCache *core.AppearanceCache
	if repos.Cache != nil {
		appearanceCache = core.NewAppearanceCache(repos.Cache, cfg.Cache.AppearanceTTL)
	}

	checks := map[string]httpx.HealthChecker{"postgres": repos.DBInfo}
	if repos.Cache != nil {
		checks["redis"] = repos.Cache
	}

	logger.Info("services initialized",
		"auth_mode", describeMode(cfg),
		"superuser_role", gate.SuperuserRole(),
		"redis", repos.Cache != nil,
		"metrics", metricsSink.Enabled(),
	)

	return &ServiceContainer{
		Auth: authSvc,
		Settings: service.NewSettingsService(service.SettingsServiceOptions{
			Repo:  repos.Settings,
			Cache: appearanceCache,
			Auth:  authSvc,
		}),
		DatabaseInfo: service.NewDatabaseInfoService(service.DatabaseInfoServiceOptions{
			Repo:       repos.DBInfo,
			Connection: ConnectionSummary(cfg.Postgres),
			Auth:       authSvc,
		}),
		Sessions: sessions,
		Gate:     gate,
		Metrics:  metricsSink,
		Checks:   checks,
	}, nil
}

// buildMetrics never fails startup: a bad StatsD address logs an error and
// falls back to a discarding client.
func buildMetrics(cfg config.MetricsConfig, logger *slog.Logger) *statsd.Client {
	disabled := func() *statsd.Client {
		c, _ := statsd.NewClient(statsd.Config{})
		return c
	}
	if !cfg.IsEnabled() {
		return disabled()
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger.With("component", "metrics"),
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return disabled()
	}
	return client
}

// describeMode names the login methods on offer.
func describeMode(cfg *config.AppConfig) string {
	if cfg.Auth.Mode == config.AuthModePassword {
		return "password"
	}
	return fmt.Sprintf("password+%s", cfg.Auth.Mode)
}
