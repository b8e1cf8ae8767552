package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/noe-create/medidhub-cpv-sub001/config"
	"github.com/noe-create/medidhub-cpv-sub001/internal/adapters/cookiesession"
	"github.com/noe-create/medidhub-cpv-sub001/internal/adapters/devauth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/adapters/oidc"
	redisadapter "github.com/noe-create/medidhub-cpv-sub001/internal/adapters/redis"
	"github.com/noe-create/medidhub-cpv-sub001/internal/ports"
)

// AuthConfig contains configuration for the auth adapters.
type AuthConfig struct {
	App         *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthProvider returns the external login provider for the configured mode.
// Password mode has none and returns nil.
//
//nolint:ireturn // the provider is chosen at runtime.
func BuildAuthProvider(cfg AuthConfig) (ports.AuthProvider, error) {
	auth := cfg.App.Auth
	switch auth.Mode {
	case config.AuthModePassword, "":
		return nil, nil
	case config.AuthModeDev:
		if !cfg.App.IsDev && cfg.Logger != nil {
			cfg.Logger.Warn("AUTH_MODE=dev outside development; anyone can log in as the dev user",
				"username", auth.DevAuth.Username)
		}
		prov, err := devauth.NewProvider(devauth.Config{
			Username:        auth.DevAuth.Username,
			Email:           auth.DevAuth.Email,
			SessionDuration: cfg.App.Session.TTL,
		})
		if err != nil {
			return nil, fmt.Errorf("dev auth provider: %w", err)
		}
		return prov, nil
	case config.AuthModeOIDC:
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:      auth.OAuth.ClientID,
			ClientSecret:  auth.OAuth.ClientSecret,
			RedirectURL:   auth.OAuth.RedirectURL,
			Scope:         auth.OAuth.Scope,
			DiscoveryURL:  auth.OAuth.DiscoveryURL,
			UsernameClaim: auth.OAuth.UsernameClaim,
		})
		if err != nil {
			return nil, fmt.Errorf("oidc provider: %w", err)
		}
		return prov, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", auth.Mode)
	}
}

// CallbackURL is the absolute redirect the external provider returns to.
func CallbackURL(cfg *config.AppConfig) string {
	if cfg.Auth.Mode == config.AuthModeOIDC {
		return cfg.Auth.OAuth.RedirectURL
	}
	return cfg.HTTP.BaseURL + "/auth/callback"
}

// BuildSessionStore creates the sealed cookie store. It fails when the secret is unusable.
func BuildSessionStore(cfg AuthConfig) (*cookiesession.Store, error) {
	store, err := cookiesession.New(cookiesession.Config{
		Name:   cfg.App.Session.CookieName,
		Secret: cfg.App.Session.Secret,
		TTL:    cfg.App.Session.TTL,
		Domain: cfg.App.HTTP.CookieDomain,
		Secure: cfg.App.Session.Secure,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	return store, nil
}

// BuildLoginLimiter returns the Redis-backed throttle, or nil when Redis is disabled.
//
//nolint:ireturn // nil means throttling is off.
func BuildLoginLimiter(cfg AuthConfig) ports.LoginLimiter {
	if cfg.RedisClient == nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("login throttling disabled: redis not configured")
		}
		return nil
	}
	return redisadapter.NewLoginLimiter(cfg.RedisClient, redisadapter.LimiterConfig{
		MaxAttempts: cfg.App.Auth.Throttle.MaxAttempts,
		Window:      cfg.App.Auth.Throttle.Window,
		Prefix:      cfg.App.Redis.KeyPrefix + "login:fail:",
	})
}
