package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// MinSessionSecretLen is the shortest SESSION_SECRET accepted.
const MinSessionSecretLen = 32

// ErrSessionSecret is returned by Validate when the cookie secret is missing or short.
var ErrSessionSecret = fmt.Errorf("SESSION_SECRET must be at least %d characters", MinSessionSecretLen)

// SessionConfig controls the sealed session cookie.
type SessionConfig struct {
	// Secret derives the cookie encryption key. Never logged.
	Secret     string        `env:"SECRET"`
	CookieName string        `env:"COOKIE_NAME" envDefault:"salud-cpv-session"`
	TTL        time.Duration `env:"TTL"         envDefault:"8h"`
	// Secure forces the Secure attribute when TLS terminates upstream without X-Forwarded-Proto.
	Secure bool `env:"COOKIE_SECURE" envDefault:"false"`
}

// Sanitize trims values and restores defaults.
func (s *SessionConfig) Sanitize() {
	s.CookieName = strings.TrimSpace(s.CookieName)
	if s.CookieName == "" {
		s.CookieName = "salud-cpv-session"
	}
	if s.TTL <= 0 {
		s.TTL = 8 * time.Hour
	}
}

// Validate refuses to start without a usable secret.
func (s *SessionConfig) Validate() error {
	if utf8.RuneCountInString(s.Secret) < MinSessionSecretLen {
		return ErrSessionSecret
	}
	return nil
}

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModePassword checks usernames and bcrypt hashes against the user directory.
	AuthModePassword AuthMode = "password"
	// AuthModeOIDC adds an OpenID Connect login next to the password form.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeDev adds a one-click login as DEV_AUTH_USERNAME (development only).
	AuthModeDev AuthMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "password", "oidc", "dev":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: password, oidc, dev)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	// UsernameClaim names the ID token claim matched against users.username.
	UsernameClaim string `env:"USERNAME_CLAIM" envDefault:"preferred_username"`
}

// DevAuthConfig controls dev authentication identity.
// Used when AUTH_MODE=dev for development and testing.
type DevAuthConfig struct {
	Username string `env:"USERNAME" envDefault:"admin"`
	Email    string `env:"EMAIL"    envDefault:"admin@localhost"`
}

// LoginThrottleConfig bounds failed password attempts per username and per client address.
type LoginThrottleConfig struct {
	MaxAttempts int           `env:"AUTH_LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	Window      time.Duration `env:"AUTH_LOGIN_WINDOW"       envDefault:"15m"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which external provider, if any, is offered next to passwords.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"password"`

	// SuperuserRole is the role name that bypasses every permission check.
	SuperuserRole string `env:"AUTH_SUPERUSER_ROLE" envDefault:"Superusuario"`

	OAuth    OAuthConfig   `envPrefix:"OAUTH_"`
	DevAuth  DevAuthConfig `envPrefix:"DEV_AUTH_"`
	Throttle LoginThrottleConfig
}

// Sanitize trims values and clamps the throttle.
func (a *AuthConfig) Sanitize() {
	if a.Mode == "" {
		a.Mode = AuthModePassword
	}
	a.SuperuserRole = strings.TrimSpace(a.SuperuserRole)
	if a.SuperuserRole == "" {
		a.SuperuserRole = "Superusuario"
	}
	a.OAuth.DiscoveryURL = strings.TrimSpace(a.OAuth.DiscoveryURL)
	a.OAuth.RedirectURL = strings.TrimSpace(a.OAuth.RedirectURL)
	a.DevAuth.Username = strings.TrimSpace(a.DevAuth.Username)
	if a.DevAuth.Username == "" {
		a.DevAuth.Username = "admin"
	}
	if a.Throttle.MaxAttempts < 1 {
		a.Throttle.MaxAttempts = 5
	}
	if a.Throttle.Window <= 0 {
		a.Throttle.Window = 15 * time.Minute
	}
}

// Validate checks the settings required by the selected mode.
func (a *AuthConfig) Validate() error {
	switch a.Mode {
	case AuthModePassword:
		return nil
	case AuthModeOIDC:
		var errs []error
		if a.OAuth.DiscoveryURL == "" {
			errs = append(errs, errors.New("OAUTH_DISCOVERY_URL is required when AUTH_MODE=oidc"))
		}
		if a.OAuth.ClientID == "" {
			errs = append(errs, errors.New("OAUTH_CLIENT_ID is required when AUTH_MODE=oidc"))
		}
		if a.OAuth.ClientSecret == "" {
			errs = append(errs, errors.New("OAUTH_CLIENT_SECRET is required when AUTH_MODE=oidc"))
		}
		if u, err := url.Parse(a.OAuth.RedirectURL); err != nil || !u.IsAbs() {
			errs = append(errs, errors.New("OAUTH_REDIRECT_URL must be an absolute URL"))
		}
		return errors.Join(errs...)
	case AuthModeDev:
		if a.DevAuth.Username == "" {
			return errors.New("DEV_AUTH_USERNAME is required when AUTH_MODE=dev")
		}
		return nil
	default:
		return fmt.Errorf("invalid AUTH_MODE %q", a.Mode)
	}
}
