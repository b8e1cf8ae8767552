package config

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func parse(t *testing.T, vars map[string]string) AppConfig {
	t.Helper()
	t.Setenv("NODE_ENV", "")
	var cfg AppConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()
	return cfg
}

const goodSecret = "0123456789abcdef0123456789abcdef"

func TestAppConfig_Defaults(t *testing.T) {
	cfg := parse(t, map[string]string{"SESSION_SECRET": goodSecret})

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Session.CookieName != "salud-cpv-session" {
		t.Errorf("cookie name = %q", cfg.Session.CookieName)
	}
	if cfg.Session.TTL != 8*time.Hour {
		t.Errorf("ttl = %v", cfg.Session.TTL)
	}
	if cfg.Auth.Mode != AuthModePassword {
		t.Errorf("mode = %q", cfg.Auth.Mode)
	}
	if cfg.Auth.SuperuserRole != "Superusuario" {
		t.Errorf("superuser role = %q", cfg.Auth.SuperuserRole)
	}
	if cfg.Auth.Throttle.MaxAttempts != 5 || cfg.Auth.Throttle.Window != 15*time.Minute {
		t.Errorf("throttle = %+v", cfg.Auth.Throttle)
	}
	if !cfg.Redis.Enabled || cfg.Redis.KeyPrefix != "saludcpv:" {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	cfg := parse(t, map[string]string{
		"AUTH_MODE":               "OIDC",
		"AUTH_SUPERUSER_ROLE":     " Root ",
		"OAUTH_CLIENT_ID":         "backoffice",
		"OAUTH_CLIENT_SECRET":     "super-secret",
		"OAUTH_REDIRECT_URL":      "https://cpv.example/auth/callback",
		"OAUTH_DISCOVERY_URL":     "https://login.example/realms/cpv",
		"OAUTH_SCOPE":             "openid email",
		"DEV_AUTH_USERNAME":       "dev",
		"DEV_AUTH_EMAIL":          "dev@example.com",
		"AUTH_LOGIN_MAX_ATTEMPTS": "3",
		"AUTH_LOGIN_WINDOW":       "5m",
	})

	expected := AuthConfig{
		Mode:          AuthModeOIDC,
		SuperuserRole: "Root",
		OAuth: OAuthConfig{
			ClientID:      "backoffice",
			ClientSecret:  "super-secret",
			RedirectURL:   "https://cpv.example/auth/callback",
			Scope:         "openid email",
			DiscoveryURL:  "https://login.example/realms/cpv",
			UsernameClaim: "preferred_username",
		},
		DevAuth:  DevAuthConfig{Username: "dev", Email: "dev@example.com"},
		Throttle: LoginThrottleConfig{MaxAttempts: 3, Window: 5 * time.Minute},
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
	if err := cfg.Auth.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestAuthMode_RejectsUnknown(t *testing.T) {
	var cfg AppConfig
	err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{"AUTH_MODE": "ldap"}})
	if err == nil {
		t.Fatal("expected an error for AUTH_MODE=ldap")
	}
}

func TestSessionConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{name: "missing", secret: "", wantErr: true},
		{name: "short", secret: "too-short", wantErr: true},
		{name: "exactly minimum", secret: goodSecret, wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SessionConfig{Secret: tt.secret}
			err := s.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrSessionSecret) {
				t.Fatalf("expected ErrSessionSecret, got %v", err)
			}
		})
	}
}

func TestAppConfig_ValidateJoinsErrors(t *testing.T) {
	cfg := parse(t, map[string]string{
		"AUTH_MODE":    "oidc",
		"DB_PORT":      "0",
		"LOG_FORMAT":   "xml",
		"APP_BASE_URL": "not a url",
	})

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if !errors.Is(err, ErrSessionSecret) {
		t.Errorf("missing secret not reported: %v", err)
	}
	for _, want := range []string{"OAUTH_DISCOVERY_URL", "OAUTH_CLIENT_ID", "DB_PORT", "LOG_FORMAT", "APP_BASE_URL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %s in %v", want, err)
		}
	}
}

func TestAuthConfig_DevModeNeedsUsername(t *testing.T) {
	a := AuthConfig{Mode: AuthModeDev}
	a.Sanitize()
	a.DevAuth.Username = ""
	if err := a.Validate(); err == nil {
		t.Fatal("expected error without DEV_AUTH_USERNAME")
	}
}

func TestAuthConfig_SanitizeRestoresDevUsername(t *testing.T) {
	a := AuthConfig{Mode: AuthModeDev, DevAuth: DevAuthConfig{Username: "   "}}
	a.Sanitize()
	if a.DevAuth.Username != "admin" {
		t.Fatalf("expected dev username admin, got %q", a.DevAuth.Username)
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestAuthConfig_SanitizeClampsThrottle(t *testing.T) {
	a := AuthConfig{Throttle: LoginThrottleConfig{MaxAttempts: -1, Window: -time.Second}}
	a.Sanitize()
	if a.Throttle.MaxAttempts != 5 || a.Throttle.Window != 15*time.Minute {
		t.Fatalf("throttle not clamped: %+v", a.Throttle)
	}
	if a.Mode != AuthModePassword {
		t.Fatalf("mode = %q", a.Mode)
	}
}

func TestRedisConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RedisConfig
		wantErr bool
	}{
		{name: "disabled ignores everything", cfg: RedisConfig{Enabled: false, UseCluster: true, UseSentinel: true}},
		{name: "direct", cfg: RedisConfig{Enabled: true, URI: "localhost:6379"}},
		{name: "direct without uri", cfg: RedisConfig{Enabled: true}, wantErr: true},
		{name: "sentinel without nodes", cfg: RedisConfig{Enabled: true, UseSentinel: true}, wantErr: true},
		{name: "cluster from uri", cfg: RedisConfig{Enabled: true, UseCluster: true, URI: "redis://c:6379"}},
		{name: "both topologies", cfg: RedisConfig{Enabled: true, UseCluster: true, UseSentinel: true, SentinelNodes: []string{"s:26379"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogConfig(t *testing.T) {
	l := LogConfig{Level: " DEBUG "}
	l.Sanitize(true)
	if l.Format != "text" {
		t.Fatalf("dev format = %q", l.Format)
	}
	lvl, err := l.SlogLevel()
	if err != nil || lvl != slog.LevelDebug {
		t.Fatalf("level = %v, %v", lvl, err)
	}

	l = LogConfig{Level: "chatty", Format: "json"}
	if err := l.Validate(); err == nil {
		t.Fatal("expected an invalid level error")
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	h := HTTPConfig{Addr: " ", BaseURL: "https://cpv.example/ ", ShutdownTimeout: 0}
	h.Sanitize()
	if h.Addr != ":8080" {
		t.Errorf("addr = %q", h.Addr)
	}
	if h.BaseURL != "https://cpv.example" {
		t.Errorf("base url = %q", h.BaseURL)
	}
	if h.ShutdownTimeout != 10*time.Second {
		t.Errorf("shutdown timeout = %v", h.ShutdownTimeout)
	}
	if err := h.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestDetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := AppConfig{}
	cfg.Sanitize()
	if !cfg.IsDev {
		t.Fatal("expected NODE_ENV=development to enable dev mode")
	}
	if cfg.Log.Format != "text" {
		t.Fatalf("expected text logs in dev, got %q", cfg.Log.Format)
	}
}

func TestMetricsConfig_Sanitize(t *testing.T) {
	cfg := parse(t, map[string]string{"METRICS_ENABLED": "true", "METRICS_STATSD_ADDRESS": " statsd:8125 "})
	if !cfg.Metrics.IsEnabled() || cfg.Metrics.StatsdAddress != "statsd:8125" {
		t.Fatalf("metrics = %+v", cfg.Metrics)
	}
	if cfg.Metrics.Prefix != "saludcpv" {
		t.Errorf("prefix = %q", cfg.Metrics.Prefix)
	}

	m := MetricsConfig{Enabled: true, StatsdAddress: "  "}
	m.Sanitize()
	if m.IsEnabled() {
		t.Error("blank address must disable metrics")
	}
}
