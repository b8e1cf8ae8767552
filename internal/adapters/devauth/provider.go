// Package devauth provides a config-driven AuthProvider for local development.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/ports"
)

// Config names the directory user every dev login resolves to.
type Config struct {
	Username        string
	Email           string
	SessionDuration time.Duration // default 8h when zero
	// CallbackPath defaults to /auth/callback.
	CallbackPath string
}

// Provider implements ports.AuthProvider for local development. Begin
// redirects straight back to the callback with a locally generated state and
// Exchange ignores the code and returns the configured identity.
type Provider struct {
	username     string
	email        string
	duration     time.Duration
	callbackPath string
	now          func() time.Time
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		return nil, errors.New("dev auth: Username is required")
	}
	p := &Provider{
		username:     username,
		email:        cfg.Email,
		duration:     cfg.SessionDuration,
		callbackPath: cfg.CallbackPath,
		now:          time.Now,
	}
	if p.duration <= 0 {
		p.duration = 8 * time.Hour
	}
	if p.callbackPath == "" {
		p.callbackPath = "/auth/callback"
	}
	return p, nil
}

// Begin returns the local callback URL plus random state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {"dev"}, "state": {state}}
	return p.callbackPath + "?" + q.Encode(), state, nonce, nil
}

// Exchange returns the configured identity; state and nonce checks happen in the handler.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	return domainauth.Identity{
		Username:  p.username,
		Email:     p.email,
		ExpiresAt: p.now().Add(p.duration),
	}, nil
}

func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
