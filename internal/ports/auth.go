// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"net/http"
	"time"

	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
)

// BeginInput carries inputs for initiating an external auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore reads and writes the session carried by the client.
// Load never fails: anything unreadable is the default session.
type SessionStore interface {
	Load(r *http.Request) domainauth.Session
	Save(w http.ResponseWriter, r *http.Request, sess domainauth.Session) error
	Clear(w http.ResponseWriter, r *http.Request)
}

// LoginLimiter throttles password attempts per key (username and client address).
type LoginLimiter interface {
	// Check reports whether another attempt is allowed and, if not, how long until the window resets.
	Check(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
	// RecordFailure counts a failed attempt against key.
	RecordFailure(ctx context.Context, key string) error
	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, key string) error
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
