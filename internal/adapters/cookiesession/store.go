// Package cookiesession keeps the whole session in an encrypted, tamper-evident
// cookie. There is no server-side session table.
package cookiesession

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/noe-create/medidhub-cpv-sub001/internal/data/cryptoutil"
	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
)

const (
	// DefaultCookieName is the session cookie name.
	DefaultCookieName = "salud-cpv-session"
	// DefaultTTL bounds how long an issued session is accepted.
	DefaultTTL = 8 * time.Hour
	// MaxCookieSize is the browser limit for name plus value.
	MaxCookieSize = 4096

	keyInfo = "salud-cpv session cookie v1"
	// clockSkew tolerates small differences between replicas.
	clockSkew = time.Minute
)

// ErrCookieTooLarge is returned by Save when the sealed session exceeds MaxCookieSize.
var ErrCookieTooLarge = errors.New("session cookie exceeds 4096 bytes")

// Config controls the session cookie.
type Config struct {
	Name   string
	Secret string
	TTL    time.Duration
	Domain string
	// Secure forces the Secure attribute even on plain HTTP requests.
	Secure bool
	Logger *slog.Logger
	// Now is used for issue and expiry checks; defaults to time.Now.
	Now func() time.Time
}

// Store implements ports.SessionStore on top of an AES-GCM sealed cookie.
type Store struct {
	name   string
	ttl    time.Duration
	domain string
	secure bool
	sealer cryptoutil.Sealer
	logger *slog.Logger
	now    func() time.Time
}

// New validates cfg and builds a Store. A missing or short secret yields
// domainauth.ErrMisconfiguredSecret; callers must refuse to start.
func New(cfg Config) (*Store, error) {
	sealer, err := cryptoutil.NewSealerFromSecret(cfg.Secret, keyInfo)
	if err != nil {
		if errors.Is(err, cryptoutil.ErrSecretTooShort) {
			return nil, fmt.Errorf("%w: %w", domainauth.ErrMisconfiguredSecret, err)
		}
		return nil, fmt.Errorf("session sealer: %w", err)
	}

	s := &Store{
		name:   strings.TrimSpace(cfg.Name),
		ttl:    cfg.TTL,
		domain: cfg.Domain,
		secure: cfg.Secure,
		sealer: sealer,
		logger: cfg.Logger,
		now:    cfg.Now,
	}
	if s.name == "" {
		s.name = DefaultCookieName
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Name returns the cookie name.
func (s *Store) Name() string { return s.name }

// TTL returns the session lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }

// Load opens the session cookie. Absent, tampered, undecodable or expired
// cookies all yield DefaultSession; Load never fails the request.
func (s *Store) Load(r *http.Request) domainauth.Session {
	c, err := r.Cookie(s.name)
	if err != nil || c.Value == "" {
		return domainauth.DefaultSession()
	}

	payload, err := s.sealer.Open(c.Value, []byte(s.name))
	if err != nil {
		s.logger.Debug("session cookie rejected", "reason", err.Error())
		return domainauth.DefaultSession()
	}

	var sess domainauth.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		s.logger.Debug("session cookie undecodable", "error", err)
		return domainauth.DefaultSession()
	}
	if !sess.IsLoggedIn {
		return domainauth.DefaultSession()
	}
	if !s.fresh(sess.IssuedAt) {
		return domainauth.DefaultSession()
	}
	return sess
}

func (s *Store) fresh(issuedAt time.Time) bool {
	if issuedAt.IsZero() {
		return false
	}
	now := s.now()
	if issuedAt.After(now.Add(clockSkew)) {
		return false
	}
	return now.Sub(issuedAt) <= s.ttl
}

// Save seals sess into the cookie. A zero IssuedAt is stamped with the current time.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, sess domainauth.Session) error {
	if sess.IssuedAt.IsZero() {
		sess.IssuedAt = s.now().UTC()
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	value, err := s.sealer.Seal(payload, []byte(s.name))
	if err != nil {
		return fmt.Errorf("seal session: %w", err)
	}
	if len(s.name)+len(value) > MaxCookieSize {
		return ErrCookieTooLarge
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		Domain:   s.domain,
		HttpOnly: true,
		Secure:   s.isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
		Expires:  sess.IssuedAt.Add(s.ttl),
	})
	return nil
}

// Clear expires the session cookie, mirroring the attributes used by Save.
func (s *Store) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		Domain:   s.domain,
		HttpOnly: true,
		Secure:   s.isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

func (s *Store) isSecure(r *http.Request) bool {
	if s.secure {
		return true
	}
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
