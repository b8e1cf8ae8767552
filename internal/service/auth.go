package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noe-create/medidhub-cpv-sub001/internal/core"
	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
	apperrors "github.com/noe-create/medidhub-cpv-sub001/internal/errors"
	"github.com/noe-create/medidhub-cpv-sub001/internal/observability/metrics"
	"github.com/noe-create/medidhub-cpv-sub001/internal/observability/statsd"
	"github.com/noe-create/medidhub-cpv-sub001/internal/ports"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountDisabled is returned once the password checks out for an inactive user.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrTooManyAttempts matches *ThrottledError.
	ErrTooManyAttempts = errors.New("too many login attempts")
	// ErrUnknownIdentity means the IdP user has no directory entry.
	ErrUnknownIdentity = errors.New("identity not registered")
	// ErrExternalLoginDisabled means no AuthProvider is configured.
	ErrExternalLoginDisabled = errors.New("external login not configured")
)

// ThrottledError reports how long the caller must wait.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many login attempts; retry in %s", e.RetryAfter.Round(time.Second))
}

// Is lets errors.Is(err, ErrTooManyAttempts) succeed.
func (e *ThrottledError) Is(target error) bool { return target == ErrTooManyAttempts }

// AuthSecurity groups the credential and permission checks.
type AuthSecurity struct {
	Hasher ports.PasswordHasher
	// DummyHash is compared against for unknown usernames so timing does not
	// reveal which accounts exist.
	DummyHash string
	Limiter   ports.LoginLimiter // optional
	Gate      domainauth.Gate
}

// AuthRuntime groups the optional collaborators.
type AuthRuntime struct {
	Provider ports.AuthProvider // nil disables SSO
	Metrics  statsd.Sink        // optional
	Logger   *slog.Logger
	Now      func() time.Time
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users    core.UserRepository
	Security AuthSecurity
	Runtime  AuthRuntime
}

// AuthService logs users in against the directory and answers permission checks.
type AuthService struct {
	users    core.UserRepository
	hasher   ports.PasswordHasher
	dummy    string
	limiter  ports.LoginLimiter
	gate     domainauth.Gate
	provider ports.AuthProvider
	metrics  statsd.Sink
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService constructs a new AuthService. Users and Hasher are required.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Users == nil {
		panic("auth service: Users is required")
	}
	if opts.Security.Hasher == nil {
		panic("auth service: Hasher is required")
	}
	logger := opts.Runtime.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Runtime.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:    opts.Users,
		hasher:   opts.Security.Hasher,
		dummy:    opts.Security.DummyHash,
		limiter:  opts.Security.Limiter,
		gate:     opts.Security.Gate,
		provider: opts.Runtime.Provider,
		metrics:  opts.Runtime.Metrics,
		logger:   logger.With("component", "auth"),
		now:      now,
	}
}

// ExternalLoginEnabled reports whether an AuthProvider is configured.
func (s *AuthService) ExternalLoginEnabled() bool { return s.provider != nil }

// LoginInput is a password login attempt.
type LoginInput struct {
	Username string
	Password string
	ClientIP string
}

// Login verifies credentials and returns the session snapshot to seal into the cookie.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (domainauth.Session, error) {
	start := s.now()
	sess, err := s.login(ctx, in)
	s.emitLogin("password", err, s.now().Sub(start))
	return sess, err
}

func (s *AuthService) login(ctx context.Context, in LoginInput) (domainauth.Session, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return domainauth.DefaultSession(), ErrInvalidCredentials
	}
	keys := throttleKeys(username, in.ClientIP)
	if err := s.checkThrottle(ctx, keys); err != nil {
		return domainauth.DefaultSession(), err
	}

	rec, err := s.users.FindByUsername(ctx, username)
	switch {
	case apperrors.IsNotFound(err):
		if s.dummy != "" {
			_ = s.hasher.Compare(s.dummy, in.Password)
		}
		s.recordFailure(ctx, keys)
		return domainauth.DefaultSession(), ErrInvalidCredentials
	case err != nil:
		return domainauth.DefaultSession(), fmt.Errorf("lookup user: %w", err)
	}

	if err := s.hasher.Compare(rec.PasswordHash, in.Password); err != nil {
		s.recordFailure(ctx, keys)
		s.logger.InfoContext(ctx, "login failed", "username", username, "client_ip", in.ClientIP)
		return domainauth.DefaultSession(), ErrInvalidCredentials
	}
	if !rec.Active {
		return domainauth.DefaultSession(), ErrAccountDisabled
	}

	s.resetThrottle(ctx, keys)
	return s.startSession(ctx, rec, "password"), nil
}

// BeginLoginResult contains the result of beginning an external login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginExternalLogin starts an IdP flow.
func (s *AuthService) BeginExternalLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if s.provider == nil {
		return nil, ErrExternalLoginDisabled
	}
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing an external login.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteExternalLogin exchanges the code and resolves the identity against the directory.
func (s *AuthService) CompleteExternalLogin(ctx context.Context, in CompleteLoginInput) (domainauth.Session, error) {
	start := s.now()
	sess, err := s.completeExternalLogin(ctx, in)
	s.emitLogin("external", err, s.now().Sub(start))
	return sess, err
}

func (s *AuthService) completeExternalLogin(ctx context.Context, in CompleteLoginInput) (domainauth.Session, error) {
	if s.provider == nil {
		return domainauth.DefaultSession(), ErrExternalLoginDisabled
	}
	if in.Code == "" {
		return domainauth.DefaultSession(), errors.New("authorization code is required")
	}
	if in.State == "" {
		return domainauth.DefaultSession(), errors.New("state parameter is required")
	}
	if in.Nonce == "" {
		return domainauth.DefaultSession(), errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput(in))
	if err != nil {
		return domainauth.DefaultSession(), fmt.Errorf("exchange authorization code: %w", err)
	}

	rec, err := s.users.FindByUsername(ctx, identity.Username)
	switch {
	case apperrors.IsNotFound(err), apperrors.IsValidation(err):
		s.logger.WarnContext(ctx, "external identity not in directory", "username", identity.Username)
		return domainauth.DefaultSession(), ErrUnknownIdentity
	case err != nil:
		return domainauth.DefaultSession(), fmt.Errorf("lookup user: %w", err)
	}
	if !rec.Active {
		return domainauth.DefaultSession(), ErrAccountDisabled
	}
	return s.startSession(ctx, rec, "external"), nil
}

// Authorize runs the permission gate and logs denials.
func (s *AuthService) Authorize(ctx context.Context, sess domainauth.Session, perm domainauth.Permission) error {
	err := s.gate.Authorize(sess, perm)
	var fe *domainauth.ForbiddenError
	if errors.As(err, &fe) {
		s.logger.WarnContext(ctx, "permission denied",
			"username", fe.Username,
			"role", fe.Role,
			"permission", string(fe.Permission),
		)
		metrics.EmitDenied(s.metrics, string(fe.Permission))
	}
	return err
}

func (s *AuthService) emitLogin(method string, err error, d time.Duration) {
	metrics.EmitLogin(s.metrics, metrics.LoginMetric{
		Method:   method,
		Reason:   loginFailureReason(err),
		Err:      err,
		Duration: d,
	})
}

// loginFailureReason labels expected failures; unexpected errors get "".
func loginFailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrTooManyAttempts):
		return "throttled"
	case errors.Is(err, ErrAccountDisabled):
		return "disabled"
	case errors.Is(err, ErrUnknownIdentity):
		return "unknown_identity"
	default:
		return ""
	}
}

func (s *AuthService) startSession(ctx context.Context, rec *model.UserRecord, method string) domainauth.Session {
	now := s.now()
	if err := s.users.TouchLastLogin(ctx, rec.ID, now); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login", "username", rec.Username, "error", err)
	}
	perms := make([]domainauth.Permission, 0, len(rec.Permissions))
	for _, p := range rec.Permissions {
		perms = append(perms, domainauth.Permission(p))
	}
	sess := domainauth.Session{
		ID: uuid.NewString(),
		User: &domainauth.User{
			ID:       rec.ID,
			Username: rec.Username,
			Role:     domainauth.Role{ID: rec.RoleID, Name: rec.RoleName},
		},
		IsLoggedIn:  true,
		Permissions: domainauth.NewPermissionSet(perms...),
		IssuedAt:    now.UTC(),
	}
	s.logger.InfoContext(ctx, "login succeeded",
		"username", rec.Username,
		"role", rec.RoleName,
		"method", method,
		"session_id", sess.ID,
	)
	return sess
}

// UsernameThrottleKey is the limiter key counting failures for username.
func UsernameThrottleKey(username string) string {
	return "user:" + strings.ToLower(strings.TrimSpace(username))
}

func throttleKeys(username, clientIP string) []string {
	keys := []string{UsernameThrottleKey(username)}
	if clientIP != "" {
		keys = append(keys, "ip:"+clientIP)
	}
	return keys
}

// checkThrottle fails open when the limiter is unavailable.
func (s *AuthService) checkThrottle(ctx context.Context, keys []string) error {
	if s.limiter == nil {
		return nil
	}
	var wait time.Duration
	for _, k := range keys {
		allowed, retry, err := s.limiter.Check(ctx, k)
		if err != nil {
			s.logger.WarnContext(ctx, "login limiter unavailable", "error", err)
			return nil
		}
		if !allowed && retry > wait {
			wait = retry
		}
		if !allowed && wait == 0 {
			wait = time.Second
		}
	}
	if wait > 0 {
		s.logger.WarnContext(ctx, "login throttled", "keys", keys, "retry_after", wait)
		return &ThrottledError{RetryAfter: wait}
	}
	return nil
}

func (s *AuthService) recordFailure(ctx context.Context, keys []string) {
	if s.limiter == nil {
		return
	}
	for _, k := range keys {
		if err := s.limiter.RecordFailure(ctx, k); err != nil {
			s.logger.WarnContext(ctx, "login limiter unavailable", "error", err)
			return
		}
	}
}

func (s *AuthService) resetThrottle(ctx context.Context, keys []string) {
	if s.limiter == nil {
		return
	}
	// Only the username counter resets; the address keeps its history.
	if err := s.limiter.Reset(ctx, keys[0]); err != nil {
		s.logger.WarnContext(ctx, "login limiter unavailable", "error", err)
	}
}
