package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
	authmocks "github.com/noe-create/medidhub-cpv-sub001/internal/mocks/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/service"
)

const testCSRFToken = "test-csrf-token"

type fakeAuthService struct {
	gate             domainauth.Gate
	external         bool
	LoginFunc        func(ctx context.Context, in service.LoginInput) (domainauth.Session, error)
	BeginFunc        func(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteFunc     func(ctx context.Context, in service.CompleteLoginInput) (domainauth.Session, error)
	authorizeCalls   int
	lastLoginRequest service.LoginInput
}

func (f *fakeAuthService) Authorize(_ context.Context, sess domainauth.Session, perm domainauth.Permission) error {
	f.authorizeCalls++
	return f.gate.Authorize(sess, perm)
}

func (f *fakeAuthService) Login(ctx context.Context, in service.LoginInput) (domainauth.Session, error) {
	f.lastLoginRequest = in
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, in)
	}
	return domainauth.DefaultSession(), service.ErrInvalidCredentials
}

func (f *fakeAuthService) ExternalLoginEnabled() bool { return f.external }

func (f *fakeAuthService) BeginExternalLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error) {
	if f.BeginFunc != nil {
		return f.BeginFunc(ctx, redirectURL)
	}
	return nil, service.ErrExternalLoginDisabled
}

func (f *fakeAuthService) CompleteExternalLogin(ctx context.Context, in service.CompleteLoginInput) (domainauth.Session, error) {
	if f.CompleteFunc != nil {
		return f.CompleteFunc(ctx, in)
	}
	return domainauth.DefaultSession(), service.ErrExternalLoginDisabled
}

type fakeSettingsService struct {
	GetFunc    func(ctx context.Context) (model.AppearanceSettings, error)
	UpdateFunc func(ctx context.Context, sess domainauth.Session, in model.AppearanceSettings) (model.AppearanceSettings, error)
}

func (f *fakeSettingsService) Get(ctx context.Context) (model.AppearanceSettings, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx)
	}
	return model.DefaultAppearance(), nil
}

func (f *fakeSettingsService) Update(ctx context.Context, sess domainauth.Session, in model.AppearanceSettings) (model.AppearanceSettings, error) {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, sess, in)
	}
	return in, nil
}

type fakeDatabaseService struct {
	DescribeFunc func(ctx context.Context, sess domainauth.Session) (*model.DatabaseReport, error)
}

func (f *fakeDatabaseService) Describe(ctx context.Context, sess domainauth.Session) (*model.DatabaseReport, error) {
	if f.DescribeFunc != nil {
		return f.DescribeFunc(ctx, sess)
	}
	return &model.DatabaseReport{}, nil
}

type healthFunc func(ctx context.Context) error

func (f healthFunc) Health(ctx context.Context) error { return f(ctx) }

type routerFixture struct {
	handler  http.Handler
	auth     *fakeAuthService
	settings *fakeSettingsService
	database *fakeDatabaseService
	sessions *authmocks.MemorySessionStore
	checks   map[string]HealthChecker
}

func newRouterFixture(t *testing.T, configure ...func(*routerFixture)) *routerFixture {
	t.Helper()
	gate := domainauth.NewGate("")
	f := &routerFixture{
		auth:     &fakeAuthService{gate: gate},
		settings: &fakeSettingsService{},
		database: &fakeDatabaseService{},
		sessions: authmocks.NewMemorySessionStore(),
		checks:   map[string]HealthChecker{},
	}
	for _, c := range configure {
		c(f)
	}
	h, err := NewRouter(RouterServices{
		Auth:     f.auth,
		Settings: f.settings,
		Database: f.database,
		Sessions: f.sessions,
		Gate:     gate,
		Checks:   f.checks,
		Options:  RouterOptions{CallbackURL: "http://localhost:8080/auth/callback"},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	f.handler = h
	return f
}

func (f *routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// login stores a session and returns its cookie.
func (f *routerFixture) login(sess domainauth.Session) *http.Cookie {
	return f.sessions.Put(sess)
}

func getRequest(path string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "text/html")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// formRequest builds a browser form POST that passes the double-submit check.
func formRequest(path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	if form == nil {
		form = url.Values{}
	}
	form.Set(DefaultCSRFFieldName, testCSRFToken)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func sessionFor(role string, perms ...domainauth.Permission) domainauth.Session {
	return domainauth.Session{
		ID:          "sess-1",
		IsLoggedIn:  true,
		User:        &domainauth.User{ID: 7, Username: "ana", Role: domainauth.Role{ID: 2, Name: role}},
		Permissions: domainauth.NewPermissionSet(perms...),
	}
}
