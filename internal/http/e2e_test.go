package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/net/publicsuffix"

	"github.com/noe-create/medidhub-cpv-sub001/internal/adapters/cookiesession"
	"github.com/noe-create/medidhub-cpv-sub001/internal/adapters/passwords"
	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
	"github.com/noe-create/medidhub-cpv-sub001/internal/mocks"
	authmocks "github.com/noe-create/medidhub-cpv-sub001/internal/mocks/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/service"
)

type browser struct {
	t      *testing.T
	srv    *httptest.Server
	jar    *cookiejar.Jar
	client *http.Client
	base   *url.URL
}

// newBrowser serves the full router backed by users and returns a client with
// a real cookie jar.
func newBrowser(t *testing.T, users *mocks.MockUserRepository, hasher passwords.Bcrypt) *browser {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	gate := domainauth.NewGate("")
	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Users: users,
		Security: service.AuthSecurity{
			Hasher:    hasher,
			DummyHash: passwords.DummyHash,
			Limiter:   authmocks.NewMemoryLoginLimiter(5),
			Gate:      gate,
		},
		Runtime: service.AuthRuntime{Logger: logger},
	})
	store, err := cookiesession.New(cookiesession.Config{
		Secret: strings.Repeat("s", 48),
		Logger: logger,
	})
	require.NoError(t, err)

	h, err := NewRouter(RouterServices{
		Auth:     authSvc,
		Settings: &fakeSettingsService{},
		Database: &fakeDatabaseService{},
		Sessions: store,
		Gate:     gate,
		Logger:   logger,
	})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	require.NoError(t, err)
	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return &browser{t: t, srv: srv, jar: jar, client: &http.Client{Jar: jar}, base: base}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	req.Header.Set("Accept", "text/html")
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.srv.URL+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	if v := b.cookie(DefaultCSRFCookieName); v != "" {
		form.Set(DefaultCSRFFieldName, v)
	}
	req, err := http.NewRequest(http.MethodPost, b.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) cookie(name string) string {
	for _, c := range b.jar.Cookies(b.base) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func hashFor(t *testing.T, hasher passwords.Bcrypt, password string) string {
	t.Helper()
	hash, err := hasher.Hash(password)
	require.NoError(t, err)
	return hash
}

// TestBrowserFlow drives the sealed cookie through login, a permission-gated
// page and logout using a real cookie jar.
func TestBrowserFlow(t *testing.T) {
	hasher := passwords.Bcrypt{Cost: bcrypt.MinCost}

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	users.EXPECT().FindByUsername(gomock.Any(), "recepcion").Return(&model.UserRecord{
		ID:           3,
		Username:     "recepcion",
		PasswordHash: hashFor(t, hasher, "clave-segura"),
		Active:       true,
		RoleID:       2,
		RoleName:     "Recepcion",
		Permissions:  []string{string(domainauth.PermSettingsManage)},
	}, nil)
	users.EXPECT().TouchLastLogin(gomock.Any(), int64(3), gomock.Any()).Return(nil)

	b := newBrowser(t, users, hasher)

	// Anonymous visitors land on the login page.
	resp, body := b.get("/dashboard/settings")
	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Contains(t, body, `action="/login"`)

	resp, body = b.post("/login", url.Values{"username": {"recepcion"}, "password": {"clave-segura"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Request.URL.Path)
	assert.Contains(t, body, "Bienvenido, recepcion")

	sealed := b.cookie(cookiesession.DefaultCookieName)
	require.NotEmpty(t, sealed)
	assert.NotContains(t, sealed, "recepcion")

	resp, _ = b.get("/dashboard/settings")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/dashboard/settings", resp.Request.URL.Path)

	resp, _ = b.get("/dashboard/database")
	assert.Equal(t, "/dashboard", resp.Request.URL.Path)

	resp, _ = b.get("/login")
	assert.Equal(t, "/dashboard", resp.Request.URL.Path)

	resp, _ = b.post("/logout", url.Values{})
	assert.Equal(t, "/login", resp.Request.URL.Path)

	resp, _ = b.get("/dashboard")
	assert.Equal(t, "/login", resp.Request.URL.Path)
}

// A superuser role carries no grants; the cookie must still hold a logged-in
// session and every gated page must open.
func TestBrowserFlow_SuperuserWithoutGrants(t *testing.T) {
	hasher := passwords.Bcrypt{Cost: bcrypt.MinCost}

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	users.EXPECT().FindByUsername(gomock.Any(), "admin").Return(&model.UserRecord{
		ID:           1,
		Username:     "admin",
		PasswordHash: hashFor(t, hasher, "clave-segura"),
		Active:       true,
		RoleID:       1,
		RoleName:     domainauth.DefaultSuperuserRole,
		Permissions:  []string{},
	}, nil)
	users.EXPECT().TouchLastLogin(gomock.Any(), int64(1), gomock.Any()).Return(nil)

	b := newBrowser(t, users, hasher)

	resp, body := b.post("/login", url.Values{"username": {"admin"}, "password": {"clave-segura"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Request.URL.Path)
	assert.Contains(t, body, "Bienvenido, admin")

	for _, path := range []string{"/dashboard", "/dashboard/settings", "/dashboard/database"} {
		resp, _ = b.get(path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, path, resp.Request.URL.Path, path)
	}

	resp, _ = b.get("/login")
	assert.Equal(t, "/dashboard", resp.Request.URL.Path)
}
