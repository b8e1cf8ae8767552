package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	authmocks "github.com/noe-create/medidhub-cpv-sub001/internal/mocks/auth"
)

func TestRouteGate(t *testing.T) {
	store := authmocks.NewMemorySessionStore()
	loggedIn := store.Put(sessionFor("Recepcion"))

	h := RouteGate(store)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		path     string
		cookie   *http.Cookie
		want     int
		location string
	}{
		{name: "anonymous private", path: "/dashboard/x", want: http.StatusSeeOther, location: "/login"},
		{name: "logged in login", path: "/login", cookie: loggedIn, want: http.StatusSeeOther, location: "/dashboard"},
		{name: "logged in root", path: "/", cookie: loggedIn, want: http.StatusSeeOther, location: "/dashboard"},
		{name: "anonymous root", path: "/", want: http.StatusSeeOther, location: "/login"},
		{name: "logged in private", path: "/dashboard/pacientes", cookie: loggedIn, want: http.StatusNoContent},
		{name: "anonymous login", path: "/login", want: http.StatusNoContent},
		{name: "api excluded", path: "/api/settings/appearance", want: http.StatusNoContent},
		{name: "unknown cookie is anonymous", path: "/dashboard", cookie: &http.Cookie{Name: store.CookieName, Value: "999"}, want: http.StatusSeeOther, location: "/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestRouteGate_StoresSessionInContext(t *testing.T) {
	store := authmocks.NewMemorySessionStore()
	cookie := store.Put(sessionFor("Recepcion", domainauth.PermPatientsManage))

	var got domainauth.Session
	var present bool
	h := RouteGate(store)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, present = SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, present)
	assert.Equal(t, "ana", got.Username())
	assert.True(t, got.Permissions.Has(domainauth.PermPatientsManage))
}
