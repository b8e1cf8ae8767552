package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockAuthProvider_Begin_Defaults(t *testing.T) {
	provider := NewMockAuthProvider()
	ctx := context.Background()

	authURL, state, nonce, err := provider.Begin(ctx, ports.BeginInput{RedirectURL: "/dashboard"})
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", authURL)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)

	_, state2, _, err := provider.Begin(ctx, ports.BeginInput{})
	require.NoError(t, err)
	assert.Equal(t, "state-2", state2)
}

func TestMockAuthProvider_ExchangeOverride(t *testing.T) {
	provider := NewMockAuthProvider()
	id, err := provider.Exchange(context.Background(), ports.ExchangeInput{})
	require.NoError(t, err)
	assert.Equal(t, "mock.user", id.Username)

	provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("idp down")
	}
	_, err = provider.Exchange(context.Background(), ports.ExchangeInput{})
	assert.EqualError(t, err, "idp down")
}

func TestMemorySessionStore_RoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	sess := domainauth.Session{
		IsLoggedIn:  true,
		User:        &domainauth.User{Username: "ana"},
		Permissions: domainauth.NewPermissionSet(),
	}

	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, httptest.NewRequest(http.MethodPost, "/login", nil), sess))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	assert.Equal(t, sess, store.Load(req))

	store.Clear(httptest.NewRecorder(), req)
	assert.Zero(t, store.Len())
	assert.Equal(t, domainauth.DefaultSession(), store.Load(req))
}

func TestMemoryLoginLimiter(t *testing.T) {
	l := NewMemoryLoginLimiter(2)
	ctx := context.Background()

	require.NoError(t, l.RecordFailure(ctx, "k"))
	ok, _, err := l.Check(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.RecordFailure(ctx, "k"))
	ok, retry, err := l.Check(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Positive(t, retry)

	require.NoError(t, l.Reset(ctx, "k"))
	assert.Zero(t, l.Failures("k"))
}
