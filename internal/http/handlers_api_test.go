package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
)

func TestAppearanceAPI_IsPublic(t *testing.T) {
	f := newRouterFixture(t, func(f *routerFixture) {
		f.settings.GetFunc = func(context.Context) (model.AppearanceSettings, error) {
			return model.AppearanceSettings{ClinicName: "CPV", PrimaryColor: "#000000", Theme: "dark"}, nil
		}
	})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/settings/appearance", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.AppearanceSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "CPV", got.ClinicName)
	assert.Equal(t, "dark", got.Theme)
}

func TestAppearanceAPI_ErrorIsGeneric(t *testing.T) {
	f := newRouterFixture(t, func(f *routerFixture) {
		f.settings.GetFunc = func(context.Context) (model.AppearanceSettings, error) {
			return model.AppearanceSettings{}, errors.New("pq: password authentication failed")
		}
	})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/settings/appearance", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestHealth(t *testing.T) {
	t.Run("all up", func(t *testing.T) {
		f := newRouterFixture(t, func(f *routerFixture) {
			f.checks["postgres"] = healthFunc(func(context.Context) error { return nil })
			f.checks["redis"] = nil
		})
		rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, map[string]string{"postgres": "up"}, body.Checks)
	})

	t.Run("degraded", func(t *testing.T) {
		f := newRouterFixture(t, func(f *routerFixture) {
			f.checks["redis"] = healthFunc(func(context.Context) error { return errors.New("dial tcp: refused") })
		})
		rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.NotContains(t, rec.Body.String(), "refused")
	})

	t.Run("head", func(t *testing.T) {
		f := newRouterFixture(t)
		rec := f.do(httptest.NewRequest(http.MethodHead, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
