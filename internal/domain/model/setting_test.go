package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppearanceFromSettings(t *testing.T) {
	got := AppearanceFromSettings([]Setting{
		{Key: SettingClinicName, Value: "CPV Norte"},
		{Key: SettingLogoURL, Value: "/static/logo.png"},
		{Key: "appearance.unknown", Value: "ignored"},
	})

	def := DefaultAppearance()
	assert.Equal(t, "CPV Norte", got.ClinicName)
	assert.Equal(t, "/static/logo.png", got.LogoURL)
	assert.Equal(t, def.PrimaryColor, got.PrimaryColor)
	assert.Equal(t, def.Theme, got.Theme)
}

func TestAppearanceSettings_SettingsRoundTrip(t *testing.T) {
	a := AppearanceSettings{ClinicName: "CPV", PrimaryColor: "#112233", LogoURL: "https://cdn.example/l.svg", Theme: "dark"}
	rows := a.Settings()

	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, r.Key)
	}
	assert.IsIncreasing(t, keys)
	assert.Equal(t, a, AppearanceFromSettings(rows))
}

func TestAppearanceSettings_NormalizeAndValidate(t *testing.T) {
	a := AppearanceSettings{ClinicName: "  Salud CPV ", PrimaryColor: " #0F766E ", Theme: " Dark "}
	a.Normalize()
	assert.Equal(t, "Salud CPV", a.ClinicName)
	assert.Equal(t, "#0f766e", a.PrimaryColor)
	assert.Equal(t, "dark", a.Theme)
	assert.NoError(t, a.Validate())
}

func TestAppearanceSettings_ValidateRejects(t *testing.T) {
	base := DefaultAppearance()
	tests := []struct {
		name   string
		mutate func(*AppearanceSettings)
		key    string
	}{
		{name: "empty clinic name", mutate: func(a *AppearanceSettings) { a.ClinicName = "" }, key: SettingClinicName},
		{name: "short color", mutate: func(a *AppearanceSettings) { a.PrimaryColor = "#fff" }, key: SettingPrimaryColor},
		{name: "http logo", mutate: func(a *AppearanceSettings) { a.LogoURL = "http://x/logo.png" }, key: SettingLogoURL},
		{name: "javascript logo", mutate: func(a *AppearanceSettings) { a.LogoURL = "javascript:alert(1)" }, key: SettingLogoURL},
		{name: "unknown theme", mutate: func(a *AppearanceSettings) { a.Theme = "neon" }, key: SettingTheme},
		{name: "value too long", mutate: func(a *AppearanceSettings) { a.ClinicName = strings.Repeat("x", 513) }, key: SettingClinicName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := base
			tt.mutate(&a)
			err := a.Validate()

			var verr *SettingsValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.key, verr.Key)
		})
	}
}
