package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Appearance setting keys stored in system_settings.
const (
	SettingClinicName   = "appearance.clinic_name"
	SettingPrimaryColor = "appearance.primary_color"
	SettingLogoURL      = "appearance.logo_url"
	SettingTheme        = "appearance.theme"
)

const maxSettingValueLen = 512

//nolint:gochecknoglobals // compiled once
var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Setting is one key/value row of system_settings.
type Setting struct {
	Key       string    `json:"key"        db:"key"`
	Value     string    `json:"value"      db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AppearanceSettings is the typed view used by templates and the public theming endpoint.
type AppearanceSettings struct {
	ClinicName   string `json:"clinicName"`
	PrimaryColor string `json:"primaryColor"`
	LogoURL      string `json:"logoUrl"`
	Theme        string `json:"theme"`
}

// DefaultAppearance is used for keys that have never been saved.
func DefaultAppearance() AppearanceSettings {
	return AppearanceSettings{
		ClinicName:   "Salud CPV",
		PrimaryColor: "#0f766e",
		Theme:        "light",
	}
}

// AppearanceFromSettings overlays stored rows on the defaults. Unknown keys are ignored.
func AppearanceFromSettings(rows []Setting) AppearanceSettings {
	out := DefaultAppearance()
	for _, s := range rows {
		switch s.Key {
		case SettingClinicName:
			out.ClinicName = s.Value
		case SettingPrimaryColor:
			out.PrimaryColor = s.Value
		case SettingLogoURL:
			out.LogoURL = s.Value
		case SettingTheme:
			out.Theme = s.Value
		}
	}
	return out
}

// Settings flattens the typed view into rows ordered by key.
func (a AppearanceSettings) Settings() []Setting {
	return []Setting{
		{Key: SettingClinicName, Value: a.ClinicName},
		{Key: SettingLogoURL, Value: a.LogoURL},
		{Key: SettingPrimaryColor, Value: a.PrimaryColor},
		{Key: SettingTheme, Value: a.Theme},
	}
}

// Normalize trims whitespace and lowercases the theme and color.
func (a *AppearanceSettings) Normalize() {
	a.ClinicName = strings.TrimSpace(a.ClinicName)
	a.PrimaryColor = strings.ToLower(strings.TrimSpace(a.PrimaryColor))
	a.LogoURL = strings.TrimSpace(a.LogoURL)
	a.Theme = strings.ToLower(strings.TrimSpace(a.Theme))
}

// SettingsValidationError reports the first invalid field.
type SettingsValidationError struct {
	Key    string
	Reason string
}

func (e *SettingsValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

// Validate checks every field; call Normalize first.
func (a AppearanceSettings) Validate() error {
	if a.ClinicName == "" {
		return &SettingsValidationError{Key: SettingClinicName, Reason: "is required"}
	}
	for _, s := range a.Settings() {
		if utf8.RuneCountInString(s.Value) > maxSettingValueLen {
			return &SettingsValidationError{Key: s.Key, Reason: "is too long"}
		}
	}
	if !hexColor.MatchString(a.PrimaryColor) {
		return &SettingsValidationError{Key: SettingPrimaryColor, Reason: "must be a #rrggbb color"}
	}
	if a.LogoURL != "" && !strings.HasPrefix(a.LogoURL, "https://") && !strings.HasPrefix(a.LogoURL, "/") {
		return &SettingsValidationError{Key: SettingLogoURL, Reason: "must be an https URL or a site path"}
	}
	switch a.Theme {
	case "light", "dark", "system":
	default:
		return &SettingsValidationError{Key: SettingTheme, Reason: "must be light, dark or system"}
	}
	return nil
}
