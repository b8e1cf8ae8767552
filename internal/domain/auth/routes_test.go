package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideRoute(t *testing.T) {
	tests := []struct {
		name     string
		loggedIn bool
		path     string
		want     string
	}{
		{name: "anonymous private", loggedIn: false, path: "/dashboard/x", want: LoginPath},
		{name: "anonymous dashboard root", loggedIn: false, path: "/dashboard", want: LoginPath},
		{name: "logged in login page", loggedIn: true, path: "/login", want: DashboardPath},
		{name: "logged in root", loggedIn: true, path: "/", want: DashboardPath},
		{name: "anonymous root", loggedIn: false, path: "/", want: LoginPath},
		{name: "logged in private", loggedIn: true, path: "/dashboard/pacientes", want: ""},
		{name: "anonymous login page", loggedIn: false, path: "/login", want: ""},
		{name: "prefix lookalike is not private", loggedIn: false, path: "/dashboardx", want: ""},
		{name: "api excluded", loggedIn: false, path: "/api/settings/appearance", want: ""},
		{name: "next static excluded", loggedIn: false, path: "/_next/static/chunk.js", want: ""},
		{name: "next image excluded", loggedIn: true, path: "/_next/image/logo.png", want: ""},
		{name: "favicon excluded", loggedIn: false, path: "/favicon.ico", want: ""},
		{name: "unknown passes", loggedIn: false, path: "/about", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideRoute(tt.loggedIn, tt.path)
			assert.Equal(t, tt.want, got.RedirectTo)
			assert.Equal(t, tt.want == "", got.PassThrough())
		})
	}
}

func TestClassifyPath(t *testing.T) {
	assert.Equal(t, RouteRoot, ClassifyPath("/"))
	assert.Equal(t, RoutePublicOnly, ClassifyPath("/login"))
	assert.Equal(t, RoutePrivate, ClassifyPath("/dashboard/settings"))
	assert.Equal(t, RouteExcluded, ClassifyPath("/api/auth/status"))
	assert.Equal(t, RouteExcluded, ClassifyPath("/healthz"))
	assert.Equal(t, RouteOther, ClassifyPath("/logout"))
}
