package auth

import "strings"

// Route paths understood by the redirect gate.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
	RootPath      = "/"
)

// RouteClass is the category of a request path for the redirect gate.
type RouteClass int

const (
	// RouteOther is any path outside the three gated categories.
	RouteOther RouteClass = iota
	// RoutePublicOnly is reachable only while logged out (the login page).
	RoutePublicOnly
	// RoutePrivate requires a logged-in session.
	RoutePrivate
	// RouteRoot is the bare "/" path.
	RouteRoot
	// RouteExcluded is never seen by the gate (API, static assets, favicon).
	RouteExcluded
)

// excludedPrefixes are passed through untouched, regardless of session state.
//
//nolint:gochecknoglobals // read-only matcher table
var excludedPrefixes = []string{
	"/api/",
	"/_next/static/",
	"/_next/image/",
	"/static/",
}

//nolint:gochecknoglobals // read-only matcher table
var excludedExact = map[string]bool{
	"/api":         true,
	"/favicon.ico": true,
	"/healthz":     true,
}

// IsExcludedPath reports whether path is outside the gate's matcher.
func IsExcludedPath(path string) bool {
	if excludedExact[path] {
		return true
	}
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// ClassifyPath maps a request path to exactly one RouteClass.
func ClassifyPath(path string) RouteClass {
	switch {
	case IsExcludedPath(path):
		return RouteExcluded
	case path == RootPath || path == "":
		return RouteRoot
	case path == LoginPath || path == LoginPath+"/":
		return RoutePublicOnly
	case path == DashboardPath || strings.HasPrefix(path, DashboardPath+"/"):
		return RoutePrivate
	default:
		return RouteOther
	}
}

// RouteDecision is the outcome of the redirect gate.
// An empty RedirectTo means pass through unchanged.
type RouteDecision struct {
	RedirectTo string
}

// PassThrough reports whether the request continues to the handler.
func (d RouteDecision) PassThrough() bool { return d.RedirectTo == "" }

// DecideRoute is the redirect gate as a pure function of login state and path.
func DecideRoute(isLoggedIn bool, path string) RouteDecision {
	switch ClassifyPath(path) {
	case RoutePrivate:
		if !isLoggedIn {
			return RouteDecision{RedirectTo: LoginPath}
		}
	case RoutePublicOnly:
		if isLoggedIn {
			return RouteDecision{RedirectTo: DashboardPath}
		}
	case RouteRoot:
		if isLoggedIn {
			return RouteDecision{RedirectTo: DashboardPath}
		}
		return RouteDecision{RedirectTo: LoginPath}
	case RouteOther, RouteExcluded:
	}
	return RouteDecision{}
}
