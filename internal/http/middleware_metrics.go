package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/noe-create/medidhub-cpv-sub001/internal/observability/metrics"
	"github.com/noe-create/medidhub-cpv-sub001/internal/observability/statsd"
)

// Metrics returns a middleware that counts and times requests. A nil sink disables it.
func Metrics(sink statsd.Sink) Middleware {
	return func(next http.Handler) http.Handler {
		if sink == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			metrics.EmitRequest(sink, metrics.RequestMetric{
				Method:   r.Method,
				Route:    routeLabel(r.URL.Path),
				Status:   ww.status,
				Duration: time.Since(start),
			})
		})
	}
}

// routeLabel keeps the route tag bounded; unknown paths collapse to "other".
func routeLabel(path string) string {
	switch {
	case path == "/":
		return "root"
	case path == "/login", path == "/logout":
		return strings.TrimPrefix(path, "/")
	case path == "/healthz":
		return "healthz"
	case strings.HasPrefix(path, "/auth/"), strings.HasPrefix(path, "/api/auth/"):
		return "auth"
	case path == "/dashboard":
		return "dashboard"
	case path == "/dashboard/settings":
		return "settings"
	case path == "/dashboard/database":
		return "database"
	case strings.HasPrefix(path, "/api/"):
		return "api"
	case strings.HasPrefix(path, "/static/"), path == "/favicon.ico":
		return "static"
	default:
		return "other"
	}
}
