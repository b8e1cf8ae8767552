package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	backoffice "github.com/noe-create/medidhub-cpv-sub001"
	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/observability/statsd"
	"github.com/noe-create/medidhub-cpv-sub001/internal/ports"
)

// RouterOptions holds transport settings for the router.
type RouterOptions struct {
	CookieDomain string
	// CallbackURL is the absolute external login callback.
	CallbackURL string
	// TrustProxy honors X-Forwarded-For when throttling logins.
	TrustProxy bool
	// IsDev reads templates and static files from disk.
	IsDev bool
}

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth     AuthService
	Settings SettingsService
	Database DatabaseInfoService
	Sessions ports.SessionStore
	Gate     domainauth.Gate
	// Checks are probed by /healthz.
	Checks map[string]HealthChecker
	// Metrics is optional.
	Metrics statsd.Sink
	Options RouterOptions
	Logger  *slog.Logger
}

// NewRouter creates the HTTP handler with the full middleware chain.
func NewRouter(services RouterServices) (http.Handler, error) {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS(services.Options.IsDev, logger),
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	ui := &UIHandlers{
		T:        tr,
		Settings: services.Settings,
		Database: services.Database,
		Gate:     services.Gate,
		Logger:   logger,
	}
	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Sessions:     services.Sessions,
		UI:           ui,
		CallbackURL:  services.Options.CallbackURL,
		CookieDomain: services.Options.CookieDomain,
		TrustProxy:   services.Options.TrustProxy,
		Logger:       logger,
	}
	api := &APIHandlers{Settings: services.Settings, Checks: services.Checks, Logger: logger}

	mux := http.NewServeMux()
	registerAuthRoutes(mux, authHandlers)
	registerUIRoutes(mux, ui, services.Auth)
	registerAPIRoutes(mux, api)
	mux.Handle("GET /static/", staticHandler(services.Options.IsDev, logger))
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/", ui.NotFound)

	return Chain(mux,
		Recover(logger),
		Logging(logger),
		Metrics(services.Metrics),
		SecurityHeaders(),
		CSRFProtection(CSRFConfig{CookieDomain: services.Options.CookieDomain}),
		RouteGate(services.Sessions),
	), nil
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /auth/sso", h.SSO)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.HandleFunc("GET /api/auth/status", h.Status)
}

func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, authz Authorizer) {
	mux.HandleFunc("GET /dashboard", h.Dashboard)

	settings := RequirePermission(authz, domainauth.PermSettingsManage)
	mux.Handle("GET /dashboard/settings", settings(http.HandlerFunc(h.SettingsPage)))
	mux.Handle("POST /dashboard/settings", settings(http.HandlerFunc(h.SettingsSubmit)))

	database := RequirePermission(authz, domainauth.PermDatabaseView)
	mux.Handle("GET /dashboard/database", database(http.HandlerFunc(h.DatabasePage)))
}

func registerAPIRoutes(mux *http.ServeMux, h *APIHandlers) {
	mux.HandleFunc("GET /api/settings/appearance", h.Appearance)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("HEAD /healthz", h.Health)
}

// templateFS picks the disk copy in dev so edits show without a rebuild.
func templateFS(isDev bool, logger *slog.Logger) fs.FS {
	if isDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(backoffice.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		logger.Error("failed to open embedded templates; falling back to disk", "error", err)
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

// staticHandler serves /static/* from disk in dev and from the embedded FS otherwise.
func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	var root http.FileSystem
	if isDev {
		root = http.Dir(StaticPathFromRoot)
	} else {
		sub, err := fs.Sub(backoffice.StaticFS, StaticPathFromRoot)
		if err != nil {
			logger.Error("failed to open embedded static assets; falling back to disk", "error", err)
			root = http.Dir(StaticPathFromRoot)
		} else {
			root = http.FS(sub)
		}
	}
	fileServer := http.StripPrefix("/static/", http.FileServer(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-cache")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		fileServer.ServeHTTP(w, r)
	})
}
