package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// APIHandlers serves the JSON endpoints.
type APIHandlers struct {
	Settings SettingsService
	// Checks maps a dependency name to its probe; nil entries are skipped.
	Checks map[string]HealthChecker
	Logger *slog.Logger
}

// Appearance returns the public theming values.
// GET /api/settings/appearance.
func (h *APIHandlers) Appearance(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Get(r.Context())
	if err != nil {
		h.logger().ErrorContext(r.Context(), "load appearance", "error", err)
		WriteServiceError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	WriteJSON(w, http.StatusOK, settings)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health probes every registered dependency.
// GET /healthz.
func (h *APIHandlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(h.Checks))}
	for name, c := range h.Checks {
		if c == nil {
			continue
		}
		if err := c.Health(ctx); err != nil {
			h.logger().WarnContext(ctx, "health check failed", "dependency", name, "error", err)
			resp.Status = "degraded"
			resp.Checks[name] = "down"
			continue
		}
		resp.Checks[name] = "up"
	}
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, status, resp)
}

func (h *APIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
