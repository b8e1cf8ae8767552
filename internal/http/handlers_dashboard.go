package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
	apperrors "github.com/noe-create/medidhub-cpv-sub001/internal/errors"
)

// SettingsService reads and writes the appearance settings.
type SettingsService interface {
	Get(ctx context.Context) (model.AppearanceSettings, error)
	Update(ctx context.Context, sess domainauth.Session, in model.AppearanceSettings) (model.AppearanceSettings, error)
}

// DatabaseInfoService produces the diagnostics report.
type DatabaseInfoService interface {
	Describe(ctx context.Context, sess domainauth.Session) (*model.DatabaseReport, error)
}

// UIHandlers serves the server-rendered dashboard pages.
type UIHandlers struct {
	T        *TemplateRenderer
	Settings SettingsService
	Database DatabaseInfoService
	Gate     domainauth.Gate
	Logger   *slog.Logger
}

func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type navEntry struct {
	label string
	href  string
	perm  domainauth.Permission
}

//nolint:gochecknoglobals // static navigation table
var navEntries = []navEntry{
	{label: "Inicio", href: domainauth.DashboardPath},
	{label: "Apariencia", href: "/dashboard/settings", perm: domainauth.PermSettingsManage},
	{label: "Base de datos", href: "/dashboard/database", perm: domainauth.PermDatabaseView},
}

// buildNav lists the entries the session may open. Entries the gate would
// reject are hidden rather than shown disabled.
func (h *UIHandlers) buildNav(sess domainauth.Session, path string) []NavItem {
	if !sess.Authenticated() {
		return nil
	}
	items := make([]NavItem, 0, len(navEntries))
	for _, e := range navEntries {
		if e.perm != "" && h.Gate.Authorize(sess, e.perm) != nil {
			continue
		}
		items = append(items, NavItem{Label: e.label, Href: e.href, Active: path == e.href})
	}
	return items
}

func (h *UIHandlers) appearance(ctx context.Context) model.AppearanceSettings {
	if h.Settings == nil {
		return model.DefaultAppearance()
	}
	a, err := h.Settings.Get(ctx)
	if err != nil {
		h.logger().WarnContext(ctx, "appearance unavailable, using defaults", "error", err)
		return model.DefaultAppearance()
	}
	return a
}

func (h *UIHandlers) page(r *http.Request, page, title string) PageData {
	sess, _ := SessionFromContext(r.Context())
	return PageData{
		Title:       title,
		CurrentPage: page,
		Session:     sess,
		Appearance:  h.appearance(r.Context()),
		CSRFToken:   CSRFToken(r),
		RequestID:   RequestIDFromContext(r.Context()),
		Nav:         h.buildNav(sess, r.URL.Path),
	}
}

func (h *UIHandlers) render(w http.ResponseWriter, r *http.Request, status int, data PageData) {
	if h.T == nil {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if err := h.T.Render(w, status, data); err != nil {
		h.logger().ErrorContext(r.Context(), "render failed", "page", data.CurrentPage, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *UIHandlers) renderError(w http.ResponseWriter, r *http.Request, status int) {
	data := h.page(r, PageError, http.StatusText(status))
	h.render(w, r, status, data)
}

// handleServiceError maps a service error to a page response. Authorization
// failures that slip past the route middleware redirect the same way.
func (h *UIHandlers) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domainauth.ErrNotAuthenticated):
		http.Redirect(w, r, domainauth.LoginPath, http.StatusSeeOther)
	case errors.Is(err, domainauth.ErrForbidden):
		http.Redirect(w, r, domainauth.DashboardPath, http.StatusSeeOther)
	default:
		h.logger().ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		h.renderError(w, r, apperrors.HTTPStatus(err))
	}
}

type dashboardView struct {
	Permissions []domainauth.Permission
	Superuser   bool
}

// Dashboard renders the landing page for logged-in users.
// GET /dashboard.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, PageDashboard, "Inicio")
	data.Data = dashboardView{
		Permissions: data.Session.Permissions.Slice(),
		Superuser:   h.Gate.IsSuperuser(data.Session),
	}
	h.render(w, r, http.StatusOK, data)
}

// SettingsPage renders the appearance form.
// GET /dashboard/settings.
func (h *UIHandlers) SettingsPage(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, PageSettings, "Apariencia")
	data.Data = data.Appearance
	if r.URL.Query().Get("saved") == "1" {
		data.Flash = "Cambios guardados."
	}
	h.render(w, r, http.StatusOK, data)
}

// SettingsSubmit saves the appearance form.
// POST /dashboard/settings.
func (h *UIHandlers) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest)
		return
	}
	in := model.AppearanceSettings{
		ClinicName:   r.PostFormValue("clinic_name"),
		PrimaryColor: r.PostFormValue("primary_color"),
		LogoURL:      r.PostFormValue("logo_url"),
		Theme:        r.PostFormValue("theme"),
	}
	sess, _ := SessionFromContext(r.Context())
	if _, err := h.Settings.Update(r.Context(), sess, in); err != nil {
		if apperrors.IsValidation(err) {
			data := h.page(r, PageSettings, "Apariencia")
			data.Data = in
			data.Error = validationMessage(err)
			data.Field = apperrors.GetField(err)
			h.render(w, r, http.StatusBadRequest, data)
			return
		}
		h.handleServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/dashboard/settings?saved=1", http.StatusSeeOther)
}

func validationMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && strings.TrimSpace(appErr.Message) != "" {
		return appErr.Message
	}
	return "Datos inválidos."
}

// DatabasePage renders connection and server diagnostics.
// GET /dashboard/database.
func (h *UIHandlers) DatabasePage(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	report, err := h.Database.Describe(r.Context(), sess)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	data := h.page(r, PageDatabase, "Base de datos")
	data.Data = report
	h.render(w, r, http.StatusOK, data)
}

// NotFound renders the error page for browsers and JSON otherwise.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errors.New("not found")})
		return
	}
	h.renderError(w, r, http.StatusNotFound)
}
