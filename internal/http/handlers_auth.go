package httpx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/ports"
	"github.com/noe-create/medidhub-cpv-sub001/internal/service"
)

const (
	oauthStateCookie = "salud-cpv-oauth-state"
	oauthNonceCookie = "salud-cpv-oauth-nonce"
	oauthCookieTTL   = 10 * time.Minute
)

// AuthService is the login surface used by the handlers.
type AuthService interface {
	Authorizer
	Login(ctx context.Context, in service.LoginInput) (domainauth.Session, error)
	ExternalLoginEnabled() bool
	BeginExternalLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteExternalLogin(ctx context.Context, in service.CompleteLoginInput) (domainauth.Session, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc      AuthService
	Sessions ports.SessionStore
	UI       *UIHandlers
	// CallbackURL is the absolute redirect URL registered with the IdP.
	CallbackURL  string
	CookieDomain string
	TrustProxy   bool
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginForm struct {
	Username   string
	SSOEnabled bool
}

// LoginPage renders the login form.
// GET /login.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, loginView{status: http.StatusOK})
}

type loginView struct {
	status   int
	username string
	errMsg   string
}

func (h *AuthHandlers) renderLogin(w http.ResponseWriter, r *http.Request, v loginView) {
	data := h.UI.page(r, PageLogin, "Iniciar sesión")
	data.Nav = nil
	data.Error = v.errMsg
	data.Data = loginForm{Username: v.username, SSOEnabled: h.Svc.ExternalLoginEnabled()}
	h.UI.render(w, r, v.status, data)
}

// Login verifies a password login and seals the session into the cookie.
// POST /login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		if !IsBrowserRequest(r) {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
			return
		}
		h.renderLogin(w, r, loginView{status: http.StatusBadRequest, errMsg: "Formulario inválido."})
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	sess, err := h.Svc.Login(r.Context(), service.LoginInput{
		Username: username,
		Password: r.PostFormValue("password"),
		ClientIP: ClientIP(r, h.TrustProxy),
	})
	if err != nil {
		h.loginFailed(w, r, username, err)
		return
	}
	h.startSession(w, r, sess)
}

func (h *AuthHandlers) startSession(w http.ResponseWriter, r *http.Request, sess domainauth.Session) {
	if err := h.Sessions.Save(w, r, sess); err != nil {
		h.logger().ErrorContext(r.Context(), "failed to save session", "username", sess.Username(), "error", err)
		if IsBrowserRequest(r) {
			h.UI.renderError(w, r, http.StatusInternalServerError)
			return
		}
		WriteServiceError(w, err)
		return
	}
	if IsBrowserRequest(r) {
		http.Redirect(w, r, domainauth.DashboardPath, http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, newStatusResponse(sess, h.UI.Gate))
}

func (h *AuthHandlers) loginFailed(w http.ResponseWriter, r *http.Request, username string, err error) {
	p := classifyError(err)
	var te *service.ThrottledError
	if errors.As(err, &te) {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(te.RetryAfter.Seconds()))))
	}
	if p.Code == http.StatusInternalServerError {
		h.logger().ErrorContext(r.Context(), "login error", "error", err)
	}
	if !IsBrowserRequest(r) {
		WriteServiceError(w, err)
		return
	}
	h.renderLogin(w, r, loginView{status: p.Code, username: username, errMsg: loginMessage(err)})
}

func loginMessage(err error) string {
	var te *service.ThrottledError
	switch {
	case errors.As(err, &te):
		mins := int(math.Ceil(te.RetryAfter.Minutes()))
		return fmt.Sprintf("Demasiados intentos fallidos. Intente de nuevo en %d minuto(s).", max(mins, 1))
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Usuario o contraseña incorrectos."
	case errors.Is(err, service.ErrAccountDisabled):
		return "La cuenta está deshabilitada."
	case errors.Is(err, service.ErrUnknownIdentity):
		return "Su cuenta no está registrada en el sistema."
	default:
		return "No fue posible iniciar sesión. Intente más tarde."
	}
}

// Logout expires the session cookie.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	h.Sessions.Clear(w, r)
	if sess.IsLoggedIn {
		h.logger().InfoContext(r.Context(), "logout", "username", sess.Username(), "session_id", sess.ID)
	}
	if IsBrowserRequest(r) {
		http.Redirect(w, r, domainauth.LoginPath, http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SSO starts the external login flow.
// GET /auth/sso.
func (h *AuthHandlers) SSO(w http.ResponseWriter, r *http.Request) {
	if !h.Svc.ExternalLoginEnabled() {
		http.NotFound(w, r)
		return
	}
	result, err := h.Svc.BeginExternalLogin(r.Context(), h.CallbackURL)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin external login failed", "error", err)
		h.renderLogin(w, r, loginView{status: http.StatusBadGateway, errMsg: loginMessage(err)})
		return
	}
	h.setTempCookie(w, r, oauthStateCookie, result.State)
	h.setTempCookie(w, r, oauthNonceCookie, result.Nonce)
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the external login flow.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	stateCookie, stateErr := r.Cookie(oauthStateCookie)
	nonceCookie, nonceErr := r.Cookie(oauthNonceCookie)
	h.clearCookie(w, r, oauthStateCookie)
	h.clearCookie(w, r, oauthNonceCookie)

	if code == "" || state == "" || stateErr != nil || nonceErr != nil || stateCookie.Value != state {
		h.renderLogin(w, r, loginView{
			status: http.StatusBadRequest,
			errMsg: "La solicitud de inicio de sesión expiró. Intente de nuevo.",
		})
		return
	}

	sess, err := h.Svc.CompleteExternalLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "external login failed", "error", err)
		status := classifyError(err).Code
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		h.renderLogin(w, r, loginView{status: status, errMsg: loginMessage(err)})
		return
	}
	h.startSession(w, r, sess)
}

type statusUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type statusResponse struct {
	IsLoggedIn  bool                    `json:"isLoggedIn"`
	User        *statusUser             `json:"user,omitempty"`
	Permissions []domainauth.Permission `json:"permissions"`
	Superuser   bool                    `json:"superuser"`
}

func newStatusResponse(sess domainauth.Session, gate domainauth.Gate) statusResponse {
	out := statusResponse{Permissions: []domainauth.Permission{}}
	if !sess.Authenticated() {
		return out
	}
	out.IsLoggedIn = true
	out.User = &statusUser{ID: sess.User.ID, Username: sess.User.Username, Role: sess.User.Role.Name}
	out.Permissions = sess.Permissions.Slice()
	out.Superuser = gate.IsSuperuser(sess)
	return out
}

// Status reports the current session as JSON.
// GET /auth/status and GET /api/auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, newStatusResponse(sess, h.UI.Gate))
}

func (h *AuthHandlers) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/auth/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(oauthCookieTTL.Seconds()),
	})
}

func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/auth/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}
