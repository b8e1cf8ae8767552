package httpx

import (
	"net/http"

	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/ports"
)

// RouteGate loads the session once per request, stores it in the context and
// applies the login/dashboard redirects. It never fails a request; an unreadable
// cookie is simply the logged-out session.
func RouteGate(store ports.SessionStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := store.Load(r)
			r = r.WithContext(SetSessionInContext(r.Context(), sess))

			decision := domainauth.DecideRoute(sess.Authenticated(), r.URL.Path)
			if !decision.PassThrough() {
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
