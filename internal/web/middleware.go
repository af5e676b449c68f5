package web

import (
	"net/http"

	"github.com/erazemk/sitestock/internal/auth"
)

// CookieAuthMiddleware validates the session cookie and adds the session to
// the request context. Anonymous or expired visitors are sent to /login.
func CookieAuthMiddleware(secret string, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.CookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			s := auth.ReadSession(secret, cookie.Value)
			if s == nil {
				auth.ClearSessionCookie(w, secure)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), s)))
		})
	}
}
