package auth

import (
	"context"
	"net/http"
	"strings"
)

// CookieName is the name of the session cookie.
const CookieName = "sitestock_session"

// SetSessionCookie attaches token to the response. Secure should be set in
// production deployments served over TLS.
func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie with matching attributes.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionFromRequest reads the session from the cookie, falling back to a
// bearer token for non-browser clients. It returns nil for anonymous
// requests.
func SessionFromRequest(r *http.Request, secret string) *Session {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		if s := ReadSession(secret, c.Value); s != nil {
			return s
		}
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return ReadSession(secret, strings.TrimPrefix(h, "Bearer "))
	}
	return nil
}

type contextKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
