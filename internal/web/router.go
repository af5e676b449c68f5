package web

import (
	"net/http"

	"github.com/erazemk/sitestock/internal/api"
	webembed "github.com/erazemk/sitestock/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(env *api.Env) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Env:       env,
		Templates: templates,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(env.Secret, env.SecureCookies)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.Dashboard)))
	mux.Handle("GET /equipment/{id}/photo", cookieAuth(http.HandlerFunc(s.EquipmentPhoto)))
	mux.Handle("GET /withdrawals/new", cookieAuth(http.HandlerFunc(s.WithdrawalNewPage)))
	mux.Handle("POST /withdrawals/new", cookieAuth(http.HandlerFunc(s.WithdrawalCreateSubmit)))
	mux.Handle("GET /withdrawals/{id}/receipt", cookieAuth(http.HandlerFunc(s.ReceiptPage)))

	return mux, nil
}
