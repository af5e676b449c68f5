package web

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/sitestock/internal/auth"
	"github.com/erazemk/sitestock/internal/model"
	"github.com/erazemk/sitestock/internal/site"
	"github.com/erazemk/sitestock/internal/store"
)

type loginPage struct {
	PageData
	Warehouse    site.Site
	SelectedSite string
	Username     string
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, selected, username, msg string) {
	s.Templates.RenderStatus(w, status, "login.html", &loginPage{
		PageData:     PageData{Title: "Sign in", Sites: s.Sites.Sites(), Error: msg},
		Warehouse:    s.Sites.Warehouse(),
		SelectedSite: selected,
		Username:     username,
	})
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.renderLogin(w, http.StatusOK, "", "", "")
}

// LoginSubmit handles POST /login. Choosing the warehouse signs in as an
// administrator.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	siteID := r.FormValue("site")
	username := r.FormValue("username")
	password := r.FormValue("password")

	if siteID == "" || username == "" || password == "" {
		s.renderLogin(w, http.StatusBadRequest, siteID, username, "Choose a site and enter your username and password.")
		return
	}

	st, err := s.Sites.ResolveAny(siteID)
	if err != nil {
		s.renderLogin(w, http.StatusBadRequest, "", username, "Unknown site.")
		return
	}

	conn, err := s.Partitions.Get(r.Context(), st.Partition)
	if err != nil {
		slog.Error("failed to open partition for login", "site", st.Key, "error", err)
		s.renderLogin(w, http.StatusInternalServerError, st.Key, username, "Sign in failed.")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), conn, username)
	if err != nil {
		slog.Error("failed to look up user", "error", err)
		s.renderLogin(w, http.StatusInternalServerError, st.Key, username, "Sign in failed.")
		return
	}
	if user == nil || (st.Key == site.WarehouseKey && user.Role != model.RoleAdmin) ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		slog.Warn("web login failed", "user", username, "site", st.Key, "remote", r.RemoteAddr)
		s.renderLogin(w, http.StatusUnauthorized, st.Key, username, "Wrong username or password.")
		return
	}

	token, err := auth.CreateSession(s.Secret, auth.Session{
		Role:     user.Role,
		Name:     user.Name,
		Username: user.Username,
		Site:     st.Key,
	})
	if err != nil {
		slog.Error("failed to create session", "error", err)
		s.renderLogin(w, http.StatusInternalServerError, st.Key, username, "Sign in failed.")
		return
	}

	auth.SetSessionCookie(w, token, s.SecureCookies)
	slog.Info("user logged in", "user", user.Username, "role", user.Role, "site", st.Key, "via", "web")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, s.SecureCookies)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
