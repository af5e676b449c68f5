package api

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/sitestock/internal/apperr"
	"github.com/erazemk/sitestock/internal/auth"
	"github.com/erazemk/sitestock/internal/model"
	"github.com/erazemk/sitestock/internal/site"
	"github.com/erazemk/sitestock/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*Env
}

type loginRequest struct {
	Site     string `json:"site"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signupRequest struct {
	Site     string `json:"site"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type sessionResponse struct {
	User  *auth.Session `json:"user"`
	Token string        `json:"token,omitempty"`
}

var errInvalidCredentials = apperr.New(apperr.Unauthorized, "invalid credentials")

// Login handles POST /api/auth/login for site accounts.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Site == "" || req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "site, username and password required")
		return
	}

	st, err := h.Sites.Resolve(req.Site)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.login(w, r, st, req.Username, req.Password, "")
}

// AdminLogin handles POST /api/auth/admin-login against warehouse accounts.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}
	h.login(w, r, h.Sites.Warehouse(), req.Username, req.Password, model.RoleAdmin)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, st site.Site, username, password, role string) {
	conn, err := h.Partitions.Get(r.Context(), st.Partition)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := store.GetUserByUsername(r.Context(), conn, username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil || (role != "" && user.Role != role) {
		slog.Warn("login failed", "user", username, "site", st.Key, "remote", r.RemoteAddr)
		writeError(w, r, errInvalidCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login failed", "user", username, "site", st.Key, "remote", r.RemoteAddr)
		writeError(w, r, errInvalidCredentials)
		return
	}

	s := auth.Session{Role: user.Role, Name: user.Name, Username: user.Username, Site: st.Key}
	token, err := h.issue(w, s)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user logged in", "user", user.Username, "role", user.Role, "site", st.Key)
	jsonResponse(w, http.StatusOK, sessionResponse{User: &s, Token: token})
}

// Signup handles POST /api/auth/signup. It creates an engineer account in
// the chosen site and logs it in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Site == "" || strings.TrimSpace(req.Username) == "" || req.Name == "" {
		jsonError(w, http.StatusBadRequest, "site, username, password and name required")
		return
	}

	st, err := h.Sites.Resolve(req.Site)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := createEngineer(r, h.Env, st, req.Username, req.Name, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s := auth.Session{Role: user.Role, Name: user.Name, Username: user.Username, Site: st.Key}
	token, err := h.issue(w, s)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("engineer signed up", "user", user.Username, "site", st.Key)
	jsonResponse(w, http.StatusCreated, sessionResponse{User: &s, Token: token})
}

// Logout handles POST /api/auth/logout. Tokens are not revoked; the cookie
// is simply cleared.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.SecureCookies)
	if s := auth.FromContext(r.Context()); s != nil {
		slog.Info("user logged out", "user", s.Username, "site", s.Site)
	}
	jsonResponse(w, http.StatusOK, messageResponse{Message: "logged out"})
}

// Session handles GET /api/auth/session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, sessionResponse{User: auth.FromContext(r.Context())})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	s := auth.FromContext(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := h.Home(r, s)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := store.GetUserByUsername(r.Context(), conn, s.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, r, apperr.New(apperr.Unauthorized, "account no longer exists"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := store.UpdateUserPassword(r.Context(), conn, user.ID, string(hash)); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user changed own password", "user", s.Username, "site", s.Site)
	jsonResponse(w, http.StatusOK, messageResponse{Message: "password updated"})
}

func (h *AuthHandler) issue(w http.ResponseWriter, s auth.Session) (string, error) {
	token, err := auth.CreateSession(h.Secret, s)
	if err != nil {
		return "", err
	}
	auth.SetSessionCookie(w, token, h.SecureCookies)
	return token, nil
}
