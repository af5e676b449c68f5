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

// EngineersHandler handles engineer accounts.
type EngineersHandler struct {
	*Env
}

type createEngineerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	SiteName string `json:"siteName"`
}

// List handles GET /api/engineers.
func (h *EngineersHandler) List(w http.ResponseWriter, r *http.Request) {
	_, conn, err := h.Target(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	users, err := store.ListUsers(r.Context(), conn, model.RoleEngineer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/engineers.
func (h *EngineersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEngineerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.TrimSpace(req.Username) == "" || req.SiteName == "" {
		jsonError(w, http.StatusBadRequest, "name, username, password and siteName required")
		return
	}

	st, err := h.Sites.Resolve(req.SiteName)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := createEngineer(r, h.Env, st, req.Username, req.Name, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("engineer created", "user", user.Username, "site", st.Key, "by", auth.FromContext(r.Context()).Username)
	jsonResponse(w, http.StatusCreated, user)
}

// createEngineer hashes password and stores a new engineer in st.
func createEngineer(r *http.Request, env *Env, st site.Site, username, name, password string) (*model.User, error) {
	if err := model.ValidatePassword(password); err != nil {
		return nil, apperr.New(apperr.InvalidRequest, "%s", err.Error())
	}

	conn, err := env.Partitions.Get(r.Context(), st.Partition)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return store.CreateUser(r.Context(), conn, username, name, string(hash), model.RoleEngineer)
}
