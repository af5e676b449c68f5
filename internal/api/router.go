package api

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/sitestock/internal/apperr"
	"github.com/erazemk/sitestock/internal/auth"
	"github.com/erazemk/sitestock/internal/db"
	"github.com/erazemk/sitestock/internal/model"
	"github.com/erazemk/sitestock/internal/site"
)

// Env is shared by every handler.
type Env struct {
	Sites             *site.Registry
	Partitions        *db.Partitions
	Secret            string
	SecureCookies     bool
	LowStockThreshold int
}

// Target resolves the partition a request operates on. Engineers always
// work in their own site. Admins pick one with ?site= and default to the
// warehouse.
func (e *Env) Target(r *http.Request) (site.Site, *sqlx.DB, error) {
	s := auth.FromContext(r.Context())
	if s == nil {
		return site.Site{}, nil, apperr.New(apperr.Unauthorized, "not authenticated")
	}

	var st site.Site
	var err error
	if s.IsAdmin() {
		st = e.Sites.Warehouse()
		if q := r.URL.Query().Get("site"); q != "" {
			st, err = e.Sites.ResolveAny(q)
		}
	} else {
		st, err = e.Sites.Resolve(s.Site)
	}
	if err != nil {
		return site.Site{}, nil, err
	}

	conn, err := e.Partitions.Get(r.Context(), st.Partition)
	if err != nil {
		return site.Site{}, nil, err
	}
	return st, conn, nil
}

// Home resolves the partition holding the session's own account.
func (e *Env) Home(r *http.Request, s *auth.Session) (*sqlx.DB, error) {
	st, err := e.Sites.ResolveAny(s.Site)
	if err != nil {
		return nil, err
	}
	return e.Partitions.Get(r.Context(), st.Partition)
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(env *Env) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Env: env}
	sitesHandler := &SitesHandler{Env: env}
	equipmentHandler := &EquipmentHandler{Env: env}
	withdrawalsHandler := &WithdrawalsHandler{Env: env}
	engineersHandler := &EngineersHandler{Env: env}
	reportsHandler := &ReportsHandler{Env: env}

	anyRole := RequireRole(model.RoleAdmin, model.RoleEngineer)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public.
	mux.HandleFunc("GET /api/sites", sitesHandler.List)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/admin-login", authHandler.AdminLogin)
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/session", authHandler.Session)

	mux.Handle("PUT /api/auth/password", anyRole(http.HandlerFunc(authHandler.ChangePassword)))

	// Equipment.
	mux.Handle("GET /api/equipment", anyRole(http.HandlerFunc(equipmentHandler.List)))
	mux.Handle("POST /api/equipment", anyRole(http.HandlerFunc(equipmentHandler.Upsert)))
	mux.Handle("GET /api/equipment/low-stock", anyRole(http.HandlerFunc(equipmentHandler.LowStock)))
	mux.Handle("GET /api/equipment/{id}", anyRole(http.HandlerFunc(equipmentHandler.Get)))
	mux.Handle("PUT /api/equipment/{id}", anyRole(http.HandlerFunc(equipmentHandler.Update)))
	mux.Handle("DELETE /api/equipment/{id}", anyRole(http.HandlerFunc(equipmentHandler.Delete)))
	mux.Handle("PUT /api/equipment/{id}/photo", anyRole(http.HandlerFunc(equipmentHandler.UploadPhoto)))
	mux.Handle("GET /api/equipment/{id}/photo", anyRole(http.HandlerFunc(equipmentHandler.GetPhoto)))

	// Withdrawals.
	mux.Handle("GET /api/withdrawals", anyRole(http.HandlerFunc(withdrawalsHandler.List)))
	mux.Handle("POST /api/withdrawals", anyRole(http.HandlerFunc(withdrawalsHandler.Create)))
	mux.Handle("GET /api/withdrawals/{id}", anyRole(http.HandlerFunc(withdrawalsHandler.Get)))

	// Engineers: listing for everyone, creation for admins.
	mux.Handle("GET /api/engineers", anyRole(http.HandlerFunc(engineersHandler.List)))
	mux.Handle("POST /api/engineers", requireAdmin(http.HandlerFunc(engineersHandler.Create)))

	// Reporting.
	mux.Handle("GET /api/stats", anyRole(http.HandlerFunc(reportsHandler.Stats)))
	mux.Handle("GET /api/site/report.xlsx", anyRole(http.HandlerFunc(reportsHandler.SiteWorkbook)))
	mux.Handle("GET /api/reports", requireAdmin(http.HandlerFunc(reportsHandler.Report)))
	mux.Handle("GET /api/reports/export", requireAdmin(http.HandlerFunc(reportsHandler.Export)))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})

	return SessionMiddleware(env.Secret)(mux)
}
