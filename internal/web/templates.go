package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/sitestock/internal/api"
	"github.com/erazemk/sitestock/internal/auth"
	"github.com/erazemk/sitestock/internal/model"
	"github.com/erazemk/sitestock/internal/site"
	webembed "github.com/erazemk/sitestock/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// label turns an enum value such as "needs_repair" or "power-tools" into
// "Needs repair" or "Power tools".
func label(v string) string {
	v = strings.NewReplacer("_", " ", "-", " ").Replace(v)
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + v[1:]
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"label": label,
		"roleName": func(role string) string {
			switch role {
			case model.RoleAdmin:
				return "Administrator"
			case model.RoleEngineer:
				return "Engineer"
			default:
				return role
			}
		},
		"lowStock": func(eq model.Equipment, threshold int) bool {
			return eq.Quantity < threshold
		},
	}
}

var pages = []string{
	"login.html",
	"dashboard.html",
	"withdrawal_new.html",
	"receipt.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	User    *auth.Session
	Site    site.Site
	Sites   []site.Site
	Error   string
	Success string
}

// SiteQuery is appended to links so admins stay on the site they picked.
func (p *PageData) SiteQuery() string {
	if p.User == nil || !p.User.IsAdmin() {
		return ""
	}
	return "?site=" + p.Site.Key
}

// Server holds all dependencies for page handlers.
type Server struct {
	*api.Env
	Templates *Templates
}

// page builds the base data for an authenticated page.
func (s *Server) page(r *http.Request, title string, st site.Site) PageData {
	return PageData{
		Title: title,
		User:  auth.FromContext(r.Context()),
		Site:  st,
		Sites: s.Sites.Sites(),
	}
}
