package api

import "net/http"

// SitesHandler lists the configured sites.
type SitesHandler struct {
	*Env
}

type siteResponse struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// List handles GET /api/sites.
func (h *SitesHandler) List(w http.ResponseWriter, r *http.Request) {
	sites := h.Sites.Sites()
	out := make([]siteResponse, len(sites))
	for i, s := range sites {
		out[i] = siteResponse{Key: s.Key, Name: s.Name}
	}
	jsonResponse(w, http.StatusOK, out)
}
