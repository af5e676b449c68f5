package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/sitestock/internal/store"
)

// EquipmentPhoto handles GET /equipment/{id}/photo (web route, cookie-authenticated).
func (s *Server) EquipmentPhoto(w http.ResponseWriter, r *http.Request) {
	_, conn, err := s.Target(r)
	if err != nil {
		http.Error(w, "invalid site", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetEquipmentPhoto(r.Context(), conn, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get photo", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write photo response", "error", err)
	}
}
