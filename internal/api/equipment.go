package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/sitestock/internal/apperr"
	"github.com/erazemk/sitestock/internal/auth"
	"github.com/erazemk/sitestock/internal/model"
	"github.com/erazemk/sitestock/internal/photo"
	"github.com/erazemk/sitestock/internal/store"
)

// EquipmentHandler handles equipment endpoints.
type EquipmentHandler struct {
	*Env
}

type equipmentRequest struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Quantity     *int   `json:"quantity"`
	Unit         string `json:"unit"`
	Location     string `json:"location"`
	Condition    string `json:"condition"`
	SerialNumber string `json:"serialNumber"`
}

// input validates the request and converts it to store input.
func (req *equipmentRequest) input() (store.EquipmentInput, error) {
	in := store.EquipmentInput{
		Name:         strings.TrimSpace(req.Name),
		Category:     req.Category,
		Unit:         req.Unit,
		Location:     strings.TrimSpace(req.Location),
		Condition:    req.Condition,
		SerialNumber: strings.TrimSpace(req.SerialNumber),
	}
	switch {
	case in.Name == "":
		return in, apperr.New(apperr.InvalidRequest, "name required")
	case req.Quantity == nil:
		return in, apperr.New(apperr.InvalidRequest, "quantity required")
	case *req.Quantity < 0:
		return in, apperr.New(apperr.InvalidRequest, "quantity must not be negative")
	case !model.ValidCategory(in.Category):
		return in, apperr.New(apperr.InvalidRequest, "invalid category %q", in.Category)
	case !model.ValidUnit(in.Unit):
		return in, apperr.New(apperr.InvalidRequest, "invalid unit %q", in.Unit)
	case !model.ValidCondition(in.Condition):
		return in, apperr.New(apperr.InvalidRequest, "invalid condition %q", in.Condition)
	}
	in.Quantity = *req.Quantity
	return in, nil
}

type upsertResponse struct {
	Equipment *model.Equipment `json:"equipment"`
	Updated   bool             `json:"updated"`
	Message   string           `json:"message"`
}

// List handles GET /api/equipment.
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	_, conn, err := h.Target(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := store.ListEquipment(r.Context(), conn)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Upsert handles POST /api/equipment. A record with the same name is
// updated in place; otherwise a new one is created.
func (h *EquipmentHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req equipmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	st, conn, err := h.Target(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	eq, updated, err := store.UpsertEquipment(r.Context(), conn, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("equipment upserted", "equipment", eq.Name, "quantity", eq.Quantity,
		"updated", updated, "site", st.Key, "user", auth.FromContext(r.Context()).Username)
	if updated {
		jsonResponse(w, http.StatusOK, upsertResponse{Equipment: eq, Updated: true, Message: "equipment updated"})
		return
	}
	jsonResponse(w, http.StatusCreated, upsertResponse{Equipment: eq, Message: "equipment added"})
}

// Get handles GET /api/equipment/{id}.
func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, conn, err := h.Target(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	eq, err := store.FindEquipment(r.Context(), conn, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, eq)
}

// Update handles PUT /api/equipment/{id}, which may also rename the record.
func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req equipmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	st, conn, err := h.Target(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	eq, err := store.UpdateEquipment(r.Context(), conn, r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("equipment updated", "id", eq.ID, "equipment", eq.Name, "site", st.Key)
	jsonResponse(w, http.StatusOK, eq)
}

// Delete handles DELETE /api/equipment/{id}.
func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	st, conn, err := h.Target(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	if err := store.DeleteEquipment(r.Context(), conn, id); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("equipment deleted", "id", id, "site", st.Key)
	jsonResponse(w, http.StatusOK, messageResponse{Message: "equipment deleted"})
}

// LowStock handles GET /api/equipment/low-stock.
func (h *EquipmentHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	_, conn, err := h.Target(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := store.ListLowStock(r.Context(), conn, h.LowStockThreshold)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// UploadPhoto handles PUT /api/equipment/{id}/photo.
func (h *EquipmentHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	_, conn, err := h.Target(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, photo.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(photo.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	data, err := photo.Normalize(file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := store.SetEquipmentPhoto(r.Context(), conn, r.PathValue("id"), data, photo.MIME); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, messageResponse{Message: "photo uploaded"})
}

// GetPhoto handles GET /api/equipment/{id}/photo.
func (h *EquipmentHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	_, conn, err := h.Target(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, mime, err := store.GetEquipmentPhoto(r.Context(), conn, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(data) == 0 {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
