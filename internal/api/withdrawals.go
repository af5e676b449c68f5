package api

import (
	"net/http"

	"github.com/erazemk/sitestock/internal/apperr"
	"github.com/erazemk/sitestock/internal/auth"
	"github.com/erazemk/sitestock/internal/model"
	"github.com/erazemk/sitestock/internal/store"
	"github.com/erazemk/sitestock/internal/withdrawal"
)

// WithdrawalsHandler handles the withdrawal ledger.
type WithdrawalsHandler struct {
	*Env
}

type createWithdrawalResponse struct {
	ID         string            `json:"id"`
	Withdrawal *model.Withdrawal `json:"withdrawal"`
}

// dateWindow reads ?startDate and ?endDate. Both absent means no filter;
// a lone startDate selects that single day.
func dateWindow(r *http.Request) (*model.DateRange, error) {
	start := r.URL.Query().Get("startDate")
	end := r.URL.Query().Get("endDate")
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" {
		return nil, apperr.New(apperr.InvalidRequest, "startDate required with endDate")
	}
	if end == "" {
		end = start
	}
	window, err := model.NewDateRange(start, end)
	if err != nil {
		return nil, apperr.New(apperr.InvalidRequest, "%s", err.Error())
	}
	return window, nil
}

// List handles GET /api/withdrawals.
func (h *WithdrawalsHandler) List(w http.ResponseWriter, r *http.Request) {
	window, err := dateWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_, conn, err := h.Target(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	list, err := store.ListWithdrawals(r.Context(), conn, window)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// Create handles POST /api/withdrawals.
func (h *WithdrawalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req withdrawal.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	_, conn, err := h.Target(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s := auth.FromContext(r.Context())
	engineer := s.Name
	if engineer == "" {
		engineer = s.Username
	}

	wd, err := withdrawal.Record(r.Context(), conn, engineer, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, createWithdrawalResponse{ID: wd.ID, Withdrawal: wd})
}

// Get handles GET /api/withdrawals/{id}.
func (h *WithdrawalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, conn, err := h.Target(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	wd, err := store.GetWithdrawal(r.Context(), conn, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if wd == nil {
		writeError(w, r, apperr.New(apperr.NotFound, "withdrawal not found"))
		return
	}
	jsonResponse(w, http.StatusOK, wd)
}
