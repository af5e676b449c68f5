package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/sitestock/internal/apperr"
	"github.com/erazemk/sitestock/internal/auth"
	"github.com/erazemk/sitestock/internal/model"
	"github.com/erazemk/sitestock/internal/site"
	"github.com/erazemk/sitestock/internal/store"
	"github.com/erazemk/sitestock/internal/withdrawal"
)

// formRows is the number of line rows offered on the withdrawal form.
const formRows = 5

type withdrawalForm struct {
	PageData
	Equipment []model.Equipment
	Request   withdrawal.Request
	Rows      []withdrawal.Line
}

func (s *Server) renderWithdrawalForm(w http.ResponseWriter, r *http.Request, status int, st site.Site, conn sqlx.QueryerContext, req withdrawal.Request, msg string) {
	equipment, err := store.ListEquipment(r.Context(), conn)
	if err != nil {
		slog.Error("failed to list equipment for withdrawal form", "site", st.Key, "error", err)
	}

	rows := make([]withdrawal.Line, formRows)
	copy(rows, req.Items)

	data := &withdrawalForm{
		PageData:  s.page(r, "New withdrawal", st),
		Equipment: equipment,
		Request:   req,
		Rows:      rows,
	}
	data.Error = msg
	s.Templates.RenderStatus(w, status, "withdrawal_new.html", data)
}

// WithdrawalNewPage handles GET /withdrawals/new.
func (s *Server) WithdrawalNewPage(w http.ResponseWriter, r *http.Request) {
	st, conn, err := s.Target(r)
	if err != nil {
		http.Error(w, apperr.PublicMessage(err), apperr.Status(apperr.KindOf(err)))
		return
	}
	req := withdrawal.Request{WithdrawalDate: time.Now().Format(model.DateLayout)}
	s.renderWithdrawalForm(w, r, http.StatusOK, st, conn, req, "")
}

// WithdrawalCreateSubmit handles POST /withdrawals/new.
func (s *Server) WithdrawalCreateSubmit(w http.ResponseWriter, r *http.Request) {
	st, conn, err := s.Target(r)
	if err != nil {
		http.Error(w, apperr.PublicMessage(err), apperr.Status(apperr.KindOf(err)))
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	req, err := parseWithdrawalForm(r.PostForm)
	if err != nil {
		s.renderWithdrawalForm(w, r, http.StatusBadRequest, st, conn, req, apperr.PublicMessage(err))
		return
	}

	sess := auth.FromContext(r.Context())
	engineer := sess.Name
	if engineer == "" {
		engineer = sess.Username
	}

	wd, err := withdrawal.Record(r.Context(), conn, engineer, req)
	if err != nil {
		if apperr.KindOf(err) == apperr.Internal {
			slog.Error("withdrawal failed", "site", st.Key, "error", err)
		} else {
			slog.Warn("withdrawal rejected", "site", st.Key, "user", sess.Username, "error", err)
		}
		s.renderWithdrawalForm(w, r, apperr.Status(apperr.KindOf(err)), st, conn, req, apperr.PublicMessage(err))
		return
	}

	target := "/withdrawals/" + url.PathEscape(wd.ID) + "/receipt"
	if sess.IsAdmin() {
		target += "?site=" + url.QueryEscape(st.Key)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// parseWithdrawalForm pairs the repeated equipment_id and quantity fields.
// Rows without equipment are ignored. A quantity that is not a whole number
// is reported with its row; the request parsed so far is still returned so
// the form can be redisplayed.
func parseWithdrawalForm(form url.Values) (withdrawal.Request, error) {
	req := withdrawal.Request{
		WithdrawalDate: strings.TrimSpace(form.Get("withdrawal_date")),
		Description:    strings.TrimSpace(form.Get("description")),
		Notes:          strings.TrimSpace(form.Get("notes")),
	}

	ids := form["equipment_id"]
	quantities := form["quantity"]
	for i, id := range ids {
		if id == "" {
			continue
		}
		var raw string
		if i < len(quantities) {
			raw = strings.TrimSpace(quantities[i])
		}
		if raw == "" {
			return req, apperr.New(apperr.InvalidRequest, "row %d: quantity required", i+1)
		}
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return req, apperr.New(apperr.InvalidRequest, "row %d: quantity %q is not a whole number", i+1, raw)
		}
		req.Items = append(req.Items, withdrawal.Line{EquipmentID: id, Quantity: qty})
	}
	return req, nil
}

// ReceiptPage handles GET /withdrawals/{id}/receipt, a printable summary of
// one withdrawal.
func (s *Server) ReceiptPage(w http.ResponseWriter, r *http.Request) {
	st, conn, err := s.Target(r)
	if err != nil {
		http.Error(w, apperr.PublicMessage(err), apperr.Status(apperr.KindOf(err)))
		return
	}

	wd, err := store.GetWithdrawal(r.Context(), conn, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get withdrawal", "site", st.Key, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if wd == nil {
		http.NotFound(w, r)
		return
	}

	s.Templates.Render(w, "receipt.html", &struct {
		PageData
		Withdrawal *model.Withdrawal
	}{
		PageData:   s.page(r, "Withdrawal receipt", st),
		Withdrawal: wd,
	})
}
