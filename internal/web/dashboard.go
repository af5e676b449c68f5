package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/sitestock/internal/apperr"
	"github.com/erazemk/sitestock/internal/model"
	"github.com/erazemk/sitestock/internal/report"
	"github.com/erazemk/sitestock/internal/store"
)

const recentWithdrawals = 10

// Dashboard handles GET /.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	st, conn, err := s.Target(r)
	if err != nil {
		http.Error(w, apperr.PublicMessage(err), apperr.Status(apperr.KindOf(err)))
		return
	}

	engineers, err := store.ListUsers(r.Context(), conn, model.RoleEngineer)
	if err != nil {
		slog.Error("failed to list engineers for dashboard", "site", st.Key, "error", err)
	}
	equipment, err := store.ListEquipment(r.Context(), conn)
	if err != nil {
		slog.Error("failed to list equipment for dashboard", "site", st.Key, "error", err)
	}
	withdrawals, err := store.ListWithdrawals(r.Context(), conn, nil)
	if err != nil {
		slog.Error("failed to list withdrawals for dashboard", "site", st.Key, "error", err)
	}

	stats := report.Stats(engineers, equipment, withdrawals, s.LowStockThreshold)
	if len(withdrawals) > recentWithdrawals {
		withdrawals = withdrawals[:recentWithdrawals]
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Stats             report.Summary
		Threshold         int
		Equipment         []model.Equipment
		RecentWithdrawals []model.Withdrawal
	}{
		PageData:          s.page(r, st.Name, st),
		Stats:             stats,
		Threshold:         s.LowStockThreshold,
		Equipment:         equipment,
		RecentWithdrawals: withdrawals,
	})
}
