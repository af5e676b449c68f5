package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/sitestock/internal/model"
	"github.com/erazemk/sitestock/internal/report"
	"github.com/erazemk/sitestock/internal/store"
)

// ReportsHandler serves read-only projections of the ledgers.
type ReportsHandler struct {
	*Env
}

// Stats handles GET /api/stats.
func (h *ReportsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	_, conn, err := h.Target(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()

	engineers, err := store.ListUsers(ctx, conn, model.RoleEngineer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	equipment, err := store.ListEquipment(ctx, conn)
	if err != nil {
		writeError(w, r, err)
		return
	}
	withdrawals, err := store.ListWithdrawals(ctx, conn, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, report.Stats(engineers, equipment, withdrawals, h.LowStockThreshold))
}

// Report handles GET /api/reports?type=daily|weekly&siteName&startDate&endDate.
// Daily reports cover startDate; weekly reports cover [startDate, endDate],
// with endDate defaulting to startDate.
func (h *ReportsHandler) Report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := q.Get("type")
	if kind == "" || q.Get("siteName") == "" || q.Get("startDate") == "" {
		jsonError(w, http.StatusBadRequest, "type, siteName and startDate required")
		return
	}
	if kind != "daily" && kind != "weekly" {
		jsonError(w, http.StatusBadRequest, "type must be daily or weekly")
		return
	}

	st, err := h.Sites.Resolve(q.Get("siteName"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	window, err := dateWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if kind == "daily" {
		window.End = window.Start
	}

	conn, err := h.Partitions.Get(r.Context(), st.Partition)
	if err != nil {
		writeError(w, r, err)
		return
	}
	withdrawals, err := store.ListWithdrawals(r.Context(), conn, window)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if kind == "daily" {
		jsonResponse(w, http.StatusOK, []report.DailyReport{report.Daily(st.Name, window.Start, withdrawals)})
		return
	}
	jsonResponse(w, http.StatusOK, []report.WeeklyReport{report.Weekly(st.Name, window.Start, window.End, withdrawals)})
}

// Export handles GET /api/reports/export: one sheet per site over an
// optional date window.
func (h *ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	window, err := dateWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var sites []report.SiteWithdrawals
	for _, st := range h.Sites.Sites() {
		conn, err := h.Partitions.Get(r.Context(), st.Partition)
		if err != nil {
			writeError(w, r, err)
			return
		}
		list, err := store.ListWithdrawals(r.Context(), conn, window)
		if err != nil {
			writeError(w, r, err)
			return
		}
		sites = append(sites, report.SiteWithdrawals{SiteName: st.Name, Withdrawals: list})
	}

	var buf bytes.Buffer
	if err := report.WriteMultiSiteExport(&buf, sites); err != nil {
		writeError(w, r, err)
		return
	}

	name := "withdrawals-all-sites.xlsx"
	if window != nil {
		name = fmt.Sprintf("withdrawals-%s-to-%s.xlsx", window.Start, window.End)
	}
	slog.Info("multi-site export generated", "sites", len(sites), "bytes", buf.Len())
	writeWorkbook(w, name, buf.Bytes())
}

// SiteWorkbook handles GET /api/site/report.xlsx.
func (h *ReportsHandler) SiteWorkbook(w http.ResponseWriter, r *http.Request) {
	st, conn, err := h.Target(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	equipment, err := store.ListEquipment(r.Context(), conn)
	if err != nil {
		writeError(w, r, err)
		return
	}
	withdrawals, err := store.ListWithdrawals(r.Context(), conn, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteSiteWorkbook(&buf, equipment, withdrawals); err != nil {
		writeError(w, r, err)
		return
	}
	writeWorkbook(w, strings.ToLower(st.Key)+"-site-report.xlsx", buf.Bytes())
}

func writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
