// Package report derives read-only projections from withdrawal ledgers.
package report

import (
	"slices"

	"github.com/erazemk/sitestock/internal/model"
)

// EquipmentUsage groups the lines of one equipment name within a report.
type EquipmentUsage struct {
	EquipmentName     string   `json:"equipmentName"`
	QuantityWithdrawn int      `json:"quantityWithdrawn"`
	Unit              string   `json:"unit"`
	Engineers         []string `json:"engineers"`
}

// DailyReport summarizes one site's withdrawals on one date.
type DailyReport struct {
	ReportDate       string           `json:"reportDate"`
	SiteName         string           `json:"siteName"`
	TotalWithdrawals int              `json:"totalWithdrawals"`
	EquipmentUsed    []EquipmentUsage `json:"equipmentUsed"`
}

// WeeklyReport sums one site's withdrawals over a window.
type WeeklyReport struct {
	WeekStartDate    string `json:"weekStartDate"`
	WeekEndDate      string `json:"weekEndDate"`
	SiteName         string `json:"siteName"`
	TotalWithdrawals int    `json:"totalWithdrawals"`
}

// Daily builds the report for date. Withdrawals dated otherwise are
// ignored. TotalWithdrawals is the sum of quantities over every line, and
// each equipment name lists the engineers who withdrew it once each.
func Daily(siteName, date string, withdrawals []model.Withdrawal) DailyReport {
	day := model.DateRange{Start: date, End: date}
	r := DailyReport{ReportDate: date, SiteName: siteName, EquipmentUsed: []EquipmentUsage{}}

	byName := map[string]int{}
	for _, w := range withdrawals {
		if !day.Contains(w.WithdrawalDate) {
			continue
		}
		for _, it := range w.Items {
			r.TotalWithdrawals += it.QuantityWithdrawn

			i, ok := byName[it.EquipmentName]
			if !ok {
				i = len(r.EquipmentUsed)
				byName[it.EquipmentName] = i
				r.EquipmentUsed = append(r.EquipmentUsed, EquipmentUsage{
					EquipmentName: it.EquipmentName,
					Unit:          it.Unit,
					Engineers:     []string{},
				})
			}
			u := &r.EquipmentUsed[i]
			u.QuantityWithdrawn += it.QuantityWithdrawn
			if !slices.Contains(u.Engineers, w.EngineerName) {
				u.Engineers = append(u.Engineers, w.EngineerName)
			}
		}
	}

	slices.SortStableFunc(r.EquipmentUsed, func(a, b EquipmentUsage) int {
		switch {
		case a.EquipmentName < b.EquipmentName:
			return -1
		case a.EquipmentName > b.EquipmentName:
			return 1
		}
		return 0
	})
	return r
}

// Weekly sums line quantities of withdrawals dated within [start, end].
func Weekly(siteName, start, end string, withdrawals []model.Withdrawal) WeeklyReport {
	window := model.DateRange{Start: start, End: end}
	r := WeeklyReport{WeekStartDate: start, WeekEndDate: end, SiteName: siteName}
	for _, w := range withdrawals {
		if window.Contains(w.WithdrawalDate) {
			r.TotalWithdrawals += w.TotalQuantity()
		}
	}
	return r
}

// Summary holds the dashboard counters of one partition.
type Summary struct {
	TotalEngineers   int `json:"totalEngineers"`
	TotalEquipment   int `json:"totalEquipment"`
	TotalWithdrawals int `json:"totalWithdrawals"`
	LowStockItems    int `json:"lowStockItems"`
}

// Stats counts engineers, equipment records, ledger entries and records
// whose quantity is below threshold.
func Stats(engineers []model.User, equipment []model.Equipment, withdrawals []model.Withdrawal, threshold int) Summary {
	s := Summary{
		TotalEngineers:   len(engineers),
		TotalEquipment:   len(equipment),
		TotalWithdrawals: len(withdrawals),
	}
	for _, eq := range equipment {
		if eq.Quantity < threshold {
			s.LowStockItems++
		}
	}
	return s
}
