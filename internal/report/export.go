package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/sitestock/internal/model"
)

// ContentType is the MIME type of the workbooks written here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SiteWithdrawals is one site's ledger as fed to the multi-site export.
type SiteWithdrawals struct {
	SiteName    string
	Withdrawals []model.Withdrawal
}

var withdrawalLineHeader = []any{"Date", "Engineer", "Description", "Notes", "Equipment", "Quantity", "Unit"}

// WriteMultiSiteExport writes a workbook with one sheet per site, in the
// given order. Each sheet lists that site's withdrawal lines only; nothing
// is totalled across sites.
func WriteMultiSiteExport(w io.Writer, sites []SiteWithdrawals) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := headerStyle(f)
	if err != nil {
		return err
	}

	first := true
	for _, s := range sites {
		sheet, err := addSheet(f, s.SiteName, first)
		if err != nil {
			return err
		}
		first = false

		rows := [][]any{withdrawalLineHeader}
		for _, wd := range s.Withdrawals {
			for _, it := range wd.Items {
				rows = append(rows, []any{
					wd.WithdrawalDate, wd.EngineerName, wd.Description, wd.Notes,
					it.EquipmentName, it.QuantityWithdrawn, it.Unit,
				})
			}
		}
		if err := writeRows(f, sheet, rows, bold); err != nil {
			return err
		}
	}
	if first {
		// An export with no sites still needs one valid sheet.
		if _, err := addSheet(f, "Report", true); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// WriteSiteWorkbook writes a single site's current stock and its full
// withdrawal ledger as the "Site Stock" and "Withdrawals" sheets.
func WriteSiteWorkbook(w io.Writer, equipment []model.Equipment, withdrawals []model.Withdrawal) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := headerStyle(f)
	if err != nil {
		return err
	}

	stock, err := addSheet(f, "Site Stock", true)
	if err != nil {
		return err
	}
	rows := [][]any{{"Name", "Category", "Quantity", "Unit", "Location", "Condition"}}
	for _, eq := range equipment {
		rows = append(rows, []any{eq.Name, eq.Category, eq.Quantity, eq.Unit, eq.Location, eq.Condition})
	}
	if err := writeRows(f, stock, rows, bold); err != nil {
		return err
	}

	ledger, err := addSheet(f, "Withdrawals", false)
	if err != nil {
		return err
	}
	rows = [][]any{{"Date", "Engineer", "Description", "Notes", "Items"}}
	for _, wd := range withdrawals {
		items := make([]string, len(wd.Items))
		for i, it := range wd.Items {
			items[i] = fmt.Sprintf("%s (%d %s)", it.EquipmentName, it.QuantityWithdrawn, it.Unit)
		}
		rows = append(rows, []any{wd.WithdrawalDate, wd.EngineerName, wd.Description, wd.Notes, strings.Join(items, "; ")})
	}
	if err := writeRows(f, ledger, rows, bold); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func headerStyle(f *excelize.File) (int, error) {
	id, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("creating header style: %w", err)
	}
	return id, nil
}

// addSheet creates a sheet named after name. The first sheet reuses the
// default one every new workbook starts with.
func addSheet(f *excelize.File, name string, first bool) (string, error) {
	sheet := SheetName(name)
	if first {
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			return "", fmt.Errorf("naming sheet %q: %w", sheet, err)
		}
		return sheet, nil
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return "", fmt.Errorf("adding sheet %q: %w", sheet, err)
	}
	return sheet, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 18)
}

// SheetName makes name usable as a worksheet title: characters Excel
// forbids are replaced, leading and trailing apostrophes dropped and the
// result cut to 31 runes.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, "'")
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	if name == "" {
		name = "Sheet"
	}
	return name
}
