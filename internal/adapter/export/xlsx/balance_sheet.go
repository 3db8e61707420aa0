// Package xlsx renders balance sheets as Excel workbooks.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/iho/splitledger/internal/domain"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names.
const (
	IndividualSheet = "Individual Expenses"
	OverallSheet    = "Overall Expenses"
)

var (
	individualHeader = []any{"User ID", "Email", "Expense ID", "Title", "Description", "Expense Date", "Amount Owed"}
	overallHeader    = []any{"Expense ID", "Title", "Description", "Expense Date Time", "Total Amount", "Split Method"}
)

// WriteBalanceSheet writes sheet as a two-tab workbook to w.
// Amounts are written as fixed three-decimal strings so no precision is lost.
func WriteBalanceSheet(w io.Writer, sheet *domain.BalanceSheet) error {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with a default sheet; rename it instead of adding one.
	if err := f.SetSheetName("Sheet1", IndividualSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(OverallSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	individual := make([][]any, 0, len(sheet.Individual)+1)
	individual = append(individual, individualHeader)
	for _, e := range sheet.Individual {
		individual = append(individual, []any{
			e.UserID,
			e.Email,
			e.ExpenseID,
			e.Title,
			deref(e.Description),
			e.ExpenseDate.Format(domain.DateTimeLayout),
			e.AmountOwed.String(),
		})
	}

	overall := make([][]any, 0, len(sheet.Overall)+1)
	overall = append(overall, overallHeader)
	for _, e := range sheet.Overall {
		overall = append(overall, []any{
			e.ExpenseID,
			e.Title,
			deref(e.Description),
			e.ExpenseDate.Format(domain.DateTimeLayout),
			e.TotalAmount.String(),
			string(e.SplitMethod),
		})
	}

	if err := writeRows(f, IndividualSheet, individual, headerStyle); err != nil {
		return err
	}
	if err := writeRows(f, OverallSheet, overall, headerStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}

	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "A", "G", 18)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
