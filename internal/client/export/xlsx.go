package export

import (
	"fmt"
	"io"

	"expense-tracker-go/internal/model"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Expenses"

// WriteXLSX writes a workbook with the CSV columns on the Expenses sheet.
// Amounts are numeric cells.
func WriteXLSX(w io.Writer, expenses []model.Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for idx, expense := range expenses {
		row := idx + 2
		values := []any{
			expense.Date.Format(DisplayDateLayout),
			expense.Category,
			expense.Amount,
			expense.Description,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 14)
	_ = f.SetColWidth(SheetName, "B", "B", 16)
	_ = f.SetColWidth(SheetName, "C", "C", 12)
	_ = f.SetColWidth(SheetName, "D", "D", 40)

	if style, err := f.NewStyle(&excelize.Style{NumFmt: 2}); err == nil {
		_ = f.SetColStyle(SheetName, "C", style)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
