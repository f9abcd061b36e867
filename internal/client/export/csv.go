// Package export writes expenses to spreadsheets and manages JSON backups
// of the local collections.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"expense-tracker-go/internal/model"
)

const DisplayDateLayout = "Jan 2, 2006"

var columns = []string{"Date", "Category", "Amount", "Description"}

// WriteCSV writes one row per expense after the header. The description is
// always quoted; the other columns are written verbatim.
func WriteCSV(w io.Writer, expenses []model.Expense) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(columns, ",") + "\n"); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, expense := range expenses {
		if _, err := bw.WriteString(csvRow(expense)); err != nil {
			return fmt.Errorf("write csv row %s: %w", expense.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// CSV returns the same content as WriteCSV as a string.
func CSV(expenses []model.Expense) string {
	var sb strings.Builder
	_ = WriteCSV(&sb, expenses)
	return sb.String()
}

func csvRow(expense model.Expense) string {
	return strings.Join([]string{
		expense.Date.Format(DisplayDateLayout),
		expense.Category,
		formatAmount(expense.Amount),
		`"` + strings.ReplaceAll(expense.Description, `"`, `""`) + `"`,
	}, ",") + "\n"
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
